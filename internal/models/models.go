package models

import (
	"fmt"
	"time"
)

// Mode selects which upload profile a submission uses
type Mode string

const (
	ModeCamera  Mode = "camera"
	ModeGallery Mode = "gallery"
)

// ParseMode converts a user-supplied mode name, defaulting to camera
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeCamera:
		return ModeCamera, nil
	case ModeGallery:
		return ModeGallery, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s (supported: camera, gallery)", s)
	}
}

// State is the lifecycle position of a submission
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StatePolling   State = "polling"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

var stateOrder = map[State]int{
	StateIdle:      0,
	StateUploading: 1,
	StatePolling:   2,
	StateDone:      3,
	StateFailed:    3,
}

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanAdvance reports whether moving from s to next keeps the lifecycle forward-only
func (s State) CanAdvance(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return stateOrder[next] > stateOrder[s]
}

// Result is the grading server's verdict on a submission
type Result struct {
	Graded bool   `json:"graded"`
	Score  string `json:"score,omitempty"`
	Raw    string `json:"raw"`
}

// String renders the result the way it is shown to the user
func (r Result) String() string {
	if !r.Graded {
		return "ungraded: the answer sheet could not be checked"
	}
	return "score: " + r.Score
}

// Submission represents one answer sheet sent for grading
type Submission struct {
	ID            string    `json:"id"`
	CatalogID     int       `json:"catalog_id"`
	CatalogName   string    `json:"catalog_name,omitempty"`
	Mode          Mode      `json:"mode"`
	State         State     `json:"state"`
	Token         string    `json:"token,omitempty"`
	Attempts      int       `json:"attempts"`
	ImageFilename string    `json:"image_filename"`
	ImageType     string    `json:"image_type"`
	ImageWidth    int       `json:"image_width,omitempty"`
	ImageHeight   int       `json:"image_height,omitempty"`
	Result        *Result   `json:"result,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Advance moves the submission to next, rejecting backward transitions
func (s *Submission) Advance(next State) error {
	if s.State == "" {
		s.State = StateIdle
	}
	if !s.State.CanAdvance(next) {
		return fmt.Errorf("invalid transition %s -> %s", s.State, next)
	}
	s.State = next
	s.UpdatedAt = time.Now()
	return nil
}
