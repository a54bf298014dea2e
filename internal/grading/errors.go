package grading

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyToken is returned when the token endpoint answers with a blank body
	ErrEmptyToken = errors.New("grading server returned an empty token")
	// ErrPollExhausted is returned when the attempt budget runs out before a terminal status
	ErrPollExhausted = errors.New("grading result not ready")
	// ErrNoCatalogSelected is returned when a submission has no catalog id
	ErrNoCatalogSelected = errors.New("no catalog entry selected: select a catalog entry first")
	// ErrNoImage is returned when a submission has no image attached
	ErrNoImage = errors.New("no image selected")
)

// StatusError reports a non-2xx response from one of the grading endpoints
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
