package models

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeCamera},
		{in: "camera", want: ModeCamera},
		{in: "gallery", want: ModeGallery},
		{in: "scanner", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAdvance(t *testing.T) {
	s := &Submission{}

	for _, next := range []State{StateUploading, StatePolling, StateDone} {
		if err := s.Advance(next); err != nil {
			t.Fatalf("Advance(%s) error = %v", next, err)
		}
	}

	if err := s.Advance(StateFailed); err == nil {
		t.Error("Expected terminal state to reject further transitions")
	}
}

func TestAdvanceRejectsBackward(t *testing.T) {
	s := &Submission{State: StatePolling}

	if err := s.Advance(StateUploading); err == nil {
		t.Error("Expected polling -> uploading to fail")
	}
	if err := s.Advance(StateFailed); err != nil {
		t.Errorf("Expected polling -> failed to succeed, got %v", err)
	}
}

func TestResultString(t *testing.T) {
	if got := (Result{Graded: true, Score: "27"}).String(); got != "score: 27" {
		t.Errorf("Unexpected graded string: %s", got)
	}
	if got := (Result{Raw: "-1:"}).String(); got == "" {
		t.Error("Expected non-empty ungraded string")
	}
}
