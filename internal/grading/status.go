package grading

import (
	"strings"

	"github.com/samaralitalim/answersheet/internal/models"
)

// Status is one parsed answer from the status endpoint
type Status struct {
	Terminal bool
	Result   models.Result
}

// ParseStatus interprets the status endpoint body.
//
//	-1 or -1:...   terminal, sheet could not be graded
//	1:<score>      terminal, graded
//	anything else  still being processed
func ParseStatus(body string) Status {
	raw := strings.TrimSpace(body)

	switch {
	case raw == "-1" || strings.HasPrefix(raw, "-1:"):
		return Status{Terminal: true, Result: models.Result{Graded: false, Raw: raw}}
	case strings.HasPrefix(raw, "1:"):
		score := strings.TrimSpace(strings.TrimPrefix(raw, "1:"))
		return Status{Terminal: true, Result: models.Result{Graded: true, Score: score, Raw: raw}}
	default:
		return Status{Terminal: false, Result: models.Result{Raw: raw}}
	}
}
