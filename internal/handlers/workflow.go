package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samaralitalim/answersheet/internal/grading"
	"github.com/samaralitalim/answersheet/internal/models"
)

// start runs the grading workflow for id in the background
func (h *Handler) start(id string, req grading.Request) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.release(id)

		_, err := h.grader.Submit(h.ctx, req, func(p grading.Progress) {
			h.store.Update(id, func(s *models.Submission) {
				applyProgress(s, p)
			})
		})
		if err != nil {
			if isCancelled(err) {
				slog.Warn("Submission abandoned", "submission_id", id, "error", err)
			} else {
				slog.Error("Submission failed", "submission_id", id, "error", err)
			}
			// Errors raised before the workflow reports progress still need a terminal state
			h.store.Update(id, func(s *models.Submission) {
				if !s.State.Terminal() {
					applyProgress(s, grading.Progress{State: models.StateFailed, Err: err})
				}
			})
			return
		}
		slog.Info("Submission finished", "submission_id", id)
	}()
}

func applyProgress(s *models.Submission, p grading.Progress) {
	if err := p.Apply(s); err != nil {
		slog.Warn("Ignoring out-of-order progress", "submission_id", s.ID, "error", err)
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
