package grading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/models"
)

// Request is everything needed to grade one answer sheet
type Request struct {
	Image     *images.Image
	CatalogID int
	Mode      models.Mode
}

// Progress is reported to observers whenever the submission changes
type Progress struct {
	State   models.State
	Token   string
	Attempt int
	Result  *models.Result
	Err     error
}

// Observer receives progress updates; it is called synchronously from Submit
type Observer func(Progress)

// Submit runs the full workflow: fetch token, upload the image, poll for the result
func (c *Client) Submit(ctx context.Context, req Request, observe Observer) (*models.Result, error) {
	if observe == nil {
		observe = func(Progress) {}
	}

	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, ErrNoImage
	}
	if req.CatalogID <= 0 {
		return nil, ErrNoCatalogSelected
	}

	fail := func(err error) (*models.Result, error) {
		observe(Progress{State: models.StateFailed, Err: err})
		return nil, err
	}

	observe(Progress{State: models.StateUploading})
	slog.Info("Submitting answer sheet", "catalog_id", req.CatalogID, "mode", req.Mode, "filename", req.Image.Filename)

	token, err := c.FetchToken(ctx)
	if err != nil {
		return fail(err)
	}

	if err := c.Upload(ctx, Upload{
		Image:     req.Image,
		CatalogID: req.CatalogID,
		Mode:      req.Mode,
		Token:     token,
	}); err != nil {
		return fail(fmt.Errorf("failed to upload answer sheet: %w", err))
	}

	observe(Progress{State: models.StatePolling, Token: token})

	result, err := c.Poll(ctx, token, func(attempt int) {
		observe(Progress{State: models.StatePolling, Token: token, Attempt: attempt})
	})
	if err != nil {
		return fail(err)
	}

	observe(Progress{State: models.StateDone, Token: token, Result: result})
	return result, nil
}

// Apply records p on s, advancing its state when p moves it forward
func (p Progress) Apply(s *models.Submission) error {
	if p.State != s.State {
		if err := s.Advance(p.State); err != nil {
			return err
		}
	}
	if p.Token != "" {
		s.Token = p.Token
	}
	if p.Attempt > s.Attempts {
		s.Attempts = p.Attempt
	}
	if p.Result != nil {
		result := *p.Result
		s.Result = &result
	}
	if p.Err != nil {
		s.Error = p.Err.Error()
	}
	s.UpdatedAt = time.Now()
	return nil
}
