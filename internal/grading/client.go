package grading

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samaralitalim/answersheet/internal/config"
	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/models"
)

// maxResponseBody caps how much of a grading server reply is read
const maxResponseBody = 64 * 1024

// Client talks to the remote grading server
type Client struct {
	BaseURL      string
	TokenPath    string
	StatusPath   string
	PollInterval time.Duration
	PollAttempts int
	httpClient   *http.Client
}

// Upload is the multipart request sent to the grading server
type Upload struct {
	Image     *images.Image
	CatalogID int
	Mode      models.Mode
	Token     string
}

// NewClient creates a grading client from configuration
func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		TokenPath:    cfg.TokenPath,
		StatusPath:   cfg.StatusPath,
		PollInterval: cfg.PollInterval,
		PollAttempts: cfg.PollAttempts,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// FetchToken asks the server for a one-time form token ("ff" value)
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.TokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}

	token := strings.TrimSpace(body)
	if token == "" {
		return "", ErrEmptyToken
	}

	slog.Debug("Fetched form token", "length", len(token))
	return token, nil
}

// Upload posts the answer sheet image together with the catalog id and token
func (c *Client) Upload(ctx context.Context, u Upload) error {
	if u.Image == nil || len(u.Image.Data) == 0 {
		return ErrNoImage
	}

	profile := ProfileFor(u.Mode)

	filename := u.Image.Filename
	contentType := u.Image.ContentType
	if profile.FixedFilename != "" {
		filename = profile.FixedFilename
	}
	if profile.FixedContentType != "" {
		contentType = profile.FixedContentType
	}
	if filename == "" {
		filename = "photo.jpg"
	}
	if contentType == "" {
		contentType = images.ContentType(filename)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="javob_file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(u.Image.Data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}

	fields := []struct{ name, value string }{
		{"katalog", strconv.Itoa(u.CatalogID)},
		{"avtor", profile.Author},
		{"ff", u.Token},
		{"Saqlsh", "Submit"},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+profile.UploadPath, &buf)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", profile.Accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return &StatusError{Endpoint: profile.UploadPath, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	slog.Info("Answer sheet uploaded", "catalog_id", u.CatalogID, "mode", u.Mode, "filename", filename, "bytes", len(u.Image.Data))
	return nil
}

// CheckStatus performs a single status request for token
func (c *Client) CheckStatus(ctx context.Context, token string) (Status, error) {
	body, err := c.get(ctx, c.StatusPath, url.Values{"ff": {token}})
	if err != nil {
		return Status{}, err
	}
	return ParseStatus(body), nil
}

// Poll repeats CheckStatus on a fixed interval until a terminal status or the
// attempt budget is spent. onAttempt, if set, is called before every request.
func (c *Client) Poll(ctx context.Context, token string, onAttempt func(attempt int)) (*models.Result, error) {
	attempts := c.PollAttempts
	if attempts < 1 {
		attempts = 1
	}

	timer := time.NewTimer(c.PollInterval)
	defer timer.Stop()

	var lastErr error
	var lastRaw string
	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		if onAttempt != nil {
			onAttempt(attempt)
		}

		status, err := c.CheckStatus(ctx, token)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			slog.Warn("Status check failed", "attempt", attempt, "max_attempts", attempts, "error", err)
		case status.Terminal:
			slog.Info("Grading finished", "attempt", attempt, "graded", status.Result.Graded, "score", status.Result.Score)
			result := status.Result
			return &result, nil
		default:
			lastRaw = status.Result.Raw
			slog.Debug("Grading still in progress", "attempt", attempt, "max_attempts", attempts, "response", lastRaw)
		}

		timer.Reset(c.PollInterval)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrPollExhausted, attempts, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts (last response %q)", ErrPollExhausted, attempts, lastRaw)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (string, error) {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return string(body), nil
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
