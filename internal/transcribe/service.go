package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samaralitalim/answersheet/internal/gemini"
	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/ollama"
	"github.com/samaralitalim/answersheet/internal/openai"
	"github.com/samaralitalim/answersheet/internal/providers"
)

// Service reads handwritten answer sheets back to the user before they are submitted
type Service struct {
	providers map[string]providers.Provider
}

// NewService creates a service backed by the Ollama, OpenAI and Gemini providers
func NewService() *Service {
	return NewServiceWith(map[string]providers.Provider{
		"ollama": ollama.New(),
		"openai": openai.New(),
		"gemini": gemini.New(),
	})
}

// NewServiceWith creates a service over an explicit provider set
func NewServiceWith(p map[string]providers.Provider) *Service {
	return &Service{providers: p}
}

// Transcribe returns the handwriting visible on the answer sheet
func (s *Service) Transcribe(ctx context.Context, img *images.Image, provider, model string) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", fmt.Errorf("no image to transcribe")
	}

	if provider == "" {
		provider = os.Getenv("ANSWERSHEET_PROVIDER")
		if provider == "" {
			provider = "ollama"
		}
	}

	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("unsupported transcription provider: %s", provider)
	}

	if model == "" {
		model = DefaultModel(provider)
	}

	slog.Debug("Transcribing answer sheet", "provider", provider, "model", model, "filename", img.Filename)

	text, err := p.ExtractText(ctx, providers.Config{
		Model:       model,
		Temperature: 0.0,
		Prompt:      prompt,
		Image:       img.Data,
		ImageMIME:   img.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe with %s: %w", provider, err)
	}

	text = strings.TrimSpace(text)
	slog.Info("Transcribed answer sheet", "provider", provider, "model", model, "length", len(text))
	return text, nil
}

// DefaultModel returns the model used when none is given
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

const prompt = `You are reading a photographed, handwritten answer sheet for a multiple-choice test.

Your task is to transcribe what the student wrote so they can confirm the photo is legible before it is sent for grading.

INSTRUCTIONS:
1. Read the sheet from top to bottom
2. For every numbered question, write the question number followed by the marked or written answer
3. Transcribe any name, class or date written on the sheet on the first line
4. If an answer is unclear, crossed out or missing, write [?] for that question
5. Do not grade, correct or comment on the answers

OUTPUT FORMAT:
Provide ONLY the transcription, one question per line, for example:

Name: Aziza K., 9-B
1. A
2. C
3. [?]
4. D`
