package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL      = "https://samaralitalim.uz"
	DefaultTokenPath    = "/javoblar_ei_mobi.asp"
	DefaultStatusPath   = "/javob_natija_mobi.asp"
	DefaultPollInterval = 3 * time.Second
	DefaultPollAttempts = 20
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultProvider     = "ollama"
)

// Config holds the settings shared by every command
type Config struct {
	BaseURL      string        `validate:"required,url"`
	TokenPath    string        `validate:"required,startswith=/"`
	StatusPath   string        `validate:"required,startswith=/"`
	PollInterval time.Duration `validate:"gt=0"`
	PollAttempts int           `validate:"min=1,max=1000"`
	HTTPTimeout  time.Duration `validate:"gt=0"`
	StateFile    string        `validate:"required"`
	CatalogFile  string
	Provider     string `validate:"oneof=ollama openai gemini"`
}

// Load builds a Config from environment variables, falling back to defaults
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:      getenv("ANSWERSHEET_BASE_URL", DefaultBaseURL),
		TokenPath:    getenv("ANSWERSHEET_TOKEN_PATH", DefaultTokenPath),
		StatusPath:   getenv("ANSWERSHEET_STATUS_PATH", DefaultStatusPath),
		PollInterval: DefaultPollInterval,
		PollAttempts: DefaultPollAttempts,
		HTTPTimeout:  DefaultHTTPTimeout,
		StateFile:    os.Getenv("ANSWERSHEET_STATE_FILE"),
		CatalogFile:  os.Getenv("ANSWERSHEET_CATALOG_FILE"),
		Provider:     getenv("ANSWERSHEET_PROVIDER", DefaultProvider),
	}

	if v := os.Getenv("ANSWERSHEET_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ANSWERSHEET_POLL_INTERVAL %q: %w", v, err)
		}
		cfg.PollInterval = d
	}

	if v := os.Getenv("ANSWERSHEET_POLL_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ANSWERSHEET_POLL_ATTEMPTS %q: %w", v, err)
		}
		cfg.PollAttempts = n
	}

	if v := os.Getenv("ANSWERSHEET_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ANSWERSHEET_HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = d
	}

	if cfg.StateFile == "" {
		path, err := DefaultStateFile()
		if err != nil {
			return nil, err
		}
		cfg.StateFile = path
	}

	return cfg, nil
}

// Validate checks that all fields in Config are usable
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed for Config: %w", err)
	}

	return nil
}

// DefaultStateFile returns the state file location under the user config directory
func DefaultStateFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "answersheet", "state.yaml"), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
