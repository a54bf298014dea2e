package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANSWERSHEET_BASE_URL", "")
	t.Setenv("ANSWERSHEET_POLL_INTERVAL", "")
	t.Setenv("ANSWERSHEET_POLL_ATTEMPTS", "")
	t.Setenv("ANSWERSHEET_STATE_FILE", "/tmp/state.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("Expected base URL %s, got %s", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected poll interval %v, got %v", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.PollAttempts != DefaultPollAttempts {
		t.Errorf("Expected %d attempts, got %d", DefaultPollAttempts, cfg.PollAttempts)
	}
	if cfg.StateFile != "/tmp/state.yaml" {
		t.Errorf("Expected state file override, got %s", cfg.StateFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANSWERSHEET_BASE_URL", "http://localhost:9000")
	t.Setenv("ANSWERSHEET_POLL_INTERVAL", "250ms")
	t.Setenv("ANSWERSHEET_POLL_ATTEMPTS", "7")
	t.Setenv("ANSWERSHEET_STATE_FILE", "/tmp/state.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("Expected overridden base URL, got %s", cfg.BaseURL)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.PollInterval)
	}
	if cfg.PollAttempts != 7 {
		t.Errorf("Expected 7 attempts, got %d", cfg.PollAttempts)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("ANSWERSHEET_STATE_FILE", "/tmp/state.yaml")
	t.Setenv("ANSWERSHEET_POLL_ATTEMPTS", "many")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for non-numeric ANSWERSHEET_POLL_ATTEMPTS")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		BaseURL:      "https://example.com",
		TokenPath:    "/token",
		StatusPath:   "/status",
		PollInterval: time.Second,
		PollAttempts: 3,
		HTTPTimeout:  time.Second,
		StateFile:    "state.yaml",
		Provider:     "gemini",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "bad url", mutate: func(c *Config) { c.BaseURL = "not a url" }, wantErr: true},
		{name: "relative token path", mutate: func(c *Config) { c.TokenPath = "token" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.PollAttempts = 0 }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "claude" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
