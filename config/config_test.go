package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
		},
		{
			name:  "single service - runner",
			input: "runner",
			expected: map[ServiceMode]bool{
				ServiceModeRunner: true,
			},
		},
		{
			name:  "both services",
			input: "http,runner",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeRunner: true,
			},
		},
		{
			name:  "whitespace tolerated",
			input: " http , runner ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeRunner: true,
			},
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("ParseServices(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseServices(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseServices(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("AGENT_OPS_API_KEY", "test-key")
	t.Setenv("LLM_API_KEY", "test-llm-key")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.LLM.MaxOutputChars != 9000 {
		t.Errorf("LLM.MaxOutputChars = %d, want 9000", cfg.LLM.MaxOutputChars)
	}
	if cfg.Sandbox.MaxFileBytes != 2<<20 {
		t.Errorf("Sandbox.MaxFileBytes = %d, want %d", cfg.Sandbox.MaxFileBytes, 2<<20)
	}
	if cfg.Runner.Concurrency != 2 {
		t.Errorf("Runner.Concurrency = %d, want 2", cfg.Runner.Concurrency)
	}
	if !cfg.IsHTTPServerEnabled() || !cfg.IsRunnerEnabled() {
		t.Errorf("default SERVICES should enable both http and runner, got %q", cfg.Services)
	}
	if cfg.Insights.Configured() {
		t.Error("Insights.Configured() = true with no base URL or token")
	}
}

func TestSanitizeGuardrails(t *testing.T) {
	t.Run("llm", func(t *testing.T) {
		l := LLMConfig{MaxOutputChars: 10, Timeout: -time.Second}
		l.Sanitize()
		if l.MaxOutputChars != minOutputChars {
			t.Errorf("MaxOutputChars = %d, want %d", l.MaxOutputChars, minOutputChars)
		}
		if l.Timeout != 60*time.Second {
			t.Errorf("Timeout = %v, want 60s", l.Timeout)
		}
	})

	t.Run("runner", func(t *testing.T) {
		r := RunnerConfig{Concurrency: 0, LeaseSeconds: -5}
		r.Sanitize()
		if r.Concurrency != 1 {
			t.Errorf("Concurrency = %d, want 1", r.Concurrency)
		}
		if r.LeaseSeconds != 1 {
			t.Errorf("LeaseSeconds = %d, want 1", r.LeaseSeconds)
		}
		if r.JobTimeout <= 0 {
			t.Errorf("JobTimeout = %v, want positive default", r.JobTimeout)
		}
	})

	t.Run("sandbox", func(t *testing.T) {
		s := SandboxConfig{MaxFileBytes: 0}
		s.Sanitize()
		if s.MaxFileBytes != defaultMaxFileBytes {
			t.Errorf("MaxFileBytes = %d, want %d", s.MaxFileBytes, int64(defaultMaxFileBytes))
		}
	})
}
