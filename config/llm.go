package config

import "time"

// LLMConfig contains configuration for the LLM collaborator.
type LLMConfig struct {
	// APIKey authenticates against the Anthropic API.
	APIKey string `env:"API_KEY,required"`

	// Model is the model identifier sent with every request.
	Model string `env:"MODEL" envDefault:"claude-3-5-sonnet-latest"`

	// MaxOutputChars caps generated output length. Longer responses are
	// truncated with a marker rather than failing the job.
	MaxOutputChars int `env:"MAX_OUTPUT_CHARS" envDefault:"9000"`

	// Timeout bounds a single collaborator request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`

	// BaseURL is the API endpoint; override for tests or proxies.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.anthropic.com"`
}

const (
	minOutputChars = 500
	maxOutputChars = 100_000
)

// Sanitize applies guardrails to LLM configuration values.
func (l *LLMConfig) Sanitize() {
	if l.MaxOutputChars < minOutputChars {
		l.MaxOutputChars = minOutputChars
	}
	if l.MaxOutputChars > maxOutputChars {
		l.MaxOutputChars = maxOutputChars
	}
	if l.Timeout <= 0 {
		l.Timeout = 60 * time.Second
	}
}
