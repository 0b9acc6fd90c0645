package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: API authentication configuration
//   - database.go: Database and cache configuration
//   - http.go: HTTP server configuration
//   - llm.go: LLM collaborator configuration
//   - sandbox.go: Sandboxed file loader configuration
//   - runner.go: Job runner configuration
//   - insights.go: Insights snapshot feed configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth holds API authentication configuration.
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// LLM collaborator configuration
	LLM LLMConfig `envPrefix:"LLM_"`

	// Sandbox file loader configuration
	Sandbox SandboxConfig `envPrefix:"SANDBOX_"`

	// Job runner configuration
	Runner RunnerConfig `envPrefix:"RUNNER_"`

	// Insights snapshot feed configuration
	Insights InsightsConfig `envPrefix:"INSIGHTS_"`

	// Services selects which service modes run in this process.
	Services string `env:"SERVICES" envDefault:"http,runner"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.LLM.Sanitize()
	c.Sandbox.Sanitize()
	c.Runner.Sanitize()
	c.Insights.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsRunnerEnabled returns true if the job runner service is enabled.
func (c *AppConfig) IsRunnerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeRunner]
}
