package config

import "time"

// InsightsConfig contains configuration for the internal insights snapshot
// feed consumed by weekly pilot memos. The feed is optional: when BaseURL or
// Token is empty the memo is generated with a data-unavailable marker.
type InsightsConfig struct {
	// BaseURL is the base URL of the insights API.
	BaseURL string `env:"BASE_URL"`

	// Token is the static internal agent token sent with every request.
	Token string `env:"TOKEN"`

	// Timeout bounds a single snapshot fetch.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RangeDays is the lookback window requested from the feed.
	RangeDays int `env:"RANGE_DAYS" envDefault:"7"`
}

// Sanitize applies guardrails to insights configuration values.
func (i *InsightsConfig) Sanitize() {
	if i.Timeout <= 0 {
		i.Timeout = 30 * time.Second
	}
	if i.RangeDays <= 0 {
		i.RangeDays = 7
	}
}

// Configured returns true when the feed can actually be called.
func (i *InsightsConfig) Configured() bool {
	return i.BaseURL != "" && i.Token != ""
}
