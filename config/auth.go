package config

// AuthConfig contains API authentication configuration. All non-health
// endpoints require the static bearer key; the key is compared in constant
// time and is never logged.
type AuthConfig struct {
	// APIKey is the static bearer credential for the API.
	APIKey string `env:"AGENT_OPS_API_KEY,required"`
}
