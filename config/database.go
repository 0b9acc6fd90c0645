package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"agent_ops"`
	Password string `env:"PASSWORD" envDefault:"agent_ops"`
	Name     string `env:"NAME"     envDefault:"agent_ops"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled controls whether Redis is connected at all. The latest-output
	// cache degrades to direct Postgres reads when disabled.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// CacheConfig contains cache configuration (Redis-based).
type CacheConfig struct {
	// LatestOutputTTL is the TTL for the cached latest output per job type.
	LatestOutputTTL time.Duration `env:"CACHE_LATEST_OUTPUT_TTL" envDefault:"10m"`
}
