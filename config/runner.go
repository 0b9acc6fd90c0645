package config

import "time"

// RunnerConfig contains job runner configuration.
type RunnerConfig struct {
	// Concurrency is the number of worker goroutines claiming jobs.
	Concurrency int `env:"CONCURRENCY" envDefault:"2"`

	// LeaseSeconds is how long a claim holds a job before it is considered
	// abandoned by a crashed worker.
	LeaseSeconds int `env:"LEASE_SECONDS" envDefault:"120"`

	// PollInterval is how long a worker sleeps when no job is available.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`

	// JobTimeout bounds a single job execution end to end. On expiry the job
	// is marked failed with a timeout error, never left running.
	JobTimeout time.Duration `env:"JOB_TIMEOUT" envDefault:"120s"`
}

// Sanitize applies guardrails to runner configuration values.
func (r *RunnerConfig) Sanitize() {
	if r.Concurrency < 1 {
		r.Concurrency = 1
	}
	if r.LeaseSeconds < 1 {
		r.LeaseSeconds = 1
	}
	if r.PollInterval <= 0 {
		r.PollInterval = 2 * time.Second
	}
	if r.JobTimeout <= 0 {
		r.JobTimeout = 120 * time.Second
	}
}
