// Package jobrunner pulls queued generation jobs and executes them against
// the LLM collaborator.
package jobrunner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slushhq/agent-ops/config"
	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/data"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/service"
)

// RunnerOptions configures the job runner adapter.
type RunnerOptions struct {
	DB     *sql.DB
	Config config.RunnerConfig
	Logger *slog.Logger

	// Collaborator adapters
	Files     core.FileLoader      // Required: sandbox file loader
	LLM       core.TextGenerator   // Required: LLM client
	Snapshots core.SnapshotFetcher // Optional: business snapshot feed

	// Optional dependency injections (useful for tests/decoupling)
	JobsRepo    core.JobRepository
	OutputsRepo core.OutputRepository
	Cache       core.OutputCache
}

// Runner claims queued jobs, executes them, and records the terminal state.
// Each claim carries a lease; a companion reap loop fails jobs whose lease
// expired so a crashed worker never leaves a job running forever.
type Runner struct {
	jobs     *service.JobService
	executor *service.Executor
	logger   *slog.Logger

	workers      int
	leaseSeconds int
	pollInterval time.Duration
	jobTimeout   time.Duration
	reapInterval time.Duration
}

// NewRunner wires repositories and services and constructs a job runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.DB == nil && (opts.JobsRepo == nil || opts.OutputsRepo == nil) {
		return nil, errors.New("either DB or both JobsRepo and OutputsRepo must be provided")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := opts.Config
	cfg.Sanitize()

	jobsRepo := opts.JobsRepo
	if jobsRepo == nil {
		jobsRepo = data.NewJobRepo(data.JobRepoOptions{DB: opts.DB, Logger: logger})
	}
	outputsRepo := opts.OutputsRepo
	if outputsRepo == nil {
		outputsRepo = data.NewOutputRepo(opts.DB, logger)
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Repo:    jobsRepo,
		Outputs: outputsRepo,
		Cache:   opts.Cache,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire job service: %w", err)
	}

	executor, err := service.NewExecutor(service.ExecutorOptions{
		Files:     opts.Files,
		LLM:       opts.LLM,
		Snapshots: opts.Snapshots,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire executor: %w", err)
	}

	lease := time.Duration(cfg.LeaseSeconds) * time.Second
	reapInterval := lease / 2
	if reapInterval < time.Second {
		reapInterval = time.Second
	}

	return &Runner{
		jobs:         jobs,
		executor:     executor,
		logger:       logger.With("component", "job_runner"),
		workers:      cfg.Concurrency,
		leaseSeconds: cfg.LeaseSeconds,
		pollInterval: cfg.PollInterval,
		jobTimeout:   cfg.JobTimeout,
		reapInterval: reapInterval,
	}, nil
}

// Run starts worker goroutines plus the lease reap loop and processes jobs
// until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting job runner",
		"workers", r.workers, "lease_seconds", r.leaseSeconds, "poll_interval", r.pollInterval)

	group, gctx := errgroup.WithContext(ctx)
	for range r.workers {
		group.Go(func() error { return r.workerLoop(gctx) })
	}
	group.Go(func() error { return r.reapLoop(gctx) })
	return group.Wait()
}

func (r *Runner) workerLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		job, err := r.jobs.ReserveNext(ctx, r.leaseSeconds)
		switch {
		case err == nil:
			if job == nil {
				if !r.sleep(ctx, r.pollInterval) {
					return nil
				}
				continue
			}
			r.processJob(ctx, job)
		case errors.Is(err, context.Canceled):
			return nil
		default:
			r.logger.ErrorContext(ctx, "failed to reserve next job", "error", err)
			return fmt.Errorf("reserve next: %w", err)
		}
	}
	return nil
}

// reapLoop periodically fails running jobs whose lease expired.
func (r *Runner) reapLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			count, err := r.jobs.FailExpired(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.ErrorContext(ctx, "failed to reap expired leases", "error", err)
				continue
			}
			if count > 0 {
				r.logger.WarnContext(ctx, "failed jobs with expired leases", "count", count)
			}
		}
	}
}

func (r *Runner) processJob(ctx context.Context, job *model.Job) {
	start := time.Now()
	r.logger.InfoContext(ctx, "processing job", "job_id", job.ID, "type", string(job.Type))

	execCtx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	text, err := r.executor.Execute(execCtx, job)
	// DeadlineExceeded is sticky on execCtx, so checking it after cancel is
	// safe; plain Canceled only means cancel() ran, not that time ran out.
	timedOut := errors.Is(execCtx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		if timedOut && !apperrors.IsTimeout(err) {
			err = apperrors.Timeout(fmt.Sprintf("job execution exceeded the %s limit", r.jobTimeout))
		}
		r.fail(ctx, job, err)
		return
	}

	completed, err := r.jobs.Complete(ctx, core.CompleteJobParams{
		JobID:       job.ID,
		Type:        job.Type,
		ContentText: text,
		ContentType: model.ContentTypeMarkdown,
	})
	switch {
	case err != nil:
		r.logger.ErrorContext(ctx, "complete job error", "job_id", job.ID, "error", err)
	case !completed:
		// The reap loop beat us to it: the job already left running state.
		r.logger.WarnContext(ctx, "job no longer running at completion", "job_id", job.ID)
	default:
		r.logger.InfoContext(ctx, "job succeeded", "job_id", job.ID, "duration", time.Since(start))
	}
}

// fail records a terminal failure. The fail call runs on a context detached
// from cancellation so a timed-out or shutting-down worker can still persist
// the outcome.
func (r *Runner) fail(ctx context.Context, job *model.Job, execErr error) {
	msg := apperrors.Sanitized(execErr)
	r.logger.WarnContext(ctx, "job failed", "job_id", job.ID, "type", string(job.Type), "error", msg)

	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, err := r.jobs.Fail(failCtx, job.ID, msg); err != nil {
		r.logger.ErrorContext(ctx, "fail job error", "job_id", job.ID, "error", err, "original_error", execErr)
	}
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
