// Package service contains the business logic between the HTTP/runner layers
// and the repositories.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo    core.JobRepository    // Required: job repository
	Outputs core.OutputRepository // Required: output queries
	Cache   core.OutputCache      // Optional: latest-output cache
	Logger  *slog.Logger          // Optional: structured logger
}

// JobService provides job lifecycle and output query operations. The output
// cache is strictly advisory: any cache failure logs and falls through to
// the database.
type JobService struct {
	repo    core.JobRepository
	outputs core.OutputRepository
	cache   core.OutputCache
	logger  *slog.Logger
}

// NewJobService constructs a JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Outputs == nil {
		return nil, errors.New("OutputRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		repo:    opts.Repo,
		outputs: opts.Outputs,
		cache:   opts.Cache,
		logger:  logger.With("component", "job_service"),
	}, nil
}

// MustNewJobService constructs a JobService and panics on invalid options.
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Create validates and persists a new queued job.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	return s.repo.Create(ctx, req)
}

// Get returns the job with the given id.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns jobs matching the options.
func (s *JobService) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	return s.repo.List(ctx, opts)
}

// Stats returns job counts per state.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	return s.repo.Stats(ctx)
}

// ReserveNext claims the next queued job with a lease.
func (s *JobService) ReserveNext(ctx context.Context, leaseSeconds int) (*model.Job, error) {
	return s.repo.ReserveNext(ctx, leaseSeconds)
}

// Complete transitions a running job to succeeded with its output, then
// invalidates the latest-output cache for the type so reads repopulate from
// the database.
func (s *JobService) Complete(ctx context.Context, params core.CompleteJobParams) (bool, error) {
	ok, err := s.repo.Complete(ctx, params)
	if err != nil || !ok {
		return ok, err
	}
	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, params.Type); cacheErr != nil {
			s.logger.WarnContext(ctx, "latest-output cache invalidation failed", "type", string(params.Type), "err", cacheErr)
		}
	}
	return true, nil
}

// Fail transitions a queued or running job to failed.
func (s *JobService) Fail(ctx context.Context, id, errMsg string) (bool, error) {
	return s.repo.Fail(ctx, id, errMsg)
}

// FailExpired fails running jobs whose lease expired.
func (s *JobService) FailExpired(ctx context.Context) (int, error) {
	return s.repo.FailExpired(ctx)
}

// GetOutput returns the output of a job.
func (s *JobService) GetOutput(ctx context.Context, jobID string) (*model.Output, error) {
	return s.outputs.GetByJobID(ctx, jobID)
}

// LatestOutput returns the most recent output of the given type, checking
// the cache first.
func (s *JobService) LatestOutput(ctx context.Context, jobType model.JobType) (*model.Output, error) {
	if !jobType.Valid() {
		// Bypass the cache so the repository surfaces its validation error.
		return s.outputs.LatestByType(ctx, jobType)
	}

	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx, jobType)
		if err != nil {
			s.logger.WarnContext(ctx, "latest-output cache read failed", "type", string(jobType), "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	output, err := s.outputs.LatestByType(ctx, jobType)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetLatest(ctx, output); cacheErr != nil {
			s.logger.WarnContext(ctx, "latest-output cache write failed", "type", string(jobType), "err", cacheErr)
		}
	}
	return output, nil
}
