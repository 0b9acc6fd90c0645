package core

import (
	"context"

	"github.com/slushhq/agent-ops/internal/domain/model"
	"github.com/slushhq/agent-ops/internal/sandbox"
)

// This file contains the interface definitions (ports in hexagonal
// architecture) between the service/runner layer and the data/adapter layer.
// Service implementations should depend on these interfaces, not concrete
// implementations.

// CompleteJobParams groups parameters for JobRepository.Complete so the job
// transition and its output row commit in one transaction.
type CompleteJobParams struct {
	JobID       string
	Type        model.JobType
	ContentText string
	ContentType string
}

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	// Create validates and persists a new queued job. Validation failures
	// surface as validation errors before anything is written.
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error)

	// ReserveNext atomically claims the oldest queued job, transitions it to
	// running, and sets a lease. Returns (nil, nil) when the queue is empty.
	// Concurrent callers never receive the same job.
	ReserveNext(ctx context.Context, leaseSeconds int) (*model.Job, error)

	// Complete transitions a running job to succeeded and stores its output
	// atomically. Returns false if the job was not in running state.
	Complete(ctx context.Context, params CompleteJobParams) (bool, error)

	// Fail transitions a running or queued job to failed with a sanitized
	// error message. Returns false if the job was already terminal.
	Fail(ctx context.Context, id, errMsg string) (bool, error)

	// FailExpired fails running jobs whose lease has expired, so a crashed
	// worker never leaves a job running indefinitely. Returns the count.
	FailExpired(ctx context.Context) (int, error)

	Stats(ctx context.Context) (*model.JobStats, error)
}

// OutputRepository defines the interface for generated output queries.
type OutputRepository interface {
	GetByJobID(ctx context.Context, jobID string) (*model.Output, error)

	// LatestByType returns the most recent output of the given type from a
	// succeeded job, ordered by created_at descending with id as tiebreaker.
	LatestByType(ctx context.Context, jobType model.JobType) (*model.Output, error)
}

// OutputCache caches latest-output lookups. Implementations must be safe to
// skip entirely: a cache miss or cache failure falls through to the repository.
type OutputCache interface {
	GetLatest(ctx context.Context, jobType model.JobType) (*model.Output, error)
	SetLatest(ctx context.Context, output *model.Output) error
	Invalidate(ctx context.Context, jobType model.JobType) error
}

// GenerateTextParams carries one model invocation.
type GenerateTextParams struct {
	System string
	User   string
}

// TextGenerator produces text from a prompt via the LLM collaborator.
type TextGenerator interface {
	// GenerateText returns the model's text response, truncated to the
	// configured output limit. Errors carry sanitized messages safe to
	// persist on the job.
	GenerateText(ctx context.Context, params GenerateTextParams) (string, error)
}

// SnapshotFetcher retrieves the current product metrics snapshot from the
// main application. Implementations degrade gracefully: callers receive an
// error they may replace with an unavailability marker.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (string, error)
}

// FileLoader resolves sandbox file keys to content.
type FileLoader interface {
	Load(category sandbox.Category, key string) (string, error)
}
