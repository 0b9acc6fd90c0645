// Package data implements the persistence layer over Postgres (pgx via the
// database/sql bridge) and Redis.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/data/pgxutil"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/generator"
)

// leaseExpiredErrorText is recorded on jobs whose worker stopped heartbeating.
const leaseExpiredErrorText = "job lease expired: worker timed out or crashed before completing"

// JobRepoOptions groups dependencies for NewJobRepo.
type JobRepoOptions struct {
	DB           *sql.DB      // Required
	Logger       *slog.Logger // Optional
	TimeProvider TimeProvider // Optional, defaults to system clock
}

// JobRepo provides database operations for the job lifecycle.
type JobRepo struct {
	db           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a JobRepo.
func NewJobRepo(opts JobRepoOptions) *JobRepo {
	tp := opts.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRepo{
		db:           opts.DB,
		timeProvider: tp,
		logger:       logger.With("component", "job_repo"),
	}
}

var _ core.JobRepository = (*JobRepo)(nil)

const jobColumns = `
  id,
  type,
  status,
  params,
  error_text,
  started_at,
  finished_at,
  lease_expires_at,
  created_at,
  updated_at
`

// Create validates the request against the type's parameter schema and
// inserts a queued job. A schema violation returns before anything touches
// the database: a rejected request never leaves a row behind. The retired
// lead_list type is accepted here (its shape is valid) and fails at
// execution time instead.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if !req.Type.Valid() {
		return nil, apperrors.Validationf("unknown job type: %q", req.Type)
	}
	if !req.Type.Deprecated() {
		schema, err := generator.SchemaForType(req.Type)
		if err != nil {
			return nil, err
		}
		if err := schema.Validate(req.Params); err != nil {
			return nil, err
		}
	}

	params := req.Params
	if params == nil {
		params = model.Params{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "encode job params")
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO jobs (id, type, status, params, created_at, updated_at)
		VALUES ($1, $2, 'queued', $3, $4, $4)
		RETURNING `+jobColumns,
		uuid.NewString(), req.Type, paramsJSON, r.timeProvider.Now().UTC())

	job, err := scanJob(row)
	if err != nil {
		if pgxutil.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("job id collision, retry the request")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "insert job")
	}

	r.logger.InfoContext(ctx, "job created", "job_id", job.ID, "type", string(job.Type))
	return job, nil
}

// GetByID returns the job with the given id, or a not-found error.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return nil, apperrors.NotFoundf("job %q not found", id)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("job %q not found", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "get job")
	}
	return job, nil
}

// List returns jobs matching the options, ordered by created_at.
func (r *JobRepo) List(ctx context.Context, opts *model.JobListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobListOptions{}
	}
	opts.Normalize()

	var (
		where []string
		args  []any
	)
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Type != nil {
		args = append(args, *opts.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// SortOrder is normalized to a fixed vocabulary above, never caller input.
	query += " ORDER BY created_at " + strings.ToUpper(opts.SortOrder) + ", id " + strings.ToUpper(opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "list jobs")
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, apperrors.Wrap(scanErr, apperrors.ErrCodeInternal, "scan job")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "list jobs")
	}
	return jobs, nil
}

// SQL used by ReserveNext to atomically claim the next queued job. SKIP
// LOCKED guarantees two concurrent workers never claim the same row.
const reserveNextSQL = `
  WITH cte AS (
    SELECT id FROM jobs
    WHERE status = 'queued'
    ORDER BY created_at ASC, id ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE jobs j
  SET
    status = 'running',
    started_at = COALESCE(j.started_at, $1),
    lease_expires_at = $2,
    updated_at = $1
  FROM cte
  WHERE j.id = cte.id
  RETURNING j.id, j.type, j.status, j.params, j.error_text, j.started_at, j.finished_at, j.lease_expires_at, j.created_at, j.updated_at`

// ReserveNext claims the oldest queued job and transitions it to running
// with a lease. Returns (nil, nil) when no job is queued.
func (r *JobRepo) ReserveNext(ctx context.Context, leaseSeconds int) (*model.Job, error) {
	now := r.timeProvider.Now().UTC()
	leaseExpiry := now.Add(time.Duration(leaseSeconds) * time.Second)

	row := r.db.QueryRowContext(ctx, reserveNextSQL, now, leaseExpiry)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "reserve next job")
	}

	r.logger.InfoContext(ctx, "job claimed", "job_id", job.ID, "type", string(job.Type), "lease_expires_at", leaseExpiry)
	return job, nil
}

// Complete transitions a running job to succeeded and persists its output in
// the same transaction: no observer ever sees a succeeded job without a
// retrievable output. Returns false if the job was not running.
func (r *JobRepo) Complete(ctx context.Context, params core.CompleteJobParams) (bool, error) {
	contentType := params.ContentType
	if contentType == "" {
		contentType = model.ContentTypeMarkdown
	}

	var completed bool
	err := pgxutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		now := r.timeProvider.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'succeeded', finished_at = $2, lease_expires_at = NULL, updated_at = $2
			WHERE id = $1 AND status = 'running'
		`, params.JobID, now)
		if err != nil {
			return fmt.Errorf("complete job: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outputs (job_id, type, content_text, content_type, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, params.JobID, params.Type, params.ContentText, contentType, now); err != nil {
			return fmt.Errorf("insert output: %w", err)
		}
		completed = true
		return nil
	})
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "complete job")
	}

	if completed {
		r.logger.InfoContext(ctx, "job succeeded", "job_id", params.JobID, "type", string(params.Type))
	}
	return completed, nil
}

// Fail transitions a queued or running job to failed, recording the error
// text. Terminal jobs are never modified. Returns false when nothing changed.
func (r *JobRepo) Fail(ctx context.Context, id, errMsg string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'failed', error_text = $2, finished_at = $3, lease_expires_at = NULL, updated_at = $3
		WHERE id = $1 AND status IN ('queued', 'running')
	`, id, errMsg, r.timeProvider.Now().UTC())
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "fail job")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "fail job rows affected")
	}
	if n > 0 {
		r.logger.WarnContext(ctx, "job failed", "job_id", id, "error", errMsg)
	}
	return n > 0, nil
}

// FailExpired fails running jobs whose lease expired. A crashed or partitioned
// worker thus never leaves its job running indefinitely; the transition stays
// monotonic (running is non-terminal, failed is terminal).
func (r *JobRepo) FailExpired(ctx context.Context) (int, error) {
	now := r.timeProvider.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'failed', error_text = $1, finished_at = $2, lease_expires_at = NULL, updated_at = $2
		WHERE status = 'running'
		  AND lease_expires_at IS NOT NULL
		  AND lease_expires_at < $2
	`, leaseExpiredErrorText, now)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "fail expired jobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "fail expired rows affected")
	}
	if n > 0 {
		r.logger.WarnContext(ctx, "expired job leases failed", "count", n)
	}
	return int(n), nil
}

// Stats returns the number of jobs in each state.
func (r *JobRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	stats := &model.JobStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'queued'),
			COUNT(*) FILTER (WHERE status = 'running'),
			COUNT(*) FILTER (WHERE status = 'succeeded'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM jobs
	`).Scan(&stats.Queued, &stats.Running, &stats.Succeeded, &stats.Failed)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "job stats")
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (*model.Job, error) {
	var (
		job            model.Job
		params         []byte
		errorText      sql.NullString
		startedAt      sql.NullTime
		finishedAt     sql.NullTime
		leaseExpiresAt sql.NullTime
	)
	err := scanner.Scan(
		&job.ID,
		&job.Type,
		&job.Status,
		&params,
		&errorText,
		&startedAt,
		&finishedAt,
		&leaseExpiresAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Params = cloneJSON(params)
	job.ErrorText = nullableString(errorText)
	job.StartedAt = nullableTime(startedAt)
	job.FinishedAt = nullableTime(finishedAt)
	job.LeaseExpiresAt = nullableTime(leaseExpiresAt)
	return &job, nil
}

func cloneJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return append(json.RawMessage(nil), raw...)
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
