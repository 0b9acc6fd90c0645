package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
)

// OutputRepo provides read access to generated outputs. Writes happen in
// JobRepo.Complete so success and output persistence stay atomic.
type OutputRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewOutputRepo creates an OutputRepo.
func NewOutputRepo(db *sql.DB, logger *slog.Logger) *OutputRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputRepo{db: db, logger: logger.With("component", "output_repo")}
}

var _ core.OutputRepository = (*OutputRepo)(nil)

const outputColumns = `id, job_id, type, content_text, content_type, created_at`

// GetByJobID returns the output of the given job, or a not-found error.
func (r *OutputRepo) GetByJobID(ctx context.Context, jobID string) (*model.Output, error) {
	if _, err := uuid.Parse(strings.TrimSpace(jobID)); err != nil {
		return nil, apperrors.NotFoundf("output for job %q not found", jobID)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+outputColumns+` FROM outputs WHERE job_id = $1`, jobID)
	output, err := scanOutput(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("output for job %q not found", jobID)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "get output")
	}
	return output, nil
}

// LatestByType returns the newest output of the given type from a succeeded
// job. Ordering is created_at descending with id as tiebreaker, so two
// outputs created in the same instant resolve deterministically.
func (r *OutputRepo) LatestByType(ctx context.Context, jobType model.JobType) (*model.Output, error) {
	if !jobType.Valid() {
		return nil, apperrors.Validationf("unknown job type: %q", jobType)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.job_id, o.type, o.content_text, o.content_type, o.created_at
		FROM outputs o
		JOIN jobs j ON j.id = o.job_id
		WHERE o.type = $1 AND j.status = 'succeeded'
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT 1
	`, jobType)
	output, err := scanOutput(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("no output of type %q", jobType)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "latest output")
	}
	return output, nil
}

func scanOutput(scanner rowScanner) (*model.Output, error) {
	var out model.Output
	err := scanner.Scan(
		&out.ID,
		&out.JobID,
		&out.Type,
		&out.ContentText,
		&out.ContentType,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	return &out, nil
}
