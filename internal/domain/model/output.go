package model

import "time"

// Content type markers for generated outputs.
const (
	// ContentTypeMarkdown marks markdown output, the default for all generators.
	ContentTypeMarkdown = "text/markdown"
	// ContentTypePlain marks plain text output.
	ContentTypePlain = "text/plain"
)

// Output is the generated artifact text associated with a succeeded Job.
// Each job owns at most one output; it is created in the same transaction
// that marks the job succeeded and is removed with its job.
type Output struct {
	ID          int64     `json:"id"           db:"id"`
	JobID       string    `json:"job_id"       db:"job_id"`
	Type        JobType   `json:"type"         db:"type"`
	ContentText string    `json:"content_text" db:"content_text"`
	ContentType string    `json:"content_type" db:"content_type"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}
