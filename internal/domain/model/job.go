// Package model defines the core data types and structures used throughout
// the agent-ops job system.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobType represents the kind of artifact a job generates.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobType string

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobTypePromptPack generates an implementation planning document.
	JobTypePromptPack JobType = "prompt_pack"
	// JobTypeResearchBrief generates a research analysis brief.
	JobTypeResearchBrief JobType = "research_brief"
	// JobTypeWeeklyPilotMemo generates a weekly business analysis memo.
	JobTypeWeeklyPilotMemo JobType = "weekly_pilot_memo"
	// JobTypeLeadList is retired. Requests with this type are accepted for
	// compatibility but always fail during execution without reaching the
	// LLM collaborator.
	JobTypeLeadList JobType = "lead_list"

	// JobStatusQueued indicates a job is waiting to be picked up.
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning indicates a job is currently executing.
	JobStatusRunning JobStatus = "running"
	// JobStatusSucceeded indicates a job finished and persisted an output.
	JobStatusSucceeded JobStatus = "succeeded"
	// JobStatusFailed indicates a job failed; error_text carries the reason.
	JobStatusFailed JobStatus = "failed"
)

// UnmarshalText implements encoding.TextUnmarshaler for JobType to allow env
// and JSON string parsing.
func (t *JobType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	jt := JobType(v)
	if jt.Valid() {
		*t = jt
		return nil
	}
	return fmt.Errorf("invalid JobType: %q", v)
}

// Valid returns true if the JobType is a known type, including the retired
// lead_list sentinel (its request shape is valid; it fails at execution).
func (t JobType) Valid() bool {
	return t == JobTypePromptPack || t == JobTypeResearchBrief ||
		t == JobTypeWeeklyPilotMemo || t == JobTypeLeadList
}

// Deprecated returns true if the JobType is retired and must never reach the
// LLM collaborator.
func (t JobType) Deprecated() bool {
	return t == JobTypeLeadList
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusRunning ||
		s == JobStatusSucceeded || s == JobStatusFailed
}

// Terminal returns true if no transition may leave this status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// Params holds the job parameters as supplied by the caller. Values are
// strings or lists of strings; schema validation happens in the generator
// registry before a row is created.
type Params map[string]any

// StringValue returns the named parameter as a trimmed string, or "" when
// absent or not a string.
func (p Params) StringValue(name string) string {
	v, ok := p[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Job represents one request to generate an analysis artifact via the LLM
// collaborator.
type Job struct {
	ID             string          `json:"id"                         db:"id"`
	Type           JobType         `json:"type"                       db:"type"`
	Status         JobStatus       `json:"status"                     db:"status"`
	Params         json.RawMessage `json:"params"                     db:"params"`
	ErrorText      *string         `json:"error_text,omitempty"       db:"error_text"`
	StartedAt      *time.Time      `json:"started_at,omitempty"       db:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"      db:"finished_at"`
	LeaseExpiresAt *time.Time      `json:"lease_expires_at,omitempty" db:"lease_expires_at"`
	CreatedAt      time.Time       `json:"created_at"                 db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"                 db:"updated_at"`
}

// DecodeParams unmarshals the stored params JSON into a Params map.
func (j *Job) DecodeParams() (Params, error) {
	if len(j.Params) == 0 {
		return Params{}, nil
	}
	var p Params
	if err := json.Unmarshal(j.Params, &p); err != nil {
		return nil, fmt.Errorf("decode job params: %w", err)
	}
	if p == nil {
		p = Params{}
	}
	return p, nil
}

// CreateJobRequest represents a request to create a new job.
type CreateJobRequest struct {
	Type   JobType `json:"type"`
	Params Params  `json:"params"`
}

// JobStats represents counts of jobs in each state.
type JobStats struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
