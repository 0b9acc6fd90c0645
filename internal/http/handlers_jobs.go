// Package httpx provides the HTTP handlers and router for the agent-ops job API.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/service"
)

// JobHandlers provides HTTP handlers for job-related operations.
type JobHandlers struct {
	Svc  *service.JobService
	Chat *service.ChatService
}

// CreateJob handles POST /jobs. Schema violations return 422 and leave no
// job row behind.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /jobs with optional status, type, sort, limit, and
// offset query parameters.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		RenderError(w, err)
		return
	}

	jobs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		RenderError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

// JobStats handles GET /jobs/stats.
func (h *JobHandlers) JobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// GetJobOutput handles GET /jobs/{id}/output.
func (h *JobHandlers) GetJobOutput(w http.ResponseWriter, r *http.Request) {
	output, err := h.Svc.GetOutput(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, output)
}

// LatestOutput handles GET /outputs/latest?type=.
func (h *JobHandlers) LatestOutput(w http.ResponseWriter, r *http.Request) {
	jobType := model.JobType(r.URL.Query().Get("type"))
	output, err := h.Svc.LatestOutput(r.Context(), jobType)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, output)
}

// ChatJob handles POST /jobs/{id}/chat: a follow-up question about a job's
// generated output.
func (h *JobHandlers) ChatJob(w http.ResponseWriter, r *http.Request) {
	if h.Chat == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "chat_unavailable",
			Err:     errors.New("chat is not configured"),
		})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	reply, err := h.Chat.Chat(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// listOptionsFromQuery builds job list options from query parameters,
// rejecting malformed numeric values.
func listOptionsFromQuery(r *http.Request) (*model.JobListOptions, error) {
	opts := &model.JobListOptions{}
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := model.JobStatus(v)
		opts.Status = &status
	}
	if v := q.Get("type"); v != "" {
		jobType := model.JobType(v)
		opts.Type = &jobType
	}
	opts.SortOrder = q.Get("sort")

	var err error
	if opts.Limit, err = intQuery(q.Get("limit")); err != nil {
		return nil, err
	}
	if opts.Offset, err = intQuery(q.Get("offset")); err != nil {
		return nil, err
	}
	return opts, nil
}

func intQuery(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validationf("query parameter must be an integer, got %q", raw)
	}
	return n, nil
}
