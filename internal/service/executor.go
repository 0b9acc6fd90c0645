package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/generator"
)

// ExecutorOptions groups dependencies for Executor.
type ExecutorOptions struct {
	Files     core.FileLoader      // Required: sandbox file loader
	LLM       core.TextGenerator   // Required: LLM collaborator
	Snapshots core.SnapshotFetcher // Optional: business snapshot feed
	Now       func() time.Time     // Optional: clock, defaults to time.Now
	Logger    *slog.Logger         // Optional
}

// Executor runs one job: resolve the generator, gather optional inputs,
// build the prompt, and call the collaborator.
//
// Input gathering is deliberately forgiving: a missing or rejected optional
// file and an unavailable snapshot are logged and skipped, never fatal. Only
// generator dispatch, parameter decoding, and the LLM call itself can fail
// the job.
type Executor struct {
	files     core.FileLoader
	llm       core.TextGenerator
	snapshots core.SnapshotFetcher
	now       func() time.Time
	logger    *slog.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(opts ExecutorOptions) (*Executor, error) {
	if opts.Files == nil {
		return nil, errors.New("FileLoader is required")
	}
	if opts.LLM == nil {
		return nil, errors.New("TextGenerator is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		files:     opts.Files,
		llm:       opts.LLM,
		snapshots: opts.Snapshots,
		now:       now,
		logger:    logger.With("component", "executor"),
	}, nil
}

// Execute produces the output content for a job. Returned errors carry
// sanitized, persistable messages.
func (e *Executor) Execute(ctx context.Context, job *model.Job) (string, error) {
	gen, err := generator.ForType(job.Type)
	if err != nil {
		// Deprecated and unknown types stop here, before any input loading
		// or collaborator call.
		return "", err
	}
	schema := gen.Schema()

	params, err := job.DecodeParams()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "stored job params are unreadable")
	}

	inputs := generator.Inputs{
		Params: params,
		Files:  e.loadFiles(ctx, job.ID, schema, params),
		Now:    e.now(),
	}
	if schema.WantsSnapshot {
		inputs.Snapshot = e.fetchSnapshot(ctx, job.ID)
	}

	prompt, err := gen.BuildPrompt(inputs)
	if err != nil {
		return "", err
	}

	text, err := e.llm.GenerateText(ctx, core.GenerateTextParams{
		System: prompt.System,
		User:   prompt.User,
	})
	if err != nil {
		return "", err
	}
	return generator.ApplyInputsUsed(text, prompt.InputsUsed), nil
}

// loadFiles resolves the schema's file-reference parameters. Every failure
// is swallowed after logging: optional inputs never fail a job.
func (e *Executor) loadFiles(ctx context.Context, jobID string, schema generator.Schema, params model.Params) map[string]string {
	var files map[string]string
	for _, fp := range schema.FileParams {
		key := params.StringValue(fp.Name)
		if key == "" {
			continue
		}
		content, err := e.files.Load(fp.Category, key)
		if err != nil {
			e.logger.WarnContext(ctx, "optional file skipped",
				"job_id", jobID, "param", fp.Name, "key", key, "err", err)
			continue
		}
		if files == nil {
			files = make(map[string]string)
		}
		files[fp.Name] = content
	}
	return files
}

func (e *Executor) fetchSnapshot(ctx context.Context, jobID string) string {
	if e.snapshots == nil {
		return ""
	}
	snapshot, err := e.snapshots.FetchSnapshot(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "snapshot unavailable, generating without business data",
			"job_id", jobID, "err", err)
		return ""
	}
	return snapshot
}
