package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/generator"
	"github.com/slushhq/agent-ops/internal/mocks"
	"github.com/slushhq/agent-ops/internal/sandbox"
	"github.com/slushhq/agent-ops/internal/service"
)

func newTestJob(t *testing.T, jobType model.JobType, params map[string]any) *model.Job {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return &model.Job{
		ID:     "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11",
		Type:   jobType,
		Status: model.JobStatusRunning,
		Params: raw,
	}
}

func TestExecutorRejectsBeforeCollaborator(t *testing.T) {
	ctrl := gomock.NewController(t)
	// Neither the loader nor the model has expectations: any call fails the test.
	executor, err := service.NewExecutor(service.ExecutorOptions{
		Files: mocks.NewMockFileLoader(ctrl),
		LLM:   mocks.NewMockTextGenerator(ctrl),
	})
	require.NoError(t, err)

	t.Run("deprecated type fails without running", func(t *testing.T) {
		job := newTestJob(t, model.JobTypeLeadList, map[string]any{"segment": "fintech"})
		_, err := executor.Execute(context.Background(), job)
		require.Error(t, err)
		assert.True(t, apperrors.IsDeprecatedType(err))
		assert.False(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "retired")
	})

	t.Run("unknown type is a validation error", func(t *testing.T) {
		job := newTestJob(t, model.JobType("sales_forecast"), nil)
		_, err := executor.Execute(context.Background(), job)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.False(t, apperrors.IsDeprecatedType(err))
	})
}

func TestExecutorLoadsFilesIntoPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := mocks.NewMockFileLoader(ctrl)
	llm := mocks.NewMockTextGenerator(ctrl)

	files.EXPECT().
		Load(sandbox.CategoryRepoSnapshots, "snapshot.txt").
		Return("package main // repo contents", nil)

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "# Prompt Pack - Billing", nil
		})

	executor := mustNewExecutor(t, service.ExecutorOptions{Files: files, LLM: llm})

	job := newTestJob(t, model.JobTypePromptPack, map[string]any{
		"feature_name":      "Billing",
		"repo_snapshot_key": "snapshot.txt",
	})
	out, err := executor.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "# Prompt Pack - Billing", out)

	assert.Contains(t, got.System, "senior technical architect")
	assert.Contains(t, got.User, "Create an implementation plan for: Billing")
	assert.Contains(t, got.User, "package main // repo contents")
}

func TestExecutorSkipsFailedOptionalFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	files := mocks.NewMockFileLoader(ctrl)
	llm := mocks.NewMockTextGenerator(ctrl)

	files.EXPECT().
		Load(sandbox.CategoryRepoSnapshots, "missing.txt").
		Return("", apperrors.NotFound("file not found"))
	files.EXPECT().
		Load(sandbox.CategoryOutputs, "notes.md").
		Return("prior memo notes", nil)

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "plan text", nil
		})

	executor := mustNewExecutor(t, service.ExecutorOptions{Files: files, LLM: llm})

	job := newTestJob(t, model.JobTypePromptPack, map[string]any{
		"feature_name":      "Billing",
		"repo_snapshot_key": "missing.txt",
		"notes_key":         "notes.md",
	})
	out, err := executor.Execute(context.Background(), job)
	require.NoError(t, err, "a failed optional file must not fail the job")
	assert.Equal(t, "plan text", out)

	assert.Contains(t, got.User, "prior memo notes")
	assert.NotContains(t, got.User, "missing.txt")
}

func TestExecutorSnapshotFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := mocks.NewMockTextGenerator(ctrl)
	snapshots := mocks.NewMockSnapshotFetcher(ctrl)

	snapshots.EXPECT().
		FetchSnapshot(gomock.Any()).
		Return("", apperrors.Collaborator("insights endpoint returned service error"))

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "memo text", nil
		})

	executor := mustNewExecutor(t, service.ExecutorOptions{
		Files:     mocks.NewMockFileLoader(ctrl),
		LLM:       llm,
		Snapshots: snapshots,
		Now:       func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	})

	job := newTestJob(t, model.JobTypeWeeklyPilotMemo, map[string]any{"pilot_name": "Acme"})
	_, err := executor.Execute(context.Background(), job)
	require.NoError(t, err, "an unavailable snapshot must not fail the job")

	assert.Contains(t, got.User, generator.SnapshotUnavailable)
	assert.Contains(t, got.User, "Week starting: 2025-03-10")
}

func TestExecutorSnapshotIncluded(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := mocks.NewMockTextGenerator(ctrl)
	snapshots := mocks.NewMockSnapshotFetcher(ctrl)

	snapshots.EXPECT().
		FetchSnapshot(gomock.Any()).
		Return("## Signups\n- total: 120", nil)

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "memo text", nil
		})

	executor := mustNewExecutor(t, service.ExecutorOptions{
		Files:     mocks.NewMockFileLoader(ctrl),
		LLM:       llm,
		Snapshots: snapshots,
	})

	job := newTestJob(t, model.JobTypeWeeklyPilotMemo, map[string]any{
		"pilot_name":      "Acme",
		"week_start_date": "2025-03-03",
	})
	_, err := executor.Execute(context.Background(), job)
	require.NoError(t, err)

	assert.Contains(t, got.User, "- total: 120")
	assert.NotContains(t, got.User, generator.SnapshotUnavailable)
}

func TestExecutorAppliesInputsUsed(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := mocks.NewMockTextGenerator(ctrl)

	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		Return("# Prompt Pack - Billing\n\n## Inputs Used\n[List each input source explicitly]\n\n## Goal\nShip it.", nil)

	executor := mustNewExecutor(t, service.ExecutorOptions{
		Files: mocks.NewMockFileLoader(ctrl),
		LLM:   llm,
	})

	job := newTestJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})
	out, err := executor.Execute(context.Background(), job)
	require.NoError(t, err)

	assert.NotContains(t, out, "[List each input source explicitly]")
	assert.Contains(t, out, "## Inputs Used\n- Feature: Billing")
	assert.Contains(t, out, "## Goal")
}

func TestExecutorPropagatesCollaboratorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := mocks.NewMockTextGenerator(ctrl)

	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		Return("", apperrors.Collaborator("LLM rate limit exceeded, try again shortly"))

	executor := mustNewExecutor(t, service.ExecutorOptions{
		Files: mocks.NewMockFileLoader(ctrl),
		LLM:   llm,
	})

	job := newTestJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})
	_, err := executor.Execute(context.Background(), job)
	require.Error(t, err)
	assert.True(t, apperrors.IsCollaborator(err))
	assert.Contains(t, err.Error(), "rate limit")
}

func TestNewExecutorRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := service.NewExecutor(service.ExecutorOptions{LLM: mocks.NewMockTextGenerator(ctrl)})
	assert.ErrorContains(t, err, "FileLoader")

	_, err = service.NewExecutor(service.ExecutorOptions{Files: mocks.NewMockFileLoader(ctrl)})
	assert.ErrorContains(t, err, "TextGenerator")
}

func mustNewExecutor(t *testing.T, opts service.ExecutorOptions) *service.Executor {
	t.Helper()
	executor, err := service.NewExecutor(opts)
	require.NoError(t, err)
	return executor
}
