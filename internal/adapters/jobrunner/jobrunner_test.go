package jobrunner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/slushhq/agent-ops/config"
	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/mocks"
)

type runnerMocks struct {
	jobs    *mocks.MockJobRepository
	outputs *mocks.MockOutputRepository
	files   *mocks.MockFileLoader
	llm     *mocks.MockTextGenerator
}

func newTestRunner(t *testing.T, cfg config.RunnerConfig) (*Runner, runnerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := runnerMocks{
		jobs:    mocks.NewMockJobRepository(ctrl),
		outputs: mocks.NewMockOutputRepository(ctrl),
		files:   mocks.NewMockFileLoader(ctrl),
		llm:     mocks.NewMockTextGenerator(ctrl),
	}
	runner, err := NewRunner(RunnerOptions{
		Config:      cfg,
		Files:       m.files,
		LLM:         m.llm,
		JobsRepo:    m.jobs,
		OutputsRepo: m.outputs,
	})
	require.NoError(t, err)
	return runner, m
}

func queuedJob(t *testing.T, jobType model.JobType, params map[string]any) *model.Job {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return &model.Job{
		ID:     "e7d9f8a2-31c0-4a8b-b6d4-9a1c2e3f4a5b",
		Type:   jobType,
		Status: model.JobStatusRunning,
		Params: raw,
	}
}

func TestProcessJobCompletesWithOutput(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{})

	job := queuedJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})

	m.llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		Return("# Prompt Pack - Billing", nil)
	m.jobs.EXPECT().
		Complete(gomock.Any(), core.CompleteJobParams{
			JobID:       job.ID,
			Type:        model.JobTypePromptPack,
			ContentText: "# Prompt Pack - Billing",
			ContentType: model.ContentTypeMarkdown,
		}).
		Return(true, nil)

	runner.processJob(context.Background(), job)
}

func TestProcessJobFailsDeprecatedTypeWithoutCollaborator(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{})

	job := queuedJob(t, model.JobTypeLeadList, map[string]any{"segment": "fintech"})

	// No LLM expectation: retired types fail before any collaborator call.
	var failMsg string
	m.jobs.EXPECT().
		Fail(gomock.Any(), job.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg string) (bool, error) {
			failMsg = msg
			return true, nil
		})

	runner.processJob(context.Background(), job)

	assert.Contains(t, failMsg, "retired")
	assert.Contains(t, failMsg, "prompt_pack, research_brief, weekly_pilot_memo")
}

func TestProcessJobSanitizesUnexpectedErrors(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{})

	job := queuedJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})

	m.llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		Return("", errors.New(`dial tcp: password="hunter2" connection refused`))

	var failMsg string
	m.jobs.EXPECT().
		Fail(gomock.Any(), job.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg string) (bool, error) {
			failMsg = msg
			return true, nil
		})

	runner.processJob(context.Background(), job)

	assert.Equal(t, "job execution failed", failMsg)
	assert.NotContains(t, failMsg, "hunter2")
}

func TestProcessJobKeepsCollaboratorErrorText(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{})

	job := queuedJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})

	m.llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		Return("", apperrors.Collaborator("LLM rate limit exceeded, try again later"))

	var failMsg string
	m.jobs.EXPECT().
		Fail(gomock.Any(), job.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg string) (bool, error) {
			failMsg = msg
			return true, nil
		})

	// The worker finished well before the deadline: the recorded error must
	// stay the collaborator's message, not a timeout.
	runner.processJob(context.Background(), job)

	assert.Equal(t, "LLM rate limit exceeded, try again later", failMsg)
}

func TestProcessJobTimesOut(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{JobTimeout: 50 * time.Millisecond})

	job := queuedJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})

	m.llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ core.GenerateTextParams) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	var failMsg string
	m.jobs.EXPECT().
		Fail(gomock.Any(), job.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg string) (bool, error) {
			failMsg = msg
			return true, nil
		})

	runner.processJob(context.Background(), job)

	assert.Contains(t, failMsg, "exceeded")
}

func TestProcessJobAlreadyReaped(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{})

	job := queuedJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"})

	m.llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		Return("plan", nil)
	// Completion reports no transition when the reap loop already failed the job.
	m.jobs.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(false, nil)

	runner.processJob(context.Background(), job)
}

func TestRunStopsOnCancel(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{
		Concurrency:  2,
		PollInterval: 5 * time.Millisecond,
	})

	m.jobs.EXPECT().ReserveNext(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	m.jobs.EXPECT().FailExpired(gomock.Any()).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestRunStopsOnReserveError(t *testing.T) {
	runner, m := newTestRunner(t, config.RunnerConfig{
		Concurrency:  1,
		PollInterval: 5 * time.Millisecond,
	})

	m.jobs.EXPECT().
		ReserveNext(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset")).
		AnyTimes()
	m.jobs.EXPECT().FailExpired(gomock.Any()).Return(0, nil).AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := runner.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserve next")
}

func TestNewRunnerRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := NewRunner(RunnerOptions{
		Files: mocks.NewMockFileLoader(ctrl),
		LLM:   mocks.NewMockTextGenerator(ctrl),
	})
	assert.ErrorContains(t, err, "JobsRepo")

	_, err = NewRunner(RunnerOptions{
		JobsRepo:    mocks.NewMockJobRepository(ctrl),
		OutputsRepo: mocks.NewMockOutputRepository(ctrl),
		LLM:         mocks.NewMockTextGenerator(ctrl),
	})
	assert.ErrorContains(t, err, "FileLoader")
}
