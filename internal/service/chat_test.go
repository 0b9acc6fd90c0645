package service_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/slushhq/agent-ops/internal/core"
	"github.com/slushhq/agent-ops/internal/domain/model"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
	"github.com/slushhq/agent-ops/internal/mocks"
	"github.com/slushhq/agent-ops/internal/service"
)

func newChatService(t *testing.T, ctrl *gomock.Controller) (*service.ChatService, *mocks.MockJobRepository, *mocks.MockOutputRepository, *mocks.MockTextGenerator) {
	t.Helper()
	jobs := mocks.NewMockJobRepository(ctrl)
	outputs := mocks.NewMockOutputRepository(ctrl)
	llm := mocks.NewMockTextGenerator(ctrl)
	svc, err := service.NewChatService(service.ChatServiceOptions{Jobs: jobs, Outputs: outputs, LLM: llm})
	require.NoError(t, err)
	return svc, jobs, outputs, llm
}

func TestChatRejectsBlankMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, _, _ := newChatService(t, ctrl)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := svc.Chat(context.Background(), "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11", message)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "message", apperrors.GetField(err))
	}
}

func TestChatMissingJobOrOutput(t *testing.T) {
	const jobID = "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11"

	t.Run("job not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, jobs, _, _ := newChatService(t, ctrl)

		jobs.EXPECT().GetByID(gomock.Any(), jobID).Return(nil, apperrors.NotFound("job not found"))

		_, err := svc.Chat(context.Background(), jobID, "what changed?")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("output not persisted yet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, jobs, outputs, _ := newChatService(t, ctrl)

		job := newTestJob(t, model.JobTypeResearchBrief, map[string]any{"topic": "pricing"})
		jobs.EXPECT().GetByID(gomock.Any(), jobID).Return(job, nil)
		outputs.EXPECT().GetByJobID(gomock.Any(), jobID).Return(nil, apperrors.NotFound("output not found"))

		_, err := svc.Chat(context.Background(), jobID, "what changed?")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestChatBuildsContextPrompt(t *testing.T) {
	const jobID = "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11"

	ctrl := gomock.NewController(t)
	svc, jobs, outputs, llm := newChatService(t, ctrl)

	job := newTestJob(t, model.JobTypeResearchBrief, map[string]any{"topic": "pricing"})
	output := sampleOutput(model.JobTypeResearchBrief)

	jobs.EXPECT().GetByID(gomock.Any(), jobID).Return(job, nil)
	outputs.EXPECT().GetByJobID(gomock.Any(), jobID).Return(output, nil)

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "The brief recommends tiered pricing.", nil
		})

	reply, err := svc.Chat(context.Background(), jobID, "  what does it recommend?  ")
	require.NoError(t, err)
	assert.Equal(t, "The brief recommends tiered pricing.", reply)

	assert.Contains(t, got.System, "continuing a conversation about a research_brief")
	assert.Contains(t, got.System, `"topic": "pricing"`)
	assert.Contains(t, got.System, output.ContentText)
	assert.Equal(t, "Follow-up question: what does it recommend?", got.User)
}

func TestChatTruncatesLongOutputs(t *testing.T) {
	const jobID = "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11"

	ctrl := gomock.NewController(t)
	svc, jobs, outputs, llm := newChatService(t, ctrl)

	job := newTestJob(t, model.JobTypeResearchBrief, map[string]any{"topic": "pricing"})
	output := sampleOutput(model.JobTypeResearchBrief)
	output.ContentText = strings.Repeat("a", 5000)

	jobs.EXPECT().GetByID(gomock.Any(), jobID).Return(job, nil)
	outputs.EXPECT().GetByJobID(gomock.Any(), jobID).Return(output, nil)

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "reply", nil
		})

	_, err := svc.Chat(context.Background(), jobID, "summarize")
	require.NoError(t, err)

	assert.Contains(t, got.System, strings.Repeat("a", 2000)+"...")
	assert.NotContains(t, got.System, strings.Repeat("a", 2001))
}

func TestChatTruncationKeepsRunesIntact(t *testing.T) {
	const jobID = "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11"

	ctrl := gomock.NewController(t)
	svc, jobs, outputs, llm := newChatService(t, ctrl)

	job := newTestJob(t, model.JobTypeResearchBrief, map[string]any{"topic": "pricing"})
	output := sampleOutput(model.JobTypeResearchBrief)
	// Three-byte runes guarantee the byte limit lands mid-sequence.
	output.ContentText = strings.Repeat("あ", 2000)

	jobs.EXPECT().GetByID(gomock.Any(), jobID).Return(job, nil)
	outputs.EXPECT().GetByJobID(gomock.Any(), jobID).Return(output, nil)

	var got core.GenerateTextParams
	llm.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.GenerateTextParams) (string, error) {
			got = params
			return "reply", nil
		})

	_, err := svc.Chat(context.Background(), jobID, "summarize")
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(got.System), "prompt must not contain a split rune")
	assert.Contains(t, got.System, "あ...")
}

func TestChatPropagatesCollaboratorError(t *testing.T) {
	const jobID = "8f14c63a-52f1-4a4e-9b53-1f0a3f5e2f11"

	ctrl := gomock.NewController(t)
	svc, jobs, outputs, llm := newChatService(t, ctrl)

	jobs.EXPECT().GetByID(gomock.Any(), jobID).
		Return(newTestJob(t, model.JobTypePromptPack, map[string]any{"feature_name": "Billing"}), nil)
	outputs.EXPECT().GetByJobID(gomock.Any(), jobID).Return(sampleOutput(model.JobTypePromptPack), nil)
	llm.EXPECT().GenerateText(gomock.Any(), gomock.Any()).
		Return("", apperrors.Collaborator("LLM service error, try again shortly"))

	_, err := svc.Chat(context.Background(), jobID, "why?")
	require.Error(t, err)
	assert.True(t, apperrors.IsCollaborator(err))
}
