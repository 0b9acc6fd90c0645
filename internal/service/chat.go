package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/slushhq/agent-ops/internal/core"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
)

// chatContextChars caps how much of the original output is replayed into the
// follow-up prompt.
const chatContextChars = 2000

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Jobs    core.JobRepository    // Required
	Outputs core.OutputRepository // Required
	LLM     core.TextGenerator    // Required
	Logger  *slog.Logger          // Optional
}

// ChatService answers follow-up questions about a job's generated output.
type ChatService struct {
	jobs    core.JobRepository
	outputs core.OutputRepository
	llm     core.TextGenerator
	logger  *slog.Logger
}

// NewChatService constructs a ChatService.
func NewChatService(opts ChatServiceOptions) (*ChatService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Outputs == nil {
		return nil, errors.New("OutputRepository is required")
	}
	if opts.LLM == nil {
		return nil, errors.New("TextGenerator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		jobs:    opts.Jobs,
		outputs: opts.Outputs,
		llm:     opts.LLM,
		logger:  logger.With("component", "chat_service"),
	}, nil
}

// Chat answers a follow-up question about the job's output. The job must
// exist and have a persisted output.
func (s *ChatService) Chat(ctx context.Context, jobID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.ValidationField("message", "message is required")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	output, err := s.outputs.GetByJobID(ctx, jobID)
	if err != nil {
		return "", err
	}

	paramsPretty := string(job.Params)
	if params, decodeErr := job.DecodeParams(); decodeErr == nil {
		if pretty, marshalErr := json.MarshalIndent(params, "", "  "); marshalErr == nil {
			paramsPretty = string(pretty)
		}
	}

	excerpt := output.ContentText
	if len(excerpt) > chatContextChars {
		excerpt = truncateAtRune(excerpt, chatContextChars) + "..."
	}

	var sb strings.Builder
	sb.WriteString("You are continuing a conversation about a " + string(job.Type) + " that was previously generated.\n\n")
	sb.WriteString("The user is asking a follow-up question about this output. Provide a helpful response based on the context.\n\n")
	sb.WriteString("Original Job Type: " + string(job.Type) + "\n")
	sb.WriteString("Original Parameters: " + paramsPretty + "\n")
	sb.WriteString("Generated Output: " + excerpt)

	reply, err := s.llm.GenerateText(ctx, core.GenerateTextParams{
		System: sb.String(),
		User:   "Follow-up question: " + message,
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// truncateAtRune cuts s to at most max bytes without splitting a UTF-8 rune.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
