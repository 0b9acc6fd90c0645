package generator

import (
	"strings"

	"github.com/slushhq/agent-ops/internal/domain/model"
)

// promptPackGenerator builds implementation planning documents. When
// source_context is supplied the prompt pivots from feature planning to
// turning memo/research suggestions into concrete coding-agent prompts.
type promptPackGenerator struct{}

func (g *promptPackGenerator) Schema() Schema {
	return Schema{
		Type:       model.JobTypePromptPack,
		Required:   []string{"feature_name"},
		Optional:   []string{"feature_description", "notes", "source_context"},
		FileParams: sharedFileParams,
	}
}

func (g *promptPackGenerator) BuildPrompt(in Inputs) (Prompt, error) {
	featureName := in.Params.StringValue("feature_name")
	description := in.Params.StringValue("feature_description")
	if description == "" {
		description = "No description provided"
	}
	notes := in.Params.StringValue("notes")
	sourceContext := in.Params.StringValue("source_context")

	inputs := []string{"Feature: " + featureName}
	var sb strings.Builder

	if sourceContext != "" {
		inputs = append(inputs, "Source context from memo/research")
		sb.WriteString("Turn the following memo/research suggestions into concrete prompts for: " + featureName + "\n\n")
		sb.WriteString("## Source Context (Memo/Research Output):\n" + sourceContext + "\n\n")
		sb.WriteString("Feature Description: " + description + "\n")
		if notes != "" {
			inputs = append(inputs, "Additional notes: "+notes)
			sb.WriteString("\nAdditional Context: " + notes + "\n")
		}
	} else {
		inputs = append(inputs, "Description: "+description)
		if notes != "" {
			inputs = append(inputs, "Additional notes: "+notes)
		}
		sb.WriteString("Create an implementation plan for: " + featureName + "\n\nDescription: " + description + "\n")
		if notes != "" {
			sb.WriteString("\nAdditional Context: " + notes + "\n")
		}
	}

	appendFileSections(&sb, &inputs, fileSectionOptions{
		Files:     in.Files,
		Order:     sharedFileParams,
		Heading:   "Available Context Files",
		Label:     "File",
		ClipChars: 2000,
	})

	return Prompt{System: promptPackSystem, User: sb.String(), InputsUsed: inputs}, nil
}

const promptPackSystem = `You are a senior technical architect creating implementation planning documents.

When source_context is provided, focus on turning suggestions/experiments from memos or research into concrete prompts for a coding agent.
When no source_context, focus on feature implementation planning.

Your output must follow this exact structure:

# Prompt Pack - [Feature Name]

## Goal
[Single sentence describing implementation objective]

## Inputs Used
[List each input source explicitly]

## Context Summary
[Brief description of what needs to be built/modified and why]

### Current State
- [What exists now]
- [Relevant background/constraints]

### Desired End State
- [What the final result should look like]
- [Success criteria]

## Files Likely Involved
[List specific file paths and their roles]

## Step-by-step Implementation Plan

### Phase 1: [Phase Name]
1. [Specific step]
2. [Specific step]

### Phase 2: [Phase Name]
1. [Specific step]
2. [Specific step]

[Continue with additional phases]

## Edge Cases
[List and explain how to handle edge cases]

## Test Plan
### Unit Tests
[List specific test requirements]

### Integration Tests
[List integration test requirements]

## Acceptance Criteria
[List specific functional requirements as checkboxes]

## IMPORTANT NOTE
**DO NOT WRITE CODE** - This is a planning document only.

CRITICAL: Follow anti-noise rules:
- Max 5 key implementation phases
- Max 3 major edge cases
- Max 5 acceptance criteria
- Be specific and actionable`
