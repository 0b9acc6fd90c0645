package generator

import (
	"fmt"
	"strings"

	"github.com/slushhq/agent-ops/internal/domain/model"
)

// maxResearchQuestions caps how many questions reach the prompt.
const maxResearchQuestions = 5

// researchBriefGenerator builds in-depth research analysis briefs.
type researchBriefGenerator struct{}

func (g *researchBriefGenerator) Schema() Schema {
	return Schema{
		Type:       model.JobTypeResearchBrief,
		Required:   []string{"topic"},
		Optional:   []string{"questions", "context_notes"},
		FileParams: sharedFileParams,
	}
}

func (g *researchBriefGenerator) BuildPrompt(in Inputs) (Prompt, error) {
	topic := in.Params.StringValue("topic")
	contextNotes := in.Params.StringValue("context_notes")
	questions := NormalizeQuestions(in.Params["questions"])

	inputs := []string{"Topic: " + topic}
	if contextNotes != "" {
		inputs = append(inputs, "Context notes: "+contextNotes)
	}

	var sb strings.Builder
	sb.WriteString("Research analysis for: " + topic + "\n\n")

	if len(questions) > 0 {
		sb.WriteString("Research Questions:\n")
		for i, q := range questions {
			if i >= maxResearchQuestions {
				break
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
		}
		sb.WriteString("\n")
	}
	if contextNotes != "" {
		sb.WriteString("Context: " + contextNotes + "\n\n")
	}

	appendFileSections(&sb, &inputs, fileSectionOptions{
		Files:     in.Files,
		Order:     sharedFileParams,
		Heading:   "Available Research Materials",
		Label:     "Research file",
		ClipChars: 3000,
	})

	return Prompt{System: researchBriefSystem, User: sb.String(), InputsUsed: inputs}, nil
}

const researchBriefSystem = `You are a senior research analyst creating comprehensive research briefs.

Your output must follow this exact structure:

# Research Brief - [Topic]

## Goal
[Single sentence describing the research objective]

## Inputs Used
[List each input source explicitly]

## Research Questions
1. [Primary question]
2. [Secondary question]
3. [Additional question if relevant]

## Key Findings (Max 5)

### Finding 1: [Title]
**Evidence**: [Supporting data/observations]
**Implication**: [Business/project impact]

### Finding 2: [Title]
**Evidence**: [Supporting data/observations]
**Implication**: [Business/project impact]

[Continue up to Finding 5]

## Critical Decisions Required (Max 3)

### Decision 1: [Decision point]
**Options**: [2-3 choices]
**Recommendation**: [Preferred option with rationale]
**Timeline**: [Decision deadline]

### Decision 2: [Decision point]
**Options**: [2-3 choices]
**Recommendation**: [Preferred option with rationale]
**Timeline**: [Decision deadline]

## Next Actions (Max 5)

### Immediate (This Week)
- [ ] [Specific task]
- [ ] [Specific task]

### Short Term (Next 2 weeks)
- [ ] [Specific task]

### Medium Term (Next month)
- [ ] [Specific task]

## Knowledge Gaps
- [Missing information]
- [Additional research needed]

## Confidence Assessment
- **High Confidence**: [Strong evidence findings]
- **Medium Confidence**: [Some evidence findings]
- **Low Confidence**: [Hypotheses needing validation]

CRITICAL: Follow anti-noise rules:
- Max 5 key findings
- Max 3 critical decisions
- Max 5 next actions total
- Be specific and evidence-based`
