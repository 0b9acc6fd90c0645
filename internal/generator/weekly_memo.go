package generator

import (
	"strings"

	"github.com/slushhq/agent-ops/internal/domain/model"
)

// SnapshotUnavailable is embedded in the weekly memo prompt when the business
// snapshot could not be fetched. Its absence or presence never fails the job.
const SnapshotUnavailable = "=== BUSINESS DATA UNAVAILABLE ===\nMemo will be generated without real business data."

// weeklyMemoGenerator builds weekly business performance memos grounded in
// the live product metrics snapshot.
type weeklyMemoGenerator struct{}

func (g *weeklyMemoGenerator) Schema() Schema {
	return Schema{
		Type:          model.JobTypeWeeklyPilotMemo,
		Required:      []string{"pilot_name"},
		Optional:      []string{"week_start_date", "notes"},
		FileParams:    sharedFileParams,
		WantsSnapshot: true,
	}
}

func (g *weeklyMemoGenerator) BuildPrompt(in Inputs) (Prompt, error) {
	pilotName := in.Params.StringValue("pilot_name")
	weekStart := in.Params.StringValue("week_start_date")
	if weekStart == "" {
		weekStart = in.Now.Format("2006-01-02")
	}
	notes := in.Params.StringValue("notes")

	snapshot := in.Snapshot
	if snapshot == "" {
		snapshot = SnapshotUnavailable
	}

	inputs := []string{"Pilot: " + pilotName, "Week of: " + weekStart, "Business data snapshot"}
	if notes != "" {
		inputs = append(inputs, "Context notes: "+notes)
	}

	var sb strings.Builder
	sb.WriteString("Analyze the weekly performance for: " + pilotName + "\nWeek starting: " + weekStart + "\n")
	if notes != "" {
		sb.WriteString("\nAdditional Context: " + notes + "\n")
	}
	sb.WriteString("\n## Business Data Snapshot:\n" + snapshot + "\n")

	appendFileSections(&sb, &inputs, fileSectionOptions{
		Files:     in.Files,
		Order:     sharedFileParams,
		Heading:   "Additional Data Files",
		Label:     "Data file",
		ClipChars: 3000,
	})

	sb.WriteString("\nIMPORTANT: Base your analysis on the REAL business data provided above. " +
		"Use actual metrics, identify real funnel drop-offs, and propose experiments based on the actual data patterns you see.")

	return Prompt{System: weeklyMemoSystem, User: sb.String(), InputsUsed: inputs}, nil
}

const weeklyMemoSystem = `You are a business analyst creating weekly performance and strategy memos.

Your output must follow this exact structure:

# Weekly Pilot Memo - [Pilot Name] - Week of [Date]

## Goal
[Single sentence describing the memo's analytical objective]

## Inputs Used
[List each input source explicitly]

## KPI Snapshot
- [Metric]: [Value] ([Change from last week])
- [Metric]: [Value] ([Change from last week])
- [Metric]: [Value] ([Change from last week])

## What Changed vs Last Week
- [Key change with impact]
- [Key change with impact]
- [Key change with impact]

## Funnel Drop-offs + Hypotheses

### Drop-off Point: [Stage]
- **Data**: [Numbers/rates]
- **Hypothesis**: [Why this is happening]
- **Confidence**: [High/Medium/Low]

## 3 Experiments Next Week

### Experiment 1: [Name]
- **Change**: [Specific action]
- **Why**: [Hypothesis]
- **Expected Impact**: [Predicted outcome]
- **Measurement**: [Success tracking]
- **Stop Condition**: [When to halt]

[Repeat for experiments 2 and 3]

## Risks (Max 3)
1. [Risk and impact]
2. [Risk and impact]
3. [Risk and impact]

## Action List

### [OWNER]
- [ ] [Specific task]
- [ ] [Specific task]

## Questions (Max 3)
1. [Decision-requiring question]
2. [Decision-requiring question]
3. [Decision-requiring question]

CRITICAL: Follow anti-noise rules:
- Max 5 KPIs
- Max 3 funnel drop-offs
- Exactly 3 experiments
- Max 3 risks
- Max 5 total action items
- Max 3 questions`
