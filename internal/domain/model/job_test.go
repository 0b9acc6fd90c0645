package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType_Valid(t *testing.T) {
	tests := []struct {
		jobType JobType
		want    bool
	}{
		{JobTypePromptPack, true},
		{JobTypeResearchBrief, true},
		{JobTypeWeeklyPilotMemo, true},
		{JobTypeLeadList, true}, // shape-valid, fails at execution
		{JobType("browser"), false},
		{JobType(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.jobType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.jobType.Valid())
		})
	}
}

func TestJobType_Deprecated(t *testing.T) {
	assert.True(t, JobTypeLeadList.Deprecated())
	assert.False(t, JobTypePromptPack.Deprecated())
	assert.False(t, JobTypeResearchBrief.Deprecated())
	assert.False(t, JobTypeWeeklyPilotMemo.Deprecated())
}

func TestJobType_UnmarshalText(t *testing.T) {
	var jt JobType
	require.NoError(t, jt.UnmarshalText([]byte("  Research_Brief ")))
	assert.Equal(t, JobTypeResearchBrief, jt)

	err := jt.UnmarshalText([]byte("lead_scraper"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JobType")
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
	assert.True(t, JobStatusSucceeded.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}

func TestParams_StringValue(t *testing.T) {
	p := Params{
		"feature_name": "  Checkout flow ",
		"questions":    []any{"a", "b"},
		"count":        float64(3),
	}

	assert.Equal(t, "Checkout flow", p.StringValue("feature_name"))
	assert.Empty(t, p.StringValue("questions"), "non-string values read as empty")
	assert.Empty(t, p.StringValue("count"))
	assert.Empty(t, p.StringValue("missing"))
}

func TestJob_DecodeParams(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		raw, err := json.Marshal(Params{"topic": "churn", "questions": []string{"why", "where"}})
		require.NoError(t, err)

		job := &Job{Params: raw}
		p, err := job.DecodeParams()
		require.NoError(t, err)
		assert.Equal(t, "churn", p.StringValue("topic"))
	})

	t.Run("empty params", func(t *testing.T) {
		job := &Job{}
		p, err := job.DecodeParams()
		require.NoError(t, err)
		assert.NotNil(t, p)
		assert.Empty(t, p)
	})

	t.Run("malformed params", func(t *testing.T) {
		job := &Job{Params: json.RawMessage(`{"broken`)}
		_, err := job.DecodeParams()
		require.Error(t, err)
	})
}
