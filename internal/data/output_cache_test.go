package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slushhq/agent-ops/internal/domain/model"
	"github.com/slushhq/agent-ops/internal/testutil"
)

func TestRedisOutputCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewRedisOutputCache(RedisOutputCacheOptions{Client: client, TTL: time.Minute})
	ctx := context.Background()

	output := &model.Output{
		ID:          42,
		JobID:       "3f0c8f5e-1f3a-4b61-9a1c-7b2d4e5f6a70",
		Type:        model.JobTypePromptPack,
		ContentText: "# Prompt Pack",
		ContentType: model.ContentTypeMarkdown,
		CreatedAt:   time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
	}

	t.Run("miss returns nil without error", func(t *testing.T) {
		got, err := cache.GetLatest(ctx, model.JobTypePromptPack)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, cache.SetLatest(ctx, output))

		got, err := cache.GetLatest(ctx, model.JobTypePromptPack)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, output.JobID, got.JobID)
		assert.Equal(t, output.ContentText, got.ContentText)

		ttl := client.TTL(ctx, latestOutputKey(model.JobTypePromptPack)).Val()
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("types are cached independently", func(t *testing.T) {
		got, err := cache.GetLatest(ctx, model.JobTypeResearchBrief)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		require.NoError(t, cache.Invalidate(ctx, model.JobTypePromptPack))

		got, err := cache.GetLatest(ctx, model.JobTypePromptPack)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("corrupt entry degrades to a miss", func(t *testing.T) {
		key := latestOutputKey(model.JobTypeWeeklyPilotMemo)
		require.NoError(t, client.Set(ctx, key, "{not json", time.Minute).Err())

		got, err := cache.GetLatest(ctx, model.JobTypeWeeklyPilotMemo)
		require.NoError(t, err)
		assert.Nil(t, got)
		// The bad entry is dropped so it cannot keep poisoning reads.
		assert.Equal(t, int64(0), client.Exists(ctx, key).Val())
	})
}
