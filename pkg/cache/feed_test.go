package cache

import (
	"context"
	"testing"
	"time"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedCache(t *testing.T) *FeedCache {
	t.Helper()
	store := NewMemoryStore(100, 0)
	t.Cleanup(store.Close)
	return NewFeedCache(store, time.Minute, logger.New(logger.Config{Level: "error"}))
}

func TestFeedRoundTrip(t *testing.T) {
	fc := newFeedCache(t)
	ctx := context.Background()

	_, found := fc.GetFeed(ctx, "newest")
	assert.False(t, found)

	waifus := []models.Waifu{{ID: 1, Name: "Yuki"}, {ID: 2, Name: "Rei"}}
	fc.SetFeed(ctx, "newest", waifus)

	got, found := fc.GetFeed(ctx, "newest")
	require.True(t, found)
	require.Len(t, got, 2)
	assert.Equal(t, "Yuki", got[0].Name)

	fc.InvalidateFeed(ctx)
	_, found = fc.GetFeed(ctx, "newest")
	assert.False(t, found)
}

func TestVoteStatusRoundTrip(t *testing.T) {
	fc := newFeedCache(t)
	ctx := context.Background()

	_, found := fc.GetVoteStatus(ctx, 7, 3)
	assert.False(t, found)

	fc.SetVoteStatus(ctx, 7, 3, &models.VoteStatus{HasVoted: true, VoteType: models.VoteLike})

	status, found := fc.GetVoteStatus(ctx, 7, 3)
	require.True(t, found)
	assert.True(t, status.HasVoted)
	assert.Equal(t, models.VoteLike, status.VoteType)

	// other users are unaffected
	_, found = fc.GetVoteStatus(ctx, 8, 3)
	assert.False(t, found)

	fc.InvalidateVoteStatus(ctx, 7, 3)
	_, found = fc.GetVoteStatus(ctx, 7, 3)
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10, 0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemoryStore(2, 0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, store.Set(ctx, "b", "2", time.Hour))
	require.NoError(t, store.Set(ctx, "c", "3", time.Hour))

	// "a" was closest to expiry and got evicted
	_, found, _ := store.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = store.Get(ctx, "c")
	assert.True(t, found)
}
