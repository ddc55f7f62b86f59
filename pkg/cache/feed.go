package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/pkg/logger"
)

const (
	feedKeyPrefix       = "feed:"
	voteStatusKeyPrefix = "votestatus:"
)

// FeedCache caches the community feed and vote-status lookups, the two
// hottest read paths. Writes that change either (publish, vote) must
// invalidate through it. Store errors are logged and treated as misses.
type FeedCache struct {
	store Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewFeedCache creates a feed cache over the given store
func NewFeedCache(store Store, ttl time.Duration, log *logger.Logger) *FeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FeedCache{store: store, ttl: ttl, log: log}
}

// GetFeed returns the cached feed for a sort order, if present.
func (f *FeedCache) GetFeed(ctx context.Context, sort string) ([]models.Waifu, bool) {
	raw, found, err := f.store.Get(ctx, feedKeyPrefix+sort)
	if err != nil {
		f.log.Warn("feed cache read failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var waifus []models.Waifu
	if err := json.Unmarshal([]byte(raw), &waifus); err != nil {
		f.log.Warn("feed cache entry corrupt", "error", err)
		return nil, false
	}
	return waifus, true
}

// SetFeed stores the feed for a sort order.
func (f *FeedCache) SetFeed(ctx context.Context, sort string, waifus []models.Waifu) {
	raw, err := json.Marshal(waifus)
	if err != nil {
		return
	}
	if err := f.store.Set(ctx, feedKeyPrefix+sort, string(raw), f.ttl); err != nil {
		f.log.Warn("feed cache write failed", "error", err)
	}
}

// InvalidateFeed drops both sort orders. Called on publish and on vote.
func (f *FeedCache) InvalidateFeed(ctx context.Context) {
	err := f.store.Delete(ctx, feedKeyPrefix+"newest", feedKeyPrefix+"most_liked", feedKeyPrefix+"")
	if err != nil {
		f.log.Warn("feed cache invalidation failed", "error", err)
	}
}

func voteStatusKey(userID, waifuID uint) string {
	return fmt.Sprintf("%s%d:%d", voteStatusKeyPrefix, userID, waifuID)
}

// GetVoteStatus returns a cached vote-status lookup, if present.
func (f *FeedCache) GetVoteStatus(ctx context.Context, userID, waifuID uint) (*models.VoteStatus, bool) {
	raw, found, err := f.store.Get(ctx, voteStatusKey(userID, waifuID))
	if err != nil || !found {
		return nil, false
	}

	var status models.VoteStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, false
	}
	return &status, true
}

// SetVoteStatus stores a vote-status lookup. Votes are immutable, so a
// positive status never goes stale; the TTL only bounds memory.
func (f *FeedCache) SetVoteStatus(ctx context.Context, userID, waifuID uint, status *models.VoteStatus) {
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := f.store.Set(ctx, voteStatusKey(userID, waifuID), string(raw), f.ttl); err != nil {
		f.log.Warn("vote status cache write failed", "error", err)
	}
}

// InvalidateVoteStatus drops one user's cached status for a character.
func (f *FeedCache) InvalidateVoteStatus(ctx context.Context, userID, waifuID uint) {
	if err := f.store.Delete(ctx, voteStatusKey(userID, waifuID)); err != nil {
		f.log.Warn("vote status cache invalidation failed", "error", err)
	}
}

// Ping reports store connectivity for health checks.
func (f *FeedCache) Ping(ctx context.Context) error {
	return f.store.Ping(ctx)
}
