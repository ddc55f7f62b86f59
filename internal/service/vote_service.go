package service

import (
	"context"
	"errors"
	"time"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/policy"
	"waifuhub/backend/pkg/cache"
	apperrors "waifuhub/backend/pkg/errors"

	"gorm.io/gorm"
)

// VoteService records votes and keeps the per-character counters in step with
// the vote rows. One vote per (user, character), forever.
type VoteService struct {
	db        *gorm.DB
	feedCache *cache.FeedCache
	cooldown  time.Duration
	now       func() time.Time
}

// NewVoteService creates a new vote service
func NewVoteService(db *gorm.DB, cooldown time.Duration) *VoteService {
	if cooldown <= 0 {
		cooldown = 10 * time.Minute
	}
	return &VoteService{db: db, cooldown: cooldown, now: time.Now}
}

// WithFeedCache enables vote-status caching and feed invalidation on votes.
func (s *VoteService) WithFeedCache(fc *cache.FeedCache) *VoteService {
	s.feedCache = fc
	return s
}

// CastVote records a like or dislike for the character and returns it with
// updated counters. The vote insert, the counter bump and the cooldown stamp
// commit in one transaction; any failed precondition rolls everything back.
func (s *VoteService) CastVote(ctx context.Context, userID uint, req *models.CastVoteRequest) (*models.Waifu, error) {
	if !models.ValidVoteType(req.VoteType) {
		return nil, apperrors.NewValidation("vote_type must be 'like' or 'dislike'")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, apperrors.NewPersistenceFailure("failed to load user")
	}

	now := s.now()
	if !policy.CanPerformAction(user.LastVote, s.cooldown, now) {
		wait := policy.RetryAfter(user.LastVote, s.cooldown, now)
		return nil, apperrors.NewRateLimited("vote cooldown active", wait)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var waifu models.Waifu
		if err := tx.First(&waifu, req.WaifuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("character not found")
			}
			return apperrors.NewPersistenceFailure("failed to load character")
		}

		vote := models.Vote{UserID: userID, WaifuID: req.WaifuID, VoteType: req.VoteType}
		if err := tx.Create(&vote).Error; err != nil {
			// The composite unique index is the authoritative double-vote guard.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewConflict("already voted on this character")
			}
			return apperrors.NewPersistenceFailure("failed to record vote")
		}

		column := "likes"
		if req.VoteType == models.VoteDislike {
			column = "dislikes"
		}
		if err := tx.Model(&models.Waifu{}).Where("id = ?", req.WaifuID).
			Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return apperrors.NewPersistenceFailure("failed to update vote counters")
		}

		// Conditional stamp so two in-flight votes from one user cannot both
		// land inside a single window.
		stamp := tx.Model(&models.User{}).
			Where("id = ? AND (last_vote IS NULL OR last_vote <= ?)", userID, now.Add(-s.cooldown)).
			Update("last_vote", now)
		if stamp.Error != nil {
			return apperrors.NewPersistenceFailure("failed to stamp vote cooldown")
		}
		if stamp.RowsAffected == 0 {
			return apperrors.NewRateLimited("vote cooldown active", s.cooldown)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.feedCache != nil {
		// Counters changed and the caller now has a vote on record.
		s.feedCache.InvalidateFeed(ctx)
		s.feedCache.SetVoteStatus(ctx, userID, req.WaifuID,
			&models.VoteStatus{HasVoted: true, VoteType: req.VoteType})
	}

	var waifu models.Waifu
	if err := s.db.First(&waifu, req.WaifuID).Error; err != nil {
		return nil, apperrors.NewPersistenceFailure("failed to load character")
	}
	return &waifu, nil
}

// Status reports whether the user has voted on the character. A zero userID
// (no session) reads as not voted rather than an error, so the feed can ask
// without authentication.
func (s *VoteService) Status(ctx context.Context, userID, waifuID uint) (*models.VoteStatus, error) {
	if userID == 0 {
		return &models.VoteStatus{}, nil
	}

	if s.feedCache != nil {
		if status, found := s.feedCache.GetVoteStatus(ctx, userID, waifuID); found {
			return status, nil
		}
	}

	var vote models.Vote
	err := s.db.Where("user_id = ? AND waifu_id = ?", userID, waifuID).First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.VoteStatus{}, nil
		}
		return nil, apperrors.NewPersistenceFailure("failed to load vote status")
	}

	status := &models.VoteStatus{HasVoted: true, VoteType: vote.VoteType}
	if s.feedCache != nil {
		s.feedCache.SetVoteStatus(ctx, userID, waifuID, status)
	}
	return status, nil
}
