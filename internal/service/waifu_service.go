package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"waifuhub/backend/ai"
	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/policy"
	"waifuhub/backend/internal/prompt"
	"waifuhub/backend/pkg/cache"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feed sort orders
const (
	SortNewest    = "newest"
	SortMostLiked = "most_liked"
)

// WaifuService owns the character lifecycle: generation behind the creation
// cooldown, one-way publishing, and the community/personal listings.
type WaifuService struct {
	db           *gorm.DB
	video        ai.VideoClient
	feedCache    *cache.FeedCache
	cooldown     time.Duration
	videoTimeout time.Duration
	now          func() time.Time

	// rng backs profile selection and is not safe for concurrent use;
	// rngMu serializes access across requests.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewWaifuService creates a new waifu service
func NewWaifuService(db *gorm.DB, video ai.VideoClient, cooldown, videoTimeout time.Duration) *WaifuService {
	if cooldown <= 0 {
		cooldown = 10 * time.Minute
	}
	if videoTimeout <= 0 {
		videoTimeout = 5 * time.Minute
	}
	return &WaifuService{
		db:           db,
		video:        video,
		cooldown:     cooldown,
		videoTimeout: videoTimeout,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithFeedCache enables read-through caching of the community feed.
func (s *WaifuService) WithFeedCache(fc *cache.FeedCache) *WaifuService {
	s.feedCache = fc
	return s
}

// CreateCharacter reserves the caller's creation window, generates the video
// upstream and persists the character unpublished.
//
// The reservation is a conditional update on last_waifu_creation, so two
// concurrent requests inside one window cannot both pass. A failed upstream
// call rolls the reservation back; a failed insert after a successful
// generation does not, since the upstream work was already spent.
func (s *WaifuService) CreateCharacter(ctx context.Context, userID uint, req *models.CreateWaifuRequest) (*models.Waifu, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, apperrors.NewPersistenceFailure("failed to load user")
	}

	now := s.now()
	previous := user.LastWaifuCreation

	reservation := s.db.Model(&models.User{}).
		Where("id = ? AND (last_waifu_creation IS NULL OR last_waifu_creation <= ?)", userID, now.Add(-s.cooldown)).
		Update("last_waifu_creation", now)
	if reservation.Error != nil {
		return nil, apperrors.NewPersistenceFailure("failed to reserve creation window")
	}
	if reservation.RowsAffected == 0 {
		wait := policy.RetryAfter(previous, s.cooldown, now)
		if wait <= 0 {
			// Lost a race with our own reload; the other request holds the
			// window for the full cooldown.
			wait = s.cooldown
		}
		return nil, apperrors.NewRateLimited("creation cooldown active", wait)
	}

	prompts := s.buildPrompts(req)

	videoCtx, cancel := context.WithTimeout(ctx, s.videoTimeout)
	defer cancel()

	videoURL, err := s.video.GenerateVideo(videoCtx, prompts.Video)
	if err != nil {
		s.releaseReservation(userID, now, previous)
		logger.GetGlobal().Error("video generation failed", "user_id", userID, "error", err)
		return nil, apperrors.NewUpstreamFailure("video generation failed")
	}

	profileJSON, err := json.Marshal(prompts.Profile)
	if err != nil {
		return nil, apperrors.NewInternal("failed to serialize character profile")
	}

	waifu := models.Waifu{
		ExternalID:       uuid.NewString(),
		UserID:           userID,
		Name:             req.Name,
		Personality:      req.Personality,
		Style:            req.Style,
		HairColor:        req.HairColor,
		Biography:        req.Biography,
		CharacterProfile: string(profileJSON),
		ImagePrompt:      prompts.Image,
		VideoPrompt:      prompts.Video,
		VideoURL:         videoURL,
	}
	if err := s.db.Create(&waifu).Error; err != nil {
		logger.GetGlobal().Error("failed to persist generated character", "user_id", userID, "error", err)
		return nil, apperrors.NewPersistenceFailure("failed to save character")
	}
	return &waifu, nil
}

func (s *WaifuService) buildPrompts(req *models.CreateWaifuRequest) prompt.Prompts {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return prompt.BuildPair(s.rng, req.Personality, req.Style, req.HairColor, req.Biography)
}

// releaseReservation restores the pre-reservation timestamp so a failed
// generation does not burn the window. Guarded on the value we wrote, so a
// racing successful reservation is never clobbered.
func (s *WaifuService) releaseReservation(userID uint, reservedAt time.Time, previous *time.Time) {
	err := s.db.Model(&models.User{}).
		Where("id = ? AND last_waifu_creation = ?", userID, reservedAt).
		Update("last_waifu_creation", previous).Error
	if err != nil {
		logger.GetGlobal().Error("failed to release creation reservation", "user_id", userID, "error", err)
	}
}

// PublishCharacter makes a character visible in the community feed. Owner
// only. Re-publishing an already-published character succeeds without
// touching the original publish timestamp; there is no way back to
// unpublished.
func (s *WaifuService) PublishCharacter(ctx context.Context, userID, waifuID uint) (*models.Waifu, error) {
	var waifu models.Waifu
	if err := s.db.First(&waifu, waifuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("character not found")
		}
		return nil, apperrors.NewPersistenceFailure("failed to load character")
	}
	if waifu.UserID != userID {
		return nil, apperrors.NewNotOwner("only the creator can publish this character")
	}
	if waifu.IsPublished {
		return &waifu, nil
	}

	now := s.now()
	result := s.db.Model(&models.Waifu{}).
		Where("id = ? AND is_published = ?", waifuID, false).
		Updates(map[string]any{"is_published": true, "published_at": now})
	if result.Error != nil {
		return nil, apperrors.NewPersistenceFailure("failed to publish character")
	}
	if result.RowsAffected == 0 {
		// Concurrent publish won; reload to return its timestamp.
		if err := s.db.First(&waifu, waifuID).Error; err != nil {
			return nil, apperrors.NewPersistenceFailure("failed to load character")
		}
		return &waifu, nil
	}
	waifu.IsPublished = true
	waifu.PublishedAt = &now
	if s.feedCache != nil {
		s.feedCache.InvalidateFeed(ctx)
	}
	return &waifu, nil
}

// CommunityFeed lists published characters. sort is "newest" (publish time,
// default) or "most_liked".
func (s *WaifuService) CommunityFeed(ctx context.Context, sort string) ([]models.Waifu, error) {
	query := s.db.Where("is_published = ?", true)
	switch sort {
	case SortMostLiked:
		query = query.Order("likes DESC, published_at DESC")
	case SortNewest, "":
		sort = SortNewest
		query = query.Order("published_at DESC")
	default:
		return nil, apperrors.NewValidation("sort must be 'newest' or 'most_liked'")
	}

	if s.feedCache != nil {
		if waifus, found := s.feedCache.GetFeed(ctx, sort); found {
			return waifus, nil
		}
	}

	var waifus []models.Waifu
	if err := query.Find(&waifus).Error; err != nil {
		return nil, apperrors.NewPersistenceFailure("failed to load community feed")
	}
	if s.feedCache != nil {
		s.feedCache.SetFeed(ctx, sort, waifus)
	}
	return waifus, nil
}

// ListByOwner lists the user's own characters, newest first, published or not.
func (s *WaifuService) ListByOwner(userID uint) ([]models.Waifu, error) {
	var waifus []models.Waifu
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&waifus).Error
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("failed to load characters")
	}
	return waifus, nil
}

// GetByID returns a single character. Unpublished characters are visible to
// their owner only; everyone else gets not-found rather than a hint that the
// character exists.
func (s *WaifuService) GetByID(waifuID, requesterID uint) (*models.Waifu, error) {
	var waifu models.Waifu
	if err := s.db.First(&waifu, waifuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("character not found")
		}
		return nil, apperrors.NewPersistenceFailure("failed to load character")
	}
	if !waifu.IsPublished && waifu.UserID != requesterID {
		return nil, apperrors.NewNotFound("character not found")
	}
	return &waifu, nil
}
