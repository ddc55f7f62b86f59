package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"waifuhub/backend/ai"
	"waifuhub/backend/internal/models"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Waifu{}, &models.Vote{}, &models.ChatMessage{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM chat_messages")
		db.Exec("DELETE FROM votes")
		db.Exec("DELETE FROM waifus")
		db.Exec("DELETE FROM users")
	})
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, wallet string) *models.User {
	t.Helper()
	user := &models.User{WalletAddress: wallet, Username: wallet[:5]}
	require.NoError(t, db.Create(user).Error)
	return user
}

type fakeVideoClient struct {
	url     string
	err     error
	calls   int
	prompts []string
}

func (f *fakeVideoClient) GenerateVideo(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func createRequest() *models.CreateWaifuRequest {
	return &models.CreateWaifuRequest{
		Name:        "Yuki",
		Personality: "shy",
		Style:       "anime",
		HairColor:   "Silver",
		Biography:   "loves the rain",
	}
}

func TestConnectCreatesAndReuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, jwt.NewService("test-secret", time.Hour))

	user, token, err := svc.Connect(&models.ConnectRequest{WalletAddress: "0xabcdef1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "0xabc", user.Username)

	again, _, err := svc.Connect(&models.ConnectRequest{WalletAddress: "0xabcdef1234", Username: "yuki_fan"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "yuki_fan", again.Username)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateCharacter(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "0xcreator1")
	video := &fakeVideoClient{url: "https://cdn.example.com/v.mp4"}
	svc := NewWaifuService(db, video, 10*time.Minute, time.Minute)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	waifu, err := svc.CreateCharacter(context.Background(), user.ID, createRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, waifu.ExternalID)
	assert.Equal(t, user.ID, waifu.UserID)
	assert.Equal(t, "https://cdn.example.com/v.mp4", waifu.VideoURL)
	assert.False(t, waifu.IsPublished)
	assert.Zero(t, waifu.Likes)
	assert.Contains(t, waifu.ImagePrompt, "silver hair")
	assert.Contains(t, waifu.VideoPrompt, "subtle movement")
	assert.NotEmpty(t, waifu.CharacterProfile)
	assert.Equal(t, 1, video.calls)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.LastWaifuCreation)
	assert.True(t, stored.LastWaifuCreation.Equal(start))
}

func TestCreateCharacterCooldown(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "0xcreator2")
	svc := NewWaifuService(db, &fakeVideoClient{url: "u"}, 10*time.Minute, time.Minute)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	_, err := svc.CreateCharacter(context.Background(), user.ID, createRequest())
	require.NoError(t, err)

	// five minutes in: still blocked, with the remaining wait surfaced
	svc.now = func() time.Time { return start.Add(5 * time.Minute) }
	_, err = svc.CreateCharacter(context.Background(), user.ID, createRequest())
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeRateLimited, appErr.Code)

	// exactly at the boundary: allowed
	svc.now = func() time.Time { return start.Add(10 * time.Minute) }
	_, err = svc.CreateCharacter(context.Background(), user.ID, createRequest())
	require.NoError(t, err)
}

func TestCreateCharacterUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "0xcreator3")
	video := &fakeVideoClient{err: fmt.Errorf("model exploded")}
	svc := NewWaifuService(db, video, 10*time.Minute, time.Minute)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	_, err := svc.CreateCharacter(context.Background(), user.ID, createRequest())
	require.True(t, apperrors.Is(err, apperrors.CodeUpstreamFailure))

	// no character row, and the failed attempt did not burn the window
	var count int64
	db.Model(&models.Waifu{}).Count(&count)
	assert.EqualValues(t, 0, count)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Nil(t, stored.LastWaifuCreation)

	video.err = nil
	video.url = "https://cdn.example.com/ok.mp4"
	waifu, err := svc.CreateCharacter(context.Background(), user.ID, createRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ok.mp4", waifu.VideoURL)
}

// Run with -race: the shared generator behind profile selection must be
// safe when creations for different users overlap.
func TestBuildPromptsConcurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewWaifuService(db, &fakeVideoClient{url: "https://cdn.example.com/v.mp4"}, 10*time.Minute, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				prompts := svc.buildPrompts(createRequest())
				assert.NotEmpty(t, prompts.Image)
				assert.NotEmpty(t, prompts.Video)
			}
		}()
	}
	wg.Wait()
}

func TestPublishCharacter(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "0xowner11")
	other := newTestUser(t, db, "0xother11")
	svc := NewWaifuService(db, &fakeVideoClient{url: "u"}, 10*time.Minute, time.Minute)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	waifu, err := svc.CreateCharacter(context.Background(), owner.ID, createRequest())
	require.NoError(t, err)

	_, err = svc.PublishCharacter(context.Background(), other.ID, waifu.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotOwner))

	_, err = svc.PublishCharacter(context.Background(), owner.ID, waifu.ID+100)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	published, err := svc.PublishCharacter(context.Background(), owner.ID, waifu.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	require.NotNil(t, published.PublishedAt)
	firstPublish := *published.PublishedAt

	// re-publishing is a no-op that keeps the original timestamp
	svc.now = func() time.Time { return start.Add(time.Hour) }
	again, err := svc.PublishCharacter(context.Background(), owner.ID, waifu.ID)
	require.NoError(t, err)
	require.NotNil(t, again.PublishedAt)
	assert.True(t, again.PublishedAt.Equal(firstPublish))
}

func TestCommunityFeedSorting(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "0xfeeder01")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	publishedAt := func(d time.Duration) *time.Time { ts := base.Add(d); return &ts }
	rows := []models.Waifu{
		{ExternalID: "w-old", UserID: owner.ID, Name: "Old", Personality: "shy", Style: "anime", HairColor: "pink",
			IsPublished: true, PublishedAt: publishedAt(0), Likes: 9},
		{ExternalID: "w-new", UserID: owner.ID, Name: "New", Personality: "shy", Style: "anime", HairColor: "pink",
			IsPublished: true, PublishedAt: publishedAt(time.Hour), Likes: 2},
		{ExternalID: "w-draft", UserID: owner.ID, Name: "Draft", Personality: "shy", Style: "anime", HairColor: "pink"},
	}
	require.NoError(t, db.Create(&rows).Error)

	svc := NewWaifuService(db, &fakeVideoClient{url: "u"}, 10*time.Minute, time.Minute)

	newest, err := svc.CommunityFeed(context.Background(), SortNewest)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "New", newest[0].Name)

	liked, err := svc.CommunityFeed(context.Background(), SortMostLiked)
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, "Old", liked[0].Name)

	_, err = svc.CommunityFeed(context.Background(), "weird")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestGetByIDVisibility(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "0xviewer01")
	draft := models.Waifu{ExternalID: "w-private", UserID: owner.ID, Name: "Secret",
		Personality: "shy", Style: "anime", HairColor: "pink"}
	require.NoError(t, db.Create(&draft).Error)

	svc := NewWaifuService(db, &fakeVideoClient{url: "u"}, 10*time.Minute, time.Minute)

	got, err := svc.GetByID(draft.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secret", got.Name)

	_, err = svc.GetByID(draft.ID, 0)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = svc.GetByID(draft.ID, owner.ID+1)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestCastVote(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "0xvoteown1")
	voter := newTestUser(t, db, "0xvoter001")
	hater := newTestUser(t, db, "0xvoter002")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	waifu := models.Waifu{ExternalID: "w-voted", UserID: owner.ID, Name: "Star",
		Personality: "confident", Style: "gothic", HairColor: "black",
		IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(&waifu).Error)

	svc := NewVoteService(db, 10*time.Minute)
	svc.now = func() time.Time { return now }

	updated, err := svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: waifu.ID, VoteType: models.VoteLike})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Likes)
	assert.Equal(t, 0, updated.Dislikes)

	// same pair again, well past the cooldown: unique index says no
	svc.now = func() time.Time { return now.Add(time.Hour) }
	_, err = svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: waifu.ID, VoteType: models.VoteDislike})
	require.True(t, apperrors.Is(err, apperrors.CodeConflict))

	var stored models.Waifu
	require.NoError(t, db.First(&stored, waifu.ID).Error)
	assert.Equal(t, 1, stored.Likes)
	assert.Equal(t, 0, stored.Dislikes)

	updated, err = svc.CastVote(context.Background(), hater.ID, &models.CastVoteRequest{WaifuID: waifu.ID, VoteType: models.VoteDislike})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Likes)
	assert.Equal(t, 1, updated.Dislikes)
}

func TestCastVoteCooldownAndValidation(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "0xvoteown2")
	voter := newTestUser(t, db, "0xvoter003")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := models.Waifu{ExternalID: "w-a", UserID: owner.ID, Name: "A",
		Personality: "shy", Style: "anime", HairColor: "pink", IsPublished: true, PublishedAt: &now}
	second := models.Waifu{ExternalID: "w-b", UserID: owner.ID, Name: "B",
		Personality: "shy", Style: "anime", HairColor: "pink", IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	svc := NewVoteService(db, 10*time.Minute)
	svc.now = func() time.Time { return now }

	_, err := svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: first.ID, VoteType: "love"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: first.ID, VoteType: models.VoteLike})
	require.NoError(t, err)

	// a different character, two minutes later: still inside the window
	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: second.ID, VoteType: models.VoteLike})
	require.True(t, apperrors.Is(err, apperrors.CodeRateLimited))

	// at the boundary the next vote goes through
	svc.now = func() time.Time { return now.Add(10 * time.Minute) }
	_, err = svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: second.ID, VoteType: models.VoteLike})
	require.NoError(t, err)

	_, err = svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: 9999, VoteType: models.VoteLike})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestVoteStatus(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "0xvoteown3")
	voter := newTestUser(t, db, "0xvoter004")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	waifu := models.Waifu{ExternalID: "w-status", UserID: owner.ID, Name: "S",
		Personality: "shy", Style: "anime", HairColor: "pink", IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(&waifu).Error)

	svc := NewVoteService(db, 10*time.Minute)
	svc.now = func() time.Time { return now }

	status, err := svc.Status(context.Background(), voter.ID, waifu.ID)
	require.NoError(t, err)
	assert.False(t, status.HasVoted)

	// anonymous callers read as not voted
	status, err = svc.Status(context.Background(), 0, waifu.ID)
	require.NoError(t, err)
	assert.False(t, status.HasVoted)

	_, err = svc.CastVote(context.Background(), voter.ID, &models.CastVoteRequest{WaifuID: waifu.ID, VoteType: models.VoteDislike})
	require.NoError(t, err)

	status, err = svc.Status(context.Background(), voter.ID, waifu.ID)
	require.NoError(t, err)
	assert.True(t, status.HasVoted)
	assert.Equal(t, models.VoteDislike, status.VoteType)
}

type fakeChatClient struct {
	reply   string
	err     error
	system  string
	history []ai.Turn
	message string
}

func (f *fakeChatClient) GenerateReply(_ context.Context, systemPrompt string, history []ai.Turn, userMessage string) (string, error) {
	f.system = systemPrompt
	f.history = history
	f.message = userMessage
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func chatRequest() *models.ChatRequest {
	return &models.ChatRequest{
		Name:        "Yuki",
		Personality: "shy",
		Style:       "anime",
		HairColor:   "silver",
		Messages: []models.ChatTurn{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "h-hello..."},
		},
		NewMessage: "what's your favorite season?",
	}
}

func TestChatReplyInline(t *testing.T) {
	db := newTestDB(t)
	client := &fakeChatClient{reply: "winter, I think..."}
	svc := NewChatService(db, client, 50, time.Second)

	reply, err := svc.Reply(context.Background(), 0, chatRequest())
	require.NoError(t, err)
	assert.Equal(t, "winter, I think...", reply)
	assert.Contains(t, client.system, "Yuki")
	assert.Len(t, client.history, 2)
	assert.Equal(t, "what's your favorite season?", client.message)

	// unsaved character, nothing to persist
	var count int64
	db.Model(&models.ChatMessage{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestChatReplyPersistsForSavedCharacter(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "0xchatter1")
	waifu := models.Waifu{ExternalID: "w-chat", UserID: user.ID, Name: "Rei",
		Personality: "mysterious", Style: "gothic", HairColor: "black"}
	require.NoError(t, db.Create(&waifu).Error)

	client := &fakeChatClient{reply: "..."}
	svc := NewChatService(db, client, 50, time.Second)

	req := chatRequest()
	req.WaifuID = waifu.ID
	_, err := svc.Reply(context.Background(), user.ID, req)
	require.NoError(t, err)

	// stored attributes win over the inline ones
	assert.Contains(t, client.system, "Rei")

	history, err := svc.History(user.ID, waifu.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
}

func TestChatReplyUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	client := &fakeChatClient{err: fmt.Errorf("rate limited upstream")}
	svc := NewChatService(db, client, 50, time.Second)

	_, err := svc.Reply(context.Background(), 0, chatRequest())
	assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamFailure))
}

func TestChatReplyHistoryTrimmed(t *testing.T) {
	db := newTestDB(t)
	client := &fakeChatClient{reply: "ok"}
	svc := NewChatService(db, client, 4, time.Second)

	req := chatRequest()
	req.Messages = nil
	for i := 0; i < 10; i++ {
		req.Messages = append(req.Messages, models.ChatTurn{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	_, err := svc.Reply(context.Background(), 0, req)
	require.NoError(t, err)
	require.Len(t, client.history, 4)
	assert.Equal(t, "m6", client.history[0].Content)
	assert.Equal(t, "m9", client.history[3].Content)
}

func TestChatReplyUnknownCharacter(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, &fakeChatClient{reply: "ok"}, 50, time.Second)

	req := chatRequest()
	req.WaifuID = 4242
	_, err := svc.Reply(context.Background(), 7, req)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
