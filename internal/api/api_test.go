package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waifuhub/backend/ai"
	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/service"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/jwt"
	"waifuhub/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeVideo struct {
	url string
	err error
}

func (f *fakeVideo) GenerateVideo(context.Context, string) (string, error) {
	return f.url, f.err
}

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) GenerateReply(context.Context, string, []ai.Turn, string) (string, error) {
	return f.reply, f.err
}

type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
	tokens *jwt.Service
	video  *fakeVideo
	chat   *fakeChat
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	tokens := jwt.NewService("test-secret", time.Hour)
	video := &fakeVideo{url: "https://cdn.example.com/v.mp4"}
	chat := &fakeChat{reply: "hello!"}

	users := service.NewUserService(db, tokens)
	waifus := service.NewWaifuService(db, video, 10*time.Minute, time.Minute)
	votes := service.NewVoteService(db, 10*time.Minute)
	chats := service.NewChatService(db, chat, 50, time.Second)

	engine := gin.New()
	engine.Use(apperrors.ErrorHandler())

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	authController := NewAuthController(users)
	waifuController := NewWaifuController(waifus)
	voteController := NewVoteController(votes)
	chatController := NewChatController(chats)

	v1 := engine.Group("/api/v1")
	v1.POST("/auth/connect", authController.Connect)
	v1.GET("/auth/me", requireAuth, authController.Me)
	v1.POST("/waifus/generate", requireAuth, waifuController.Generate)
	v1.POST("/waifus/:id/publish", requireAuth, waifuController.Publish)
	v1.GET("/waifus/community", waifuController.Community)
	v1.GET("/waifus/mine", requireAuth, waifuController.Mine)
	v1.GET("/waifus/:id", optionalAuth, waifuController.Get)
	v1.POST("/votes", requireAuth, voteController.Cast)
	v1.GET("/votes/status", optionalAuth, voteController.Status)
	v1.POST("/chat", optionalAuth, chatController.Chat)
	v1.GET("/chat/history", requireAuth, chatController.History)

	return &testAPI{engine: engine, db: db, tokens: tokens, video: video, chat: chat}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) connect(t *testing.T, wallet string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/connect", "", gin.H{"wallet_address": wallet})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestConnectAndMe(t *testing.T) {
	a := setupAPI(t)

	token := a.connect(t, "0xdeadbeef99")

	w := a.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0xdeadbeef99")

	w = a.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeUnauthenticated, errorCode(t, w))
}

func TestConnectValidation(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/auth/connect", "", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidation, errorCode(t, w))
}

func generateBody() gin.H {
	return gin.H{
		"name":        "Yuki",
		"personality": "shy",
		"style":       "anime",
		"hair_color":  "silver",
	}
}

func TestGenerateFlow(t *testing.T) {
	a := setupAPI(t)
	token := a.connect(t, "0xgen0001xx")

	// unauthenticated
	w := a.do(t, http.MethodPost, "/api/v1/waifus/generate", "", generateBody())
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// missing fields
	w = a.do(t, http.MethodPost, "/api/v1/waifus/generate", token, gin.H{"name": "Yuki"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidation, errorCode(t, w))

	// happy path
	w = a.do(t, http.MethodPost, "/api/v1/waifus/generate", token, generateBody())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.example.com/v.mp4")

	// second attempt inside the window
	w = a.do(t, http.MethodPost, "/api/v1/waifus/generate", token, generateBody())
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apperrors.CodeRateLimited, errorCode(t, w))
	assert.Contains(t, w.Body.String(), "retry_after_seconds")
}

func TestGenerateUpstreamFailure(t *testing.T) {
	a := setupAPI(t)
	token := a.connect(t, "0xgen0002xx")
	a.video.err = fmt.Errorf("model offline")

	w := a.do(t, http.MethodPost, "/api/v1/waifus/generate", token, generateBody())
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, apperrors.CodeUpstreamFailure, errorCode(t, w))

	// the failed attempt did not consume the window
	a.video.err = nil
	w = a.do(t, http.MethodPost, "/api/v1/waifus/generate", token, generateBody())
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestPublishAndFeed(t *testing.T) {
	a := setupAPI(t)
	owner := a.connect(t, "0xpub0001xx")
	stranger := a.connect(t, "0xpub0002xx")

	w := a.do(t, http.MethodPost, "/api/v1/waifus/generate", owner, generateBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Waifu models.Waifu `json:"waifu"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// feed is empty before publishing
	w = a.do(t, http.MethodGet, "/api/v1/waifus/community", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Yuki")

	// draft hidden from strangers, visible to owner
	path := fmt.Sprintf("/api/v1/waifus/%d", created.Waifu.ID)
	w = a.do(t, http.MethodGet, path, stranger, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(t, http.MethodGet, path, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// only the owner can publish
	publishPath := fmt.Sprintf("/api/v1/waifus/%d/publish", created.Waifu.ID)
	w = a.do(t, http.MethodPost, publishPath, stranger, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeNotOwner, errorCode(t, w))

	w = a.do(t, http.MethodPost, publishPath, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// now public
	w = a.do(t, http.MethodGet, "/api/v1/waifus/community", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Yuki")
	w = a.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// invalid sort
	w = a.do(t, http.MethodGet, "/api/v1/waifus/community?sort=oldest", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteEndpoints(t *testing.T) {
	a := setupAPI(t)
	owner := a.connect(t, "0xvot0001xx")
	voter := a.connect(t, "0xvot0002xx")

	w := a.do(t, http.MethodPost, "/api/v1/waifus/generate", owner, generateBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Waifu models.Waifu `json:"waifu"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	publishPath := fmt.Sprintf("/api/v1/waifus/%d/publish", created.Waifu.ID)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, publishPath, owner, nil).Code)

	// anonymous status reads as not voted
	statusPath := fmt.Sprintf("/api/v1/votes/status?waifu_id=%d", created.Waifu.ID)
	w = a.do(t, http.MethodGet, statusPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_voted":false`)

	// voting requires a session
	voteBody := gin.H{"waifu_id": created.Waifu.ID, "vote_type": "like"}
	w = a.do(t, http.MethodPost, "/api/v1/votes", "", voteBody)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/votes", voter, voteBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"likes":1`)

	w = a.do(t, http.MethodGet, statusPath, voter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vote_type":"like"`)

	// unknown character
	w = a.do(t, http.MethodPost, "/api/v1/votes", voter, gin.H{"waifu_id": 9999, "vote_type": "like"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptionalAuthRejectsMalformedToken(t *testing.T) {
	a := setupAPI(t)

	w := a.do(t, http.MethodGet, "/api/v1/votes/status?waifu_id=1", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeUnauthenticated, errorCode(t, w))
}

func TestChatEndpoint(t *testing.T) {
	a := setupAPI(t)

	body := gin.H{
		"name":        "Yuki",
		"personality": "shy",
		"style":       "anime",
		"hair_color":  "silver",
		"new_message": "hi there",
	}

	// works without a session
	w := a.do(t, http.MethodPost, "/api/v1/chat", "", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello!")

	// upstream failure maps to 502
	a.chat.err = fmt.Errorf("llm down")
	w = a.do(t, http.MethodPost, "/api/v1/chat", "", body)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, apperrors.CodeUpstreamFailure, errorCode(t, w))
}
