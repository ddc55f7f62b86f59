package service

import (
	"context"
	"errors"
	"time"

	"waifuhub/backend/ai"
	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/prompt"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/logger"

	"gorm.io/gorm"
)

// ChatService produces in-character replies. Each call is stateless upstream;
// the client supplies the conversation history every time. Persistence of the
// exchange is best-effort and only happens for saved characters.
type ChatService struct {
	db         *gorm.DB
	chat       ai.ChatClient
	maxHistory int
	timeout    time.Duration
}

// NewChatService creates a new chat service
func NewChatService(db *gorm.DB, chat ai.ChatClient, maxHistory int, timeout time.Duration) *ChatService {
	if maxHistory <= 0 {
		maxHistory = 50
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatService{db: db, chat: chat, maxHistory: maxHistory, timeout: timeout}
}

// Reply generates the character's next message. When waifu_id names a saved
// character, its stored attributes drive the persona; otherwise the inline
// attributes do, so unsaved characters are chattable too.
func (s *ChatService) Reply(ctx context.Context, userID uint, req *models.ChatRequest) (string, error) {
	persona := prompt.Persona{
		Name:        req.Name,
		Personality: req.Personality,
		Style:       req.Style,
		HairColor:   req.HairColor,
		Biography:   req.Biography,
	}

	if req.WaifuID != 0 {
		var waifu models.Waifu
		if err := s.db.First(&waifu, req.WaifuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", apperrors.NewNotFound("character not found")
			}
			return "", apperrors.NewPersistenceFailure("failed to load character")
		}
		persona = prompt.Persona{
			Name:        waifu.Name,
			Personality: waifu.Personality,
			Style:       waifu.Style,
			HairColor:   waifu.HairColor,
			Biography:   waifu.Biography,
		}
	}

	history := req.Messages
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}

	chatCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.chat.GenerateReply(chatCtx, prompt.BuildPersona(persona), turns, req.NewMessage)
	if err != nil {
		logger.GetGlobal().Error("chat completion failed", "waifu_id", req.WaifuID, "error", err)
		return "", apperrors.NewUpstreamFailure("chat generation failed")
	}

	if userID != 0 && req.WaifuID != 0 {
		s.recordExchange(userID, req.WaifuID, req.NewMessage, reply)
	}
	return reply, nil
}

// recordExchange appends both sides of the exchange to the message log. A
// write failure is logged and swallowed; the reply already exists.
func (s *ChatService) recordExchange(userID, waifuID uint, userMessage, reply string) {
	rows := []models.ChatMessage{
		{UserID: userID, WaifuID: waifuID, Role: models.RoleUser, Content: userMessage},
		{UserID: userID, WaifuID: waifuID, Role: models.RoleAssistant, Content: reply},
	}
	if err := s.db.Create(&rows).Error; err != nil {
		logger.GetGlobal().Warn("failed to record chat exchange", "waifu_id", waifuID, "error", err)
	}
}

// History returns the stored exchange log for one of the user's conversations,
// oldest first.
func (s *ChatService) History(userID, waifuID uint, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var messages []models.ChatMessage
	err := s.db.Where("user_id = ? AND waifu_id = ?", userID, waifuID).
		Order("created_at ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, apperrors.NewPersistenceFailure("failed to load chat history")
	}
	return messages, nil
}
