package api

import (
	"net/http"
	"strconv"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/service"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/observability"

	"github.com/gin-gonic/gin"
)

// ChatController handles in-character chat
type ChatController struct {
	chats *service.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chats *service.ChatService) *ChatController {
	return &ChatController{chats: chats}
}

// Chat generates the character's next reply. The caller supplies the full
// conversation history each time; nothing upstream is stateful.
func (cc *ChatController) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.NewValidation("name, personality, style, hair_color and new_message are required"))
		return
	}

	reply, err := cc.chats.Reply(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeUpstreamFailure) {
			observability.RecordUpstreamFailure(c.Request.Context(), "chat")
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// History returns the caller's stored exchange log with one character.
func (cc *ChatController) History(c *gin.Context) {
	waifuID, err := strconv.ParseUint(c.Query("waifu_id"), 10, 32)
	if err != nil || waifuID == 0 {
		fail(c, apperrors.NewValidation("waifu_id query parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	messages, err := cc.chats.History(currentUserID(c), uint(waifuID), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
