package models

import (
	"time"
)

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is an append-only record of one side of a chat exchange.
// Persistence is best-effort; the chat flow works without it.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	WaifuID   uint      `gorm:"index" json:"waifu_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatTurn is a single message in a request's conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request structure for the chat endpoint. WaifuID is
// optional; when absent the inline attributes drive the persona and nothing
// is persisted.
type ChatRequest struct {
	WaifuID     uint       `json:"waifu_id"`
	Name        string     `json:"name" binding:"required"`
	Personality string     `json:"personality" binding:"required"`
	Style       string     `json:"style" binding:"required"`
	HairColor   string     `json:"hair_color" binding:"required"`
	Biography   string     `json:"biography"`
	Messages    []ChatTurn `json:"messages"`
	NewMessage  string     `json:"new_message" binding:"required"`
}
