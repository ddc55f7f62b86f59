package ai

import (
	"context"
)

// Turn is one prior message in a chat exchange.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient generates a single in-character reply. Implementations must be
// bounded by the context deadline and must return an error rather than a
// fabricated fallback reply.
type ChatClient interface {
	GenerateReply(ctx context.Context, systemPrompt string, history []Turn, userMessage string) (string, error)
}

// VideoClient generates character media from a motion prompt and returns the
// URL of the produced asset.
type VideoClient interface {
	GenerateVideo(ctx context.Context, prompt string) (string, error)
}
