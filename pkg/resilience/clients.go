package resilience

import (
	"context"

	"waifuhub/backend/ai"
	"waifuhub/backend/pkg/logger"
)

// GuardedChatClient wraps a chat client with a circuit breaker.
type GuardedChatClient struct {
	inner   ai.ChatClient
	breaker *CircuitBreaker
}

// NewGuardedChatClient creates a breaker-protected chat client
func NewGuardedChatClient(inner ai.ChatClient, log *logger.Logger) *GuardedChatClient {
	return &GuardedChatClient{
		inner:   inner,
		breaker: NewCircuitBreaker(DefaultConfig("chat-upstream"), log),
	}
}

// GenerateReply implements ai.ChatClient.
func (g *GuardedChatClient) GenerateReply(ctx context.Context, systemPrompt string, history []ai.Turn, userMessage string) (string, error) {
	var reply string
	err := g.breaker.Execute(func() error {
		var callErr error
		reply, callErr = g.inner.GenerateReply(ctx, systemPrompt, history, userMessage)
		return callErr
	})
	return reply, err
}

// Ready reports whether the breaker is accepting calls.
func (g *GuardedChatClient) Ready() error {
	if g.breaker.GetState() == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

// GuardedVideoClient wraps a video client with a circuit breaker.
type GuardedVideoClient struct {
	inner   ai.VideoClient
	breaker *CircuitBreaker
}

// NewGuardedVideoClient creates a breaker-protected video client
func NewGuardedVideoClient(inner ai.VideoClient, log *logger.Logger) *GuardedVideoClient {
	return &GuardedVideoClient{
		inner:   inner,
		breaker: NewCircuitBreaker(DefaultConfig("video-upstream"), log),
	}
}

// GenerateVideo implements ai.VideoClient.
func (g *GuardedVideoClient) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	var url string
	err := g.breaker.Execute(func() error {
		var callErr error
		url, callErr = g.inner.GenerateVideo(ctx, prompt)
		return callErr
	})
	return url, err
}

// Ready reports whether the breaker is accepting calls.
func (g *GuardedVideoClient) Ready() error {
	if g.breaker.GetState() == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}
