package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)
}

func TestGenerateReply(t *testing.T) {
	var captured chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hello there!"}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "gpt-4"})
	require.NoError(t, err)

	reply, err := client.GenerateReply(context.Background(), "You are Yuki.", []Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hey"},
	}, "how are you?")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", reply)

	// system prompt first, history in order, new message last
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, "how are you?", captured.Messages[3].Content)
}

func TestGenerateReplyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.GenerateReply(context.Background(), "prompt", nil, "hi")
	assert.Error(t, err)
}

func TestGenerateVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/luma/ray-flash-2-540p/predictions", r.URL.Path)
		require.Equal(t, "wait", r.Header.Get("Prefer"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p1",
			"status": "succeeded",
			"output": "https://cdn.example.com/video.mp4",
		})
	}))
	defer srv.Close()

	client, err := NewReplicateClient(ReplicateConfig{BaseURL: srv.URL, Token: "tok"})
	require.NoError(t, err)

	url, err := client.GenerateVideo(context.Background(), "an anime girl")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/video.mp4", url)
}

func TestGenerateVideoListOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "succeeded",
			"output": []string{"https://cdn.example.com/a.mp4", "https://cdn.example.com/b.mp4"},
		})
	}))
	defer srv.Close()

	client, err := NewReplicateClient(ReplicateConfig{BaseURL: srv.URL, Token: "tok"})
	require.NoError(t, err)

	url, err := client.GenerateVideo(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.mp4", url)
}

func TestGenerateVideoFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := "NSFW content detected"
		json.NewEncoder(w).Encode(predictionResponse{Status: "failed", Error: &msg})
	}))
	defer srv.Close()

	client, err := NewReplicateClient(ReplicateConfig{BaseURL: srv.URL, Token: "tok"})
	require.NoError(t, err)

	_, err = client.GenerateVideo(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NSFW")
}
