package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ReplicateConfig configures the video-generation client.
type ReplicateConfig struct {
	BaseURL string
	Token   string
	Model   string
	Timeout time.Duration
}

// DefaultReplicateConfig returns the production model settings.
func DefaultReplicateConfig(token string) ReplicateConfig {
	return ReplicateConfig{
		BaseURL: "https://api.replicate.com/v1",
		Token:   token,
		Model:   "luma/ray-flash-2-540p",
		Timeout: 5 * time.Minute,
	}
}

// ReplicateClient runs synchronous predictions against the Replicate API.
// Generation is slow, so the timeout is generous; the caller's context still
// bounds the overall request.
type ReplicateClient struct {
	config     ReplicateConfig
	httpClient *http.Client
}

// NewReplicateClient creates a video client. The API token is required.
func NewReplicateClient(config ReplicateConfig) (*ReplicateClient, error) {
	if config.Token == "" {
		return nil, errors.New("Replicate API token is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.replicate.com/v1"
	}
	if config.Model == "" {
		config.Model = "luma/ray-flash-2-540p"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	return &ReplicateClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

type predictionRequest struct {
	Input map[string]any `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

// GenerateVideo runs the model synchronously and returns the output URL.
func (c *ReplicateClient) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	requestBody := predictionRequest{
		Input: map[string]any{
			"prompt": prompt,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling prediction request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating prediction request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	// Block until the prediction completes instead of polling.
	req.Header.Set("Prefer", "wait")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making prediction request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading prediction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("prediction request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	var prediction predictionResponse
	if err := json.Unmarshal(body, &prediction); err != nil {
		return "", fmt.Errorf("error unmarshaling prediction response: %w", err)
	}

	if prediction.Error != nil && *prediction.Error != "" {
		return "", fmt.Errorf("prediction failed: %s", *prediction.Error)
	}

	outputURL, err := extractOutputURL(prediction.Output)
	if err != nil {
		return "", err
	}

	return outputURL, nil
}

// extractOutputURL handles the two output shapes the API produces: a single
// URL string, or a list of URLs where the first entry is the asset.
func extractOutputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("prediction returned no output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0] != "" {
		return list[0], nil
	}

	return "", errors.New("prediction output has no usable URL")
}
