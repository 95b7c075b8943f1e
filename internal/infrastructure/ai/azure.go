// Package ai wraps the Azure OpenAI chat-completion capability: a thin HTTP
// client plus the Gateway that adapts request parameters to what the
// configured deployment actually accepts.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

const httpClientTimeout = 120 * time.Second

// Client calls the Azure OpenAI Chat Completions API for a single deployment.
type Client struct {
	endpoint   string
	deployment string
	apiVersion string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client from resolved Azure settings. The endpoint is
// expected to be normalized already (base resource URL, not a full
// chat-completions URL).
func NewClient(settings domain.AzureSettings) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(settings.Endpoint, "/"),
		deployment: settings.Deployment,
		apiVersion: settings.APIVersion,
		apiKey:     settings.APIKey,
		httpClient: &http.Client{Timeout: httpClientTimeout},
	}
}

// Complete implements ports.ChatCompleter. Upstream error messages are
// surfaced verbatim so the gateway can recognize parameter rejections.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if c.endpoint == "" || c.deployment == "" {
		return "", fmt.Errorf("azure: endpoint and deployment must be configured")
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("azure: missing API key: set AZURE_OPENAI_KEY or AZURE_OPENAI_API_KEY")
	}

	payload := chatCompletionRequest{
		Messages:            toChatMessages(req.Messages),
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxOutputTokens,
		ResponseFormat:      &responseFormat{Type: "text"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("azure: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("azure: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("azure: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("azure: read response: %w", err)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("azure: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("azure: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("azure: %s", decoded.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("azure: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return decoded.JoinedText(), nil
}

func toChatMessages(messages []domain.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	return out
}

var _ ports.ChatCompleter = (*Client)(nil)
