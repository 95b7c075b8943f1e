package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doeshing/rai-go/internal/domain"
)

type scriptedResponse struct {
	text string
	err  error
}

// scriptedCompleter replays canned responses and records every request it
// received so tests can assert which parameters were present per attempt.
type scriptedCompleter struct {
	responses []scriptedResponse
	requests  []domain.CompletionRequest
}

func (c *scriptedCompleter) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)
	idx := len(c.requests) - 1
	if idx >= len(c.responses) {
		return "", errors.New("scripted completer: no response left")
	}
	return c.responses[idx].text, c.responses[idx].err
}

func defaultOptions() domain.GenerationOptions {
	return domain.GenerationOptions{
		SystemPrompt:    "system",
		Temperature:     0.2,
		MaxOutputTokens: 4000,
	}
}

func testMessages() []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: "system"},
		{Role: domain.RoleUser, Content: "user"},
	}
}

func TestCompleteWithRetryFirstAttemptSuccess(t *testing.T) {
	completer := &scriptedCompleter{responses: []scriptedResponse{
		{text: "  result text \n"},
	}}
	gateway := NewGateway(completer, nil)

	result, err := gateway.CompleteWithRetry(context.Background(), testMessages(), defaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "result text" {
		t.Errorf("text not trimmed: %q", result.Text)
	}
	if result.Retry.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", result.Retry.Attempts)
	}
	if result.Retry.DroppedMaxTokens || result.Retry.DroppedTemperature {
		t.Errorf("no parameter should be dropped: %+v", result.Retry)
	}

	req := completer.requests[0]
	if req.Temperature == nil || *req.Temperature != 0.2 {
		t.Errorf("first request should carry temperature, got %v", req.Temperature)
	}
	if req.MaxOutputTokens != 4000 {
		t.Errorf("first request should carry max tokens, got %d", req.MaxOutputTokens)
	}
}

func TestCompleteWithRetryDropsRejectedParameter(t *testing.T) {
	tests := []struct {
		name            string
		rejection       string
		wantDropMax     bool
		wantDropTemp    bool
		wantTemperature bool // present on the retry request
		wantMaxTokens   bool
	}{
		{
			name:            "max_tokens rejected",
			rejection:       "azure: Unsupported parameter: 'max_tokens' is not supported with this model.",
			wantDropMax:     true,
			wantTemperature: true,
		},
		{
			name:          "temperature rejected",
			rejection:     "azure: Unsupported value: 'temperature' does not support 0.2 with this model.",
			wantDropTemp:  true,
			wantMaxTokens: true,
		},
		{
			name:         "both rejected at once",
			rejection:    "azure: unsupported parameters: temperature, max_tokens",
			wantDropMax:  true,
			wantDropTemp: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &scriptedCompleter{responses: []scriptedResponse{
				{err: errors.New(tt.rejection)},
				{text: "ok"},
			}}
			gateway := NewGateway(completer, nil)

			result, err := gateway.CompleteWithRetry(context.Background(), testMessages(), defaultOptions())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Retry.Attempts != 2 {
				t.Errorf("attempts = %d, want 2", result.Retry.Attempts)
			}
			if result.Retry.DroppedMaxTokens != tt.wantDropMax {
				t.Errorf("dropped_max_tokens = %t, want %t", result.Retry.DroppedMaxTokens, tt.wantDropMax)
			}
			if result.Retry.DroppedTemperature != tt.wantDropTemp {
				t.Errorf("dropped_temperature = %t, want %t", result.Retry.DroppedTemperature, tt.wantDropTemp)
			}

			retry := completer.requests[1]
			if (retry.Temperature != nil) != tt.wantTemperature {
				t.Errorf("retry temperature present = %t, want %t", retry.Temperature != nil, tt.wantTemperature)
			}
			if (retry.MaxOutputTokens > 0) != tt.wantMaxTokens {
				t.Errorf("retry max tokens present = %t, want %t", retry.MaxOutputTokens > 0, tt.wantMaxTokens)
			}
		})
	}
}

func TestCompleteWithRetryUnrecognizedErrorFailsImmediately(t *testing.T) {
	completer := &scriptedCompleter{responses: []scriptedResponse{
		{err: errors.New("azure: rate limit exceeded")},
	}}
	gateway := NewGateway(completer, nil)

	_, err := gateway.CompleteWithRetry(context.Background(), testMessages(), defaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if len(completer.requests) != 1 {
		t.Errorf("requests = %d, want 1 (no retry on unrecognized error)", len(completer.requests))
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("upstream message lost: %v", err)
	}
}

func TestCompleteWithRetryBudgetExhausted(t *testing.T) {
	rejection := scriptedResponse{err: errors.New("unsupported parameter temperature")}
	completer := &scriptedCompleter{responses: []scriptedResponse{
		rejection,
		// Temperature already dropped; the endpoint keeps naming it, so the
		// error no longer matches an included parameter on attempt 2.
		{err: errors.New("unsupported parameter max_tokens")},
		{err: errors.New("unsupported parameter max_tokens")},
	}}
	gateway := NewGateway(completer, nil)

	_, err := gateway.CompleteWithRetry(context.Background(), testMessages(), defaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if len(completer.requests) != 3 {
		t.Errorf("requests = %d, want 3 (retry budget)", len(completer.requests))
	}
}

func TestCompleteWithRetryEmptyText(t *testing.T) {
	completer := &scriptedCompleter{responses: []scriptedResponse{
		{text: "   \n\t  "},
	}}
	gateway := NewGateway(completer, nil)

	_, err := gateway.CompleteWithRetry(context.Background(), testMessages(), defaultOptions())
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError for empty output, got %v", err)
	}
}

func TestCompleteWithRetryOmitsMaxTokensWhenUnset(t *testing.T) {
	completer := &scriptedCompleter{responses: []scriptedResponse{{text: "ok"}}}
	gateway := NewGateway(completer, nil)

	opts := defaultOptions()
	opts.MaxOutputTokens = 0
	if _, err := gateway.CompleteWithRetry(context.Background(), testMessages(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completer.requests[0].MaxOutputTokens != 0 {
		t.Errorf("max tokens should be omitted when unset")
	}
}

func TestCompleteWithRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completer := &scriptedCompleter{responses: []scriptedResponse{{text: "ok"}}}
	gateway := NewGateway(completer, nil)

	_, err := gateway.CompleteWithRetry(ctx, testMessages(), defaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(completer.requests) != 0 {
		t.Errorf("no request should be issued on a cancelled context")
	}
}
