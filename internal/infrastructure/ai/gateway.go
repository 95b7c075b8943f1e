package ai

import (
	"context"
	"strings"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// maxAttempts bounds the compatibility-retry loop, counting the first request.
const maxAttempts = 3

// Markers Azure embeds in rejection messages when a deployment does not accept
// a legacy sampling parameter. Which parameters a deployment rejects is only
// discoverable at call time, so the gateway adapts instead of hard-coding a
// parameter matrix per deployment.
const (
	markerUnsupported = "unsupported"
	markerTemperature = "temperature"
	markerMaxTokens   = "max_tokens" // also matches max_completion_tokens
)

// Gateway implements ports.CompletionGateway: it retries a rejected request
// with the offending parameter removed, up to maxAttempts total attempts, and
// reports what it dropped so operators can audit silent parameter loss.
type Gateway struct {
	Completer ports.ChatCompleter
	Logger    ports.Logger
}

// NewGateway builds a gateway around a completer.
func NewGateway(completer ports.ChatCompleter, log ports.Logger) *Gateway {
	return &Gateway{Completer: completer, Logger: log}
}

// CompleteWithRetry issues the request, dropping rejected parameters between
// attempts. The returned text is whitespace-trimmed and guaranteed non-empty.
func (g *Gateway) CompleteWithRetry(ctx context.Context, messages []domain.Message, opts domain.GenerationOptions) (domain.GenerationResult, error) {
	stats := domain.RetryStats{}
	includeTemperature := true
	includeMaxTokens := opts.MaxOutputTokens > 0

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.GenerationResult{}, err
		}

		stats.Attempts = attempt
		text, err := g.Completer.Complete(ctx, buildRequest(messages, opts, includeTemperature, includeMaxTokens))
		if err != nil {
			rejectedTemperature, rejectedMaxTokens := unsupportedParams(err)
			dropTemperature := rejectedTemperature && includeTemperature
			dropMaxTokens := rejectedMaxTokens && includeMaxTokens
			if !dropTemperature && !dropMaxTokens {
				return domain.GenerationResult{}, &domain.GenerationError{Msg: "completion request failed", Err: err}
			}
			if dropTemperature {
				includeTemperature = false
				stats.DroppedTemperature = true
			}
			if dropMaxTokens {
				includeMaxTokens = false
				stats.DroppedMaxTokens = true
			}
			lastErr = err
			if g.Logger != nil {
				g.Logger.Warn("deployment rejected parameter, retrying", map[string]interface{}{
					"attempt":             attempt,
					"dropped_temperature": dropTemperature,
					"dropped_max_tokens":  dropMaxTokens,
				})
			}
			continue
		}

		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return domain.GenerationResult{}, &domain.GenerationError{Msg: "deployment returned no output text"}
		}
		return domain.GenerationResult{Text: trimmed, Retry: stats}, nil
	}

	return domain.GenerationResult{}, &domain.GenerationError{Msg: "retry budget exhausted", Err: lastErr}
}

func buildRequest(messages []domain.Message, opts domain.GenerationOptions, includeTemperature, includeMaxTokens bool) domain.CompletionRequest {
	req := domain.CompletionRequest{Messages: messages}
	if includeTemperature {
		temperature := opts.Temperature
		req.Temperature = &temperature
	}
	if includeMaxTokens {
		req.MaxOutputTokens = opts.MaxOutputTokens
	}
	return req
}

// unsupportedParams reports which recognized parameters an upstream error
// names. Errors that do not mention an unsupported parameter are not
// compatibility rejections and must be surfaced unchanged.
func unsupportedParams(err error) (temperature, maxTokens bool) {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, markerUnsupported) {
		return false, false
	}
	return strings.Contains(msg, markerTemperature), strings.Contains(msg, markerMaxTokens)
}

var _ ports.CompletionGateway = (*Gateway)(nil)
