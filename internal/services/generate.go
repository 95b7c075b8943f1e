package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// GenerateService drives a direct prompt -> model text -> output file run.
type GenerateService struct {
	ConfigProvider ports.ConfigProvider
	Gateway        ports.CompletionGateway
	Runs           ports.RunStore
	Logger         ports.Logger
}

// GenerateRequest describes one generate invocation. Temperature and
// MaxTokens override the configured defaults when set.
type GenerateRequest struct {
	Context     context.Context
	PromptPath  string
	OutputPath  string
	Temperature *float64
	MaxTokens   int
}

// GenerateResult reports a successful generation.
type GenerateResult struct {
	RunID    string
	Text     string
	Retry    domain.RetryStats
	Duration time.Duration
}

// Run processes a single generate invocation. A run record is appended on
// every exit path, success or failure.
func (s *GenerateService) Run(req GenerateRequest) (GenerateResult, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	rec := domain.RunRecord{
		RunID:      uuid.NewString(),
		Timestamp:  start.UTC(),
		Mode:       domain.ModeGenerate,
		PromptPath: req.PromptPath,
		OutputPath: req.OutputPath,
	}
	fail := func(err error) (GenerateResult, error) {
		recordOutcome(s.Runs, s.Logger, failureRecord(rec, start, err))
		return GenerateResult{}, err
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("load config: %w", err))
	}
	rec.Deployment = cfg.Azure.Deployment

	ctx, cancel := withConfiguredTimeout(ctx, cfg)
	defer cancel()

	promptText, err := readText(req.PromptPath)
	if err != nil {
		return fail(fmt.Errorf("read prompt: %w", err))
	}

	opts := generationOptions(cfg.Generation.SystemPrompt, cfg, req.Temperature, req.MaxTokens)
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: opts.SystemPrompt},
		{Role: domain.RoleUser, Content: strings.TrimSpace(promptText)},
	}

	result, err := s.Gateway.CompleteWithRetry(ctx, messages, opts)
	if err != nil {
		return fail(err)
	}

	if err := writeText(req.OutputPath, result.Text+"\n"); err != nil {
		return fail(fmt.Errorf("write output: %w", err))
	}

	duration := time.Since(start)
	rec.DurationSeconds = roundSeconds(duration)
	rec.Success = true
	retry := result.Retry
	rec.Retry = &retry
	recordOutcome(s.Runs, s.Logger, rec)

	return GenerateResult{
		RunID:    rec.RunID,
		Text:     result.Text,
		Retry:    result.Retry,
		Duration: duration,
	}, nil
}

// generationOptions merges configured defaults with per-invocation overrides.
func generationOptions(systemPrompt string, cfg domain.Config, temperature *float64, maxTokens int) domain.GenerationOptions {
	opts := domain.GenerationOptions{
		SystemPrompt:    systemPrompt,
		Temperature:     cfg.Generation.Temperature,
		MaxOutputTokens: cfg.Generation.MaxTokens,
	}
	if temperature != nil {
		opts.Temperature = *temperature
	}
	if maxTokens > 0 {
		opts.MaxOutputTokens = maxTokens
	}
	return opts
}
