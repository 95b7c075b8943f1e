package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/patch"
	"github.com/doeshing/rai-go/internal/ports"
)

// RefactorService asks the model for full updated file contents, then emits a
// unified diff the caller can apply with git apply.
type RefactorService struct {
	ConfigProvider ports.ConfigProvider
	Gateway        ports.CompletionGateway
	Diff           ports.DiffEngine
	Runs           ports.RunStore
	Logger         ports.Logger
}

// RefactorRequest describes one refactor invocation. DisplayPath, when empty,
// is derived from the configured repo root or falls back to the target's base
// name.
type RefactorRequest struct {
	Context     context.Context
	TargetPath  string
	PromptPath  string
	OutputPath  string
	DisplayPath string
	Temperature *float64
	MaxTokens   int
}

// RefactorResult reports a successful refactor run.
type RefactorResult struct {
	RunID       string
	PatchPath   string
	DisplayPath string
	Retry       domain.RetryStats
	Duration    time.Duration
}

// Run processes a single refactor invocation: model call, patch synthesis,
// patch write, run record. Either a complete valid patch is written or
// nothing is, and the error is the final observable outcome.
func (s *RefactorService) Run(req RefactorRequest) (RefactorResult, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	rec := domain.RunRecord{
		RunID:      uuid.NewString(),
		Timestamp:  start.UTC(),
		Mode:       domain.ModeRefactor,
		PromptPath: req.PromptPath,
		TargetPath: req.TargetPath,
		OutputPath: req.OutputPath,
	}
	fail := func(err error) (RefactorResult, error) {
		recordOutcome(s.Runs, s.Logger, failureRecord(rec, start, err))
		return RefactorResult{}, err
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("load config: %w", err))
	}
	rec.Deployment = cfg.Azure.Deployment

	ctx, cancel := withConfiguredTimeout(ctx, cfg)
	defer cancel()

	targetPath, err := filepath.Abs(req.TargetPath)
	if err != nil {
		return fail(fmt.Errorf("resolve target: %w", err))
	}
	originalText, err := readText(targetPath)
	if err != nil {
		return fail(fmt.Errorf("read target: %w", err))
	}
	promptText, err := readText(req.PromptPath)
	if err != nil {
		return fail(fmt.Errorf("read prompt: %w", err))
	}

	displayPath := req.DisplayPath
	if displayPath == "" {
		displayPath = displayPathFor(targetPath, cfg.Refactor.RepoRoot)
	}

	opts := generationOptions(cfg.Refactor.SystemPrompt, cfg, req.Temperature, req.MaxTokens)
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: opts.SystemPrompt},
		{Role: domain.RoleUser, Content: refactorUserPrompt(displayPath, promptText, originalText)},
	}

	result, err := s.Gateway.CompleteWithRetry(ctx, messages, opts)
	if err != nil {
		return fail(err)
	}

	synthesizer := patch.NewSynthesizer(s.Diff, cfg.Refactor.StructuralMarker)
	diffText, err := synthesizer.Synthesize(patch.Input{
		DisplayPath:  displayPath,
		TargetPath:   targetPath,
		OriginalText: originalText,
		ModelText:    result.Text,
	})
	if err != nil {
		return fail(err)
	}

	if !strings.HasSuffix(diffText, "\n") {
		diffText += "\n"
	}
	if err := writeText(req.OutputPath, diffText); err != nil {
		return fail(fmt.Errorf("write patch: %w", err))
	}

	duration := time.Since(start)
	rec.DurationSeconds = roundSeconds(duration)
	rec.Success = true
	retry := result.Retry
	rec.Retry = &retry
	recordOutcome(s.Runs, s.Logger, rec)

	return RefactorResult{
		RunID:       rec.RunID,
		PatchPath:   req.OutputPath,
		DisplayPath: displayPath,
		Retry:       result.Retry,
		Duration:    duration,
	}, nil
}

func refactorUserPrompt(displayPath, promptText, originalText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target path (repo-relative): %s\n\n", displayPath)
	fmt.Fprintf(&b, "Instructions:\n%s\n\n", strings.TrimSpace(promptText))
	fmt.Fprintf(&b, "Current file contents:\n%s\n", originalText)
	return b.String()
}

// displayPathFor derives the repo-relative display path for diff headers,
// falling back to the base name when the target is outside the repo root.
func displayPathFor(targetPath, repoRoot string) string {
	if repoRoot != "" {
		if root, err := filepath.Abs(repoRoot); err == nil {
			if rel, err := filepath.Rel(root, targetPath); err == nil &&
				rel != "." && !strings.HasPrefix(rel, "..") {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.Base(targetPath)
}
