// Package services orchestrates the generate and refactor lifecycles
// end-to-end and aggregates run logs.
package services

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// withConfiguredTimeout applies the configured generation timeout unless the
// caller already set a deadline (e.g. via the --timeout flag).
func withConfiguredTimeout(ctx context.Context, cfg domain.Config) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || cfg.Generation.TimeoutSeconds <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(cfg.Generation.TimeoutSeconds)*time.Second)
}

// recordOutcome finalizes and appends a run record. Append failures are
// logged and swallowed so they never mask the run's own outcome.
func recordOutcome(store ports.RunStore, log ports.Logger, rec domain.RunRecord) {
	if store == nil {
		return
	}
	if err := store.Append(rec); err != nil && log != nil {
		log.Warn("run record append failed", map[string]interface{}{
			"error": err.Error(),
			"path":  store.Path(),
		})
	}
}

func failureRecord(rec domain.RunRecord, start time.Time, err error) domain.RunRecord {
	rec.DurationSeconds = roundSeconds(time.Since(start))
	rec.Success = false
	rec.Error = &domain.RunError{Kind: domain.ErrorKindOf(err), Message: err.Error()}
	return rec
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeText creates parent directories and writes content in one shot.
// Content always uses LF newlines so git apply works regardless of platform.
func writeText(path, content string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
