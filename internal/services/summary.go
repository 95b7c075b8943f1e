package services

import (
	"github.com/doeshing/rai-go/internal/domain"
)

// Summarize computes aggregate statistics over run records: totals,
// success/failure split, per-mode counts and average durations, average
// retry attempts, and how many runs ever dropped a compatibility parameter.
// Attempts average over all records; a record without retry metadata (a
// failed run) counts as zero attempts.
func Summarize(records []domain.RunRecord) domain.RunSummary {
	summary := domain.RunSummary{ByMode: make(map[domain.RunMode]domain.ModeStats)}

	var totalDuration float64
	modeDurations := make(map[domain.RunMode]float64)
	var attemptsSum float64

	for _, rec := range records {
		summary.Total++
		if rec.Success {
			summary.Success++
		} else {
			summary.Failure++
		}
		totalDuration += rec.DurationSeconds

		stats := summary.ByMode[rec.Mode]
		stats.Runs++
		summary.ByMode[rec.Mode] = stats
		modeDurations[rec.Mode] += rec.DurationSeconds

		if rec.Retry != nil {
			attemptsSum += float64(rec.Retry.Attempts)
			if rec.Retry.DroppedMaxTokens {
				summary.DroppedMaxTokens++
			}
			if rec.Retry.DroppedTemperature {
				summary.DroppedTemperature++
			}
		}
	}

	if summary.Total > 0 {
		summary.AvgDurationSeconds = totalDuration / float64(summary.Total)
		summary.AvgAttempts = attemptsSum / float64(summary.Total)
	}
	for mode, stats := range summary.ByMode {
		if stats.Runs > 0 {
			stats.AvgDurationSeconds = modeDurations[mode] / float64(stats.Runs)
			summary.ByMode[mode] = stats
		}
	}
	return summary
}
