package domain

// ModeStats aggregates the runs of a single mode.
type ModeStats struct {
	Runs               int
	AvgDurationSeconds float64
}

// RunSummary aggregates a set of run records.
type RunSummary struct {
	Total   int
	Success int
	Failure int
	ByMode  map[RunMode]ModeStats

	AvgDurationSeconds float64

	// AvgAttempts averages retry attempts over all records; a record
	// without retry metadata counts as zero attempts.
	AvgAttempts float64

	// Runs where the compatibility retry ever dropped a parameter.
	DroppedMaxTokens   int
	DroppedTemperature int
}
