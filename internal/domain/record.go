package domain

import "time"

// RunMode distinguishes the two invocation kinds.
type RunMode string

const (
	ModeGenerate RunMode = "generate"
	ModeRefactor RunMode = "refactor"
)

// RunError is the failure half of a run record.
type RunError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunRecord is one line of the append-only run log. A record is created at
// call start, finalized exactly once, and never mutated after it is appended.
// Retry is present on success, Error on failure; never both.
type RunRecord struct {
	RunID           string      `json:"run_id"`
	Timestamp       time.Time   `json:"timestamp"`
	Mode            RunMode     `json:"mode"`
	Deployment      string      `json:"deployment,omitempty"`
	PromptPath      string      `json:"prompt_path,omitempty"`
	TargetPath      string      `json:"target_path,omitempty"`
	OutputPath      string      `json:"output_path,omitempty"`
	DurationSeconds float64     `json:"duration_seconds"`
	Success         bool        `json:"success"`
	Retry           *RetryStats `json:"retry,omitempty"`
	Error           *RunError   `json:"error,omitempty"`
}
