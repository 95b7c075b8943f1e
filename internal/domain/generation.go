package domain

// Chat roles accepted by the completion endpoint.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message in role/content form.
type Message struct {
	Role    string
	Content string
}

// GenerationOptions are the sampling parameters for one logical completion
// call. They are immutable per request; the gateway builds reduced
// CompletionRequests from them when a deployment rejects a parameter.
type GenerationOptions struct {
	SystemPrompt    string
	Temperature     float64
	MaxOutputTokens int // 0 means unset
}

// CompletionRequest is the wire-level request for a single attempt.
// Temperature is a pointer so a dropped parameter is omitted from the request
// body rather than sent as zero.
type CompletionRequest struct {
	Messages        []Message
	Temperature     *float64
	MaxOutputTokens int // 0 means omitted
}

// RetryStats records what the compatibility-retry loop did during one logical
// call. Attempts counts requests actually issued; the dropped flags accumulate
// monotonically and never reset within a call.
type RetryStats struct {
	Attempts           int  `json:"attempts"`
	DroppedMaxTokens   bool `json:"dropped_max_tokens"`
	DroppedTemperature bool `json:"dropped_temperature"`
}

// GenerationResult is the outcome of a successful completion call: the
// trimmed, non-empty model text plus the retry metadata for auditing.
type GenerationResult struct {
	Text  string
	Retry RetryStats
}
