// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// These interfaces are the contract between the application core and external
// adapters (infrastructure). The core depends on the abstractions only, so the
// completion endpoint, the diff tool, and the run log can all be substituted
// in tests.
package ports

import (
	"context"

	"github.com/doeshing/rai-go/internal/domain"
)

// ConfigProvider loads the resolved configuration.
// Implementations typically read ~/.rai/config.yaml plus environment overrides.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ChatCompleter issues a single chat-completion request and returns the model
// text. A structured upstream error is returned with its message intact so the
// gateway can recognize parameter-compatibility rejections.
type ChatCompleter interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// CompletionGateway wraps a ChatCompleter with the bounded
// parameter-compatibility retry protocol.
type CompletionGateway interface {
	CompleteWithRetry(ctx context.Context, messages []domain.Message, opts domain.GenerationOptions) (domain.GenerationResult, error)
}

// DiffEngine computes a unified diff between two files on disk.
// There is deliberately no context parameter: an in-flight diff subprocess is
// allowed to run to completion even when the invocation is being cancelled.
type DiffEngine interface {
	Diff(pathA, pathB string) (string, error)
}

// RunStore persists one run record per invocation, append-only.
type RunStore interface {
	Append(domain.RunRecord) error
	Records() ([]domain.RunRecord, error)
	Path() string
	Clear() error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
