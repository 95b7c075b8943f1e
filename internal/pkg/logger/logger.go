// Package logger adapts zerolog to the ports.Logger interface.
package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/doeshing/rai-go/internal/ports"
)

// ZeroLogger is a ports.Logger backed by zerolog's console writer on stderr.
type ZeroLogger struct {
	log zerolog.Logger
}

// New creates a ZeroLogger. When verbose is false only warnings and errors
// are emitted.
func New(verbose bool) *ZeroLogger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
	return &ZeroLogger{log: zl}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.Error().Err(err).Fields(fields).Msg(msg)
}

var _ ports.Logger = (*ZeroLogger)(nil)
