// Package logging wires the session's Logger contract to
// github.com/rs/zerolog, emitting one structured record per event as
// required by §6 ("Environment"). log_metadata (§6) becomes persistent
// fields on a sub-logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured-logging contract every client dependency
// (session engine, rate limiter, throttle handler) writes through.
type Logger interface {
	Info(event string, fields map[string]any)
	Error(event string, fields map[string]any, err error)
}

// ZeroLogger adapts zerolog.Logger to Logger.
type ZeroLogger struct {
	log zerolog.Logger
}

// New builds a ZeroLogger writing to w (os.Stdout if nil) with metadata
// attached to every record, per §6's log_metadata option.
func New(w io.Writer, metadata map[string]string) *ZeroLogger {
	if w == nil {
		w = os.Stdout
	}
	ctx := zerolog.New(w).With().Timestamp()
	for k, v := range metadata {
		ctx = ctx.Str(k, v)
	}
	return &ZeroLogger{log: ctx.Logger()}
}

// Info implements Logger.
func (l *ZeroLogger) Info(event string, fields map[string]any) {
	ev := l.log.Info().Str("event", event)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(event)
}

// Error implements Logger.
func (l *ZeroLogger) Error(event string, fields map[string]any, err error) {
	ev := l.log.Error().Str("event", event)
	if err != nil {
		ev = ev.Err(err)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(event)
}

// Nop discards every record. Useful for tests that don't want to assert
// on log output.
type Nop struct{}

// Info implements Logger.
func (Nop) Info(string, map[string]any) {}

// Error implements Logger.
func (Nop) Error(string, map[string]any, error) {}
