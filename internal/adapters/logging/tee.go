package logging

import (
	"context"

	"github.com/mvaldez/orinup/internal/ports"
)

// TeeLogger forwards every entry to two loggers. Level filtering is left to
// the underlying loggers so the file can capture debug detail the console
// suppresses.
type TeeLogger struct {
	a, b ports.Logger
}

// NewTeeLogger creates a logger that duplicates entries to a and b.
func NewTeeLogger(a, b ports.Logger) *TeeLogger {
	return &TeeLogger{a: a, b: b}
}

// Debug logs a debug message to both loggers.
func (l *TeeLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.a.Debug(ctx, msg, fields...)
	l.b.Debug(ctx, msg, fields...)
}

// Info logs an informational message to both loggers.
func (l *TeeLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.a.Info(ctx, msg, fields...)
	l.b.Info(ctx, msg, fields...)
}

// Warn logs a warning message to both loggers.
func (l *TeeLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.a.Warn(ctx, msg, fields...)
	l.b.Warn(ctx, msg, fields...)
}

// Error logs an error message to both loggers.
func (l *TeeLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.a.Error(ctx, msg, fields...)
	l.b.Error(ctx, msg, fields...)
}

// With returns a new TeeLogger with the fields added to both loggers.
func (l *TeeLogger) With(fields ...ports.Field) ports.Logger {
	return &TeeLogger{a: l.a.With(fields...), b: l.b.With(fields...)}
}

// Level returns the minimum level of the first logger.
func (l *TeeLogger) Level() ports.Level {
	return l.a.Level()
}

// SetLevel sets the level on both loggers.
func (l *TeeLogger) SetLevel(level ports.Level) {
	l.a.SetLevel(level)
	l.b.SetLevel(level)
}

// Ensure TeeLogger implements Logger.
var _ ports.Logger = (*TeeLogger)(nil)
