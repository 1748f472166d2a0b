// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// GlobalLogger is the logger used by repository and async helpers. The server
// replaces it at startup with the request-context aware logger.
var GlobalLogger = slog.Default()

// SetLogger installs l as the logger for the helpers in this package.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = l
	}
}

// LoggingConfig switches the automatic repository and async logs.
type LoggingConfig struct {
	EnableRepoLogging  bool
	EnableAsyncLogging bool
}

// Config is read on every call, so tests can flip it.
var Config = LoggingConfig{
	EnableRepoLogging:  true,
	EnableAsyncLogging: true,
}

// Fields are extra key/value pairs rendered in key order.
type Fields = map[string]any

func withFields(fields Fields, head ...slog.Attr) []slog.Attr {
	attrs := slices.Grow(head, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return attrs
}

// RepoLogger writes debug lines for one table's writes and reads.
type RepoLogger struct {
	table string
}

func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) emit(ctx context.Context, level slog.Level, msg, operation string, fields Fields, extra ...slog.Attr) {
	if !Config.EnableRepoLogging {
		return
	}
	head := append([]slog.Attr{slog.String("table", l.table), slog.String("operation", operation)}, extra...)
	GlobalLogger.LogAttrs(ctx, level, msg, withFields(fields, head...)...)
}

func (l *RepoLogger) LogCreate(ctx context.Context, fields Fields) {
	l.emit(ctx, slog.LevelDebug, "repository create", "create", fields)
}

func (l *RepoLogger) LogRead(ctx context.Context, fields Fields) {
	l.emit(ctx, slog.LevelDebug, "repository read", "read", fields)
}

func (l *RepoLogger) LogUpdate(ctx context.Context, fields Fields) {
	l.emit(ctx, slog.LevelDebug, "repository update", "update", fields)
}

func (l *RepoLogger) LogDelete(ctx context.Context, fields Fields) {
	l.emit(ctx, slog.LevelDebug, "repository delete", "delete", fields)
}

// LogError logs a failed operation. A nil err logs nothing.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if err == nil {
		return
	}
	l.emit(ctx, slog.LevelError, "repository error", operation, nil, slog.String("error", err.Error()))
}

func logAsync(ctx context.Context, level slog.Level, msg, operation, phase string, fields Fields, extra ...slog.Attr) {
	if !Config.EnableAsyncLogging {
		return
	}
	head := append([]slog.Attr{slog.String("operation", operation), slog.String("type", phase)}, extra...)
	GlobalLogger.LogAttrs(ctx, level, msg, withFields(fields, head...)...)
}

// LogAsyncOperationStart logs, at debug, that background work began.
func LogAsyncOperationStart(ctx context.Context, operation string, fields Fields) {
	logAsync(ctx, slog.LevelDebug, "async operation started", operation, "async_start", fields)
}

// LogAsyncOperationEnd logs successful background work.
func LogAsyncOperationEnd(ctx context.Context, operation string, fields Fields) {
	logAsync(ctx, slog.LevelInfo, "async operation completed", operation, "async_end", fields)
}

// LogAsyncOperationError logs failed background work.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields Fields) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	logAsync(ctx, slog.LevelError, "async operation failed", operation, "async_error", fields, slog.String("error", msg))
}
