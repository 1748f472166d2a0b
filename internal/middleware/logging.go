// Package middleware provides the fiber middleware shared by every route and
// the process-wide structured logger.
package middleware

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide logger. Handlers and services log through it
// with the *Context variants so request metadata is attached.
var Logger *slog.Logger

type contextKey string

// Request-scoped values copied onto every log record.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

var recordKeys = []contextKey{RequestIDKey, UserIDKey, TraceIDKey}

type requestAttrs struct {
	slog.Handler
}

func (h requestAttrs) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range recordKeys {
		switch v := ctx.Value(key).(type) {
		case string:
			if v != "" {
				r.AddAttrs(slog.String(string(key), v))
			}
		case uint:
			r.AddAttrs(slog.Uint64(string(key), uint64(v)))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestAttrs) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestAttrs{h.Handler.WithAttrs(attrs)}
}

func (h requestAttrs) WithGroup(name string) slog.Handler {
	return requestAttrs{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
}

// NewLogger writes JSON in production and text elsewhere.
func NewLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if env == "production" || env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(requestAttrs{h})
}

// parseLevel accepts slog level names in any case, plus "warning".
func parseLevel(level string) slog.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ContextMiddleware moves the request ID from fiber locals into the request
// context so service and repository logs carry it.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for local, key := range map[string]contextKey{"requestid": RequestIDKey, "traceID": TraceIDKey} {
			if v, ok := c.Locals(local).(string); ok && v != "" {
				ctx = context.WithValue(ctx, key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one line per request once the handler chain returns.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}
		level, msg := slog.LevelInfo, "request processed"
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		if err != nil || status >= fiber.StatusInternalServerError {
			level, msg = slog.LevelError, "request failed"
		}
		// The user context is read after Next so the admin ID set by auth is included.
		Logger.LogAttrs(c.UserContext(), level, msg, attrs...)
		return err
	}
}
