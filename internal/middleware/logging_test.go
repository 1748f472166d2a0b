package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAttrs_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(requestAttrs{slog.NewJSONHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(7))
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")
	logger.InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":7`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
}

func TestRequestAttrs_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(requestAttrs{slog.NewJSONHandler(&buf, nil)}).With("component", "mailer")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-2")
	logger.InfoContext(ctx, "sent")

	assert.Contains(t, buf.String(), `"component":"mailer"`)
	assert.Contains(t, buf.String(), `"request_id":"req-2"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestContextMiddleware_PropagatesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen, _ = c.UserContext().Value(RequestIDKey).(string)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "abc-123", seen)
}
