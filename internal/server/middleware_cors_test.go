package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"kunjungan/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panelOrigin = "http://localhost:5173"

// limitedApp returns an app with the global middleware whose limiter has
// already been exhausted by 100 POSTs.
func limitedApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: panelOrigin}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.All("/limited", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="x.pdf"`)
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		req.Header.Set("Origin", panelOrigin)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		if i == 0 {
			assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition")
		}
		_ = resp.Body.Close()
	}
	return app
}

func TestGlobalLimiter_RejectionKeepsCORSHeaders(t *testing.T) {
	app := limitedApp(t)

	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.Header.Set("Origin", panelOrigin)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, panelOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Terlalu banyak permintaan, silakan coba lagi nanti.", body["message"])
}

func TestGlobalLimiter_PreflightStillAnswered(t *testing.T) {
	app := limitedApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/limited", nil)
	req.Header.Set("Origin", panelOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, panelOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestCORS_UnknownOriginNotEchoed(t *testing.T) {
	srv := &Server{config: &config.Config{AllowedOrigins: panelOrigin}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
