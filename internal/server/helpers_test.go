package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := routeID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/items/7", fiber.StatusOK},
		{"/items/0", fiber.StatusBadRequest},
		{"/items/-3", fiber.StatusBadRequest},
		{"/items/abc", fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == fiber.StatusBadRequest {
				assert.Equal(t, "ID tidak valid", decodeBody(t, resp)["message"])
			}
		})
	}
}

func TestFormAndQueryValueAliases(t *testing.T) {
	app := fiber.New()
	app.Post("/form", func(c *fiber.Ctx) error {
		return c.SendString(formValue(c, "namaInstitusi", "institution_name"))
	})
	app.Get("/query", func(c *fiber.Ctx) error {
		return c.SendString(queryValue(c, "month", "bulan"))
	})

	form := url.Values{"institution_name": {"SMA 2"}, "namaInstitusi": {"  "}}
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "SMA 2", string(raw))

	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/query?bulan=3", nil))
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	raw, err = io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Equal(t, "3", string(raw))
}
