package server

import (
	"strings"

	"kunjungan/internal/models"

	"github.com/gofiber/fiber/v2"
)

var errInvalidID = models.NewValidationError("ID tidak valid")

// routeID reads a positive integer route parameter.
func routeID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// respondError writes err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// formValue returns the first non-empty multipart or urlencoded field among keys.
func formValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := c.FormValue(k); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// queryValue returns the first non-empty query parameter among keys.
func queryValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
