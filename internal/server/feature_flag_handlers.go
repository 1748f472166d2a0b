package server

import (
	"kunjungan/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the configured flag values, the built-in defaults
// and how each flag currently evaluates.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,raw=map[string]string,defaults=map[string]string,evaluated=map[string]bool}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"raw":       s.featureFlags.Raw(),
		"defaults":  featureflags.Defaults(),
		"evaluated": s.featureFlags.Snapshot(),
	})
}
