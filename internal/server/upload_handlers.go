package server

import (
	"os"

	"kunjungan/internal/models"
	"kunjungan/internal/storage"

	"github.com/gofiber/fiber/v2"
)

const msgFileNotFound = "File tidak ditemukan"

// GetUpload handles GET /uploads/:filename
// Only server-generated names are served; anything else is a 404.
func (s *Server) GetUpload(c *fiber.Ctx) error {
	name := c.Params("filename")
	if !storage.ValidName(name) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(msgFileNotFound))
	}

	path, err := s.store.Path(name)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(msgFileNotFound))
	}
	if _, err := os.Stat(path); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(msgFileNotFound))
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.SendFile(path)
}
