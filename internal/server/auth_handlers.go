package server

import (
	"strings"

	"kunjungan/internal/models"
	"kunjungan/internal/service"
	"kunjungan/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login
// @Summary Admin login
// @Description Authenticate an admin and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{success=bool,message=string,data=object{token=string,user=models.User}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(validation.MsgRequired))
	}

	token, user, err := s.authService.Login(c.UserContext(), email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data": fiber.Map{
			"token": token,
			"user":  user,
		},
	})
}

// GetProfile handles GET /api/auth/profile
// @Summary Current admin
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=object{user=models.User}}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*service.Claims)
	user, err := s.authService.CurrentUser(c.UserContext(), claims)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": user},
	})
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*service.Claims)
	if err := s.authService.Revoke(c.UserContext(), claims); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}
