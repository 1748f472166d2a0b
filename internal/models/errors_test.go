package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), fiber.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), fiber.StatusForbidden},
		{"conflict", NewConflictError("dup", nil), fiber.StatusConflict},
		{"wrapped validation", fmt.Errorf("ctx: %w", NewValidationError("bad")), fiber.StatusBadRequest},
		{"fiber error", fiber.NewError(fiber.StatusRequestEntityTooLarge, "big"), fiber.StatusRequestEntityTooLarge},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
