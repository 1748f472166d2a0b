package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kunjungan/internal/models"
)

// userRepoStub and noopUserRepo are defined in auth_service_test.go (same package).

func TestUserService_CreateAdmin(t *testing.T) {
	repo := noopUserRepo()
	var saved *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		saved = u
		return nil
	}
	svc := NewUserService(repo)

	user, err := svc.CreateAdmin(context.Background(), " Humas@Example.com ", "Rahasia!2025xx")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "humas@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("Rahasia!2025xx")))

	_, err = svc.CreateAdmin(context.Background(), "humas@example.com", "short")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, err = svc.CreateAdmin(context.Background(), "not an email", "Rahasia!2025xx")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestUserService_ResetPassword(t *testing.T) {
	admin := adminWithPassword(t, "Rahasia!2025xx")
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if strings.EqualFold(email, admin.Email) {
			return admin, nil
		}
		return nil, nil
	}
	var updatedID uint
	repo.updatePasswordFn = func(_ context.Context, id uint, _ string) error {
		updatedID = id
		return nil
	}
	svc := NewUserService(repo)

	require.NoError(t, svc.ResetPassword(context.Background(), admin.Email, "BaruLagi#2026yy"))
	assert.Equal(t, admin.ID, updatedID)

	err := svc.ResetPassword(context.Background(), "ghost@example.com", "BaruLagi#2026yy")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
