package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"kunjungan/internal/models"
	"kunjungan/internal/repository"
	"kunjungan/internal/validation"
)

// UserService manages admin accounts.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CreateAdmin adds an admin account after checking the address and password.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, models.NewValidationError(validation.MsgEmail)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Email: email, Password: hash, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces the password of the account with email.
func (s *UserService) ResetPassword(ctx context.Context, email, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("Pengguna tidak ditemukan")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hash)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
