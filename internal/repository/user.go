// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"kunjungan/internal/models"
	"kunjungan/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for admin accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByEmail returns (nil, nil) when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db:      db,
		log:     observability.NewRepoLogger("users"),
		metrics: observability.NewDatabaseMetrics("users"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_id")()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapDBError(err, "Pengguna tidak ditemukan")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_email")()

	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.LogError(ctx, err, "get_by_email")
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("create")()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = models.RoleAdmin
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		mapped := mapDBError(err, "Pengguna tidak ditemukan")
		if models.ErrorCode(mapped) == models.CodeConflict {
			return models.NewConflictError("Email sudah terdaftar", err)
		}
		r.log.LogError(ctx, err, "create")
		return mapped
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": user.ID, "role": user.Role})
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	defer r.metrics.TrackQuery("update_password")()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update_password")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Pengguna tidak ditemukan")
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "field": "password"})
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	defer r.metrics.TrackQuery("list")()

	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
