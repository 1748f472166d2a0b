// Package bootstrap wires the process-wide runtime: database, Redis and the
// initial admin account.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kunjungan/internal/cache"
	"kunjungan/internal/config"
	"kunjungan/internal/database"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"
	"kunjungan/internal/seed"
	"kunjungan/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// DemoVisits seeds that many demo visit requests into an empty table
	// when running in development.
	DemoVisits int
}

// InitRuntime connects to DB and Redis, ensures the bootstrap admin and
// optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	if opts.DemoVisits > 0 && strings.EqualFold(cfg.Env, "development") {
		if err := seedDemoVisits(db, opts.DemoVisits); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo visits: %w", err)
		}
	}

	return db, r, nil
}

// EnsureAdmin creates the ADMIN_EMAIL account when ADMIN_BOOTSTRAP is set.
// An existing account keeps its password and is promoted to admin.
func EnsureAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !cfg.AdminBootstrap {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.AdminEmail))
	if email == "" {
		return fmt.Errorf("ADMIN_EMAIL must be set when ADMIN_BOOTSTRAP is enabled")
	}
	if err := validation.ValidatePassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}

	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = models.User{Email: email, Password: string(hashed), Role: models.RoleAdmin}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			created = true
			return nil
		case findErr != nil:
			return findErr
		case admin.Role != models.RoleAdmin:
			return tx.Model(&admin).Update("role", models.RoleAdmin).Error
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("admin bootstrap ensured", slog.String("email", email), slog.Bool("created", created))
	return nil
}

func seedDemoVisits(db *gorm.DB, n int) error {
	var count int64
	if err := db.Model(&models.VisitRequest{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := seed.Seed(db, seed.Options{NumVisits: n})
	return err
}
