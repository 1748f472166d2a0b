package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"kunjungan/internal/config"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"

	"gorm.io/gorm"
)

// Schema modes accepted in DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// PersistentModels lists the gorm models owned by the schema.
func PersistentModels() []any {
	return []any{&models.User{}, &models.VisitRequest{}}
}

var prodLikeEnvs = []string{"production", "prod", "staging", "stage"}

// SchemaPlan is what ApplySchema will run for a given config.
type SchemaPlan struct {
	Mode        string
	Environment string
	SQL         bool
	AutoMigrate bool
	// Destructive is set when AutoMigrate was explicitly allowed in a
	// production-like environment.
	Destructive bool
}

// PlanSchema resolves DB_SCHEMA_MODE against the environment. AutoMigrate
// never runs in production-like environments unless explicitly allowed.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{
		Mode:        strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)),
		Environment: cfg.Env,
	}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	prod := slices.Contains(prodLikeEnvs, strings.ToLower(strings.TrimSpace(cfg.Env)))

	switch plan.Mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeHybrid:
		plan.SQL, plan.AutoMigrate = true, !prod
	case SchemaModeAuto:
		if prod && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.AutoMigrate = true
		plan.Destructive = prod
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// ApplySchema runs the embedded SQL migrations and/or AutoMigrate as planned.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if !plan.AutoMigrate {
		return nil
	}
	if plan.Destructive {
		middleware.Logger.Warn("AutoMigrate enabled in a production-like environment",
			slog.String("env", plan.Environment))
	}
	middleware.Logger.Info("running AutoMigrate", slog.String("mode", plan.Mode), slog.String("env", plan.Environment))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// SchemaStatus is the plan plus, when SQL migrations are in play, the
// applied and pending versions.
type SchemaStatus struct {
	SchemaPlan
	AppliedVersions   []int
	PendingMigrations []Migration
}

// GetSchemaStatus reports what ApplySchema would do without doing it.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan}
	if !plan.SQL {
		return status, nil
	}

	m := NewMigrator(db, GetMigrations())
	if status.AppliedVersions, err = m.Applied(ctx); err != nil {
		return nil, err
	}
	if status.PendingMigrations, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
