package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"kunjungan/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// Migrator applies a fixed set of migrations and tracks them in migration_logs.
// Each migration runs in its own transaction together with its log row.
type Migrator struct {
	db         *gorm.DB
	registered []Migration
}

// NewMigrator returns a Migrator over registered, which must be version-sorted.
func NewMigrator(db *gorm.DB, registered []Migration) *Migrator {
	return &Migrator{db: db, registered: registered}
}

func (m *Migrator) ensureLogTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}
	return nil
}

// Applied returns the recorded versions in ascending order. A missing log
// table counts as no migrations applied.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	if !m.db.Migrator().HasTable(&MigrationLog{}) {
		return []int{}, nil
	}
	var versions []int
	if err := m.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return versions, nil
}

// Pending returns the registered migrations that have not been applied.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateAppliedVersions(applied, m.registered); err != nil {
		return nil, err
	}
	var pending []Migration
	for _, mig := range m.registered {
		if !slices.Contains(applied, mig.Version) {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureLogTable(ctx); err != nil {
		return 0, err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, mig := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", mig.Version), slog.String("name", mig.Name))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", mig.String(), err)
			}
			if err := tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name}).Error; err != nil {
				return fmt.Errorf("failed to record migration %d: %w", mig.Version, err)
			}
			return nil
		})
		if err != nil {
			return i, err
		}
	}
	return len(pending), nil
}

// Down reverts one applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	idx := slices.IndexFunc(m.registered, func(mig Migration) bool { return mig.Version == version })
	if idx < 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	mig := m.registered[idx]

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", mig.Name))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("failed to run rollback SQL for migration %s: %w", mig.String(), err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	n, err := NewMigrator(db, migrations).Up(ctx)
	if n > 0 {
		middleware.Logger.Info("Migrations applied", slog.Int("count", n))
	}
	return err
}

// RollbackMigration reverts a specific embedded migration by version number.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, migrations).Down(ctx, version)
}

// validateAppliedVersions refuses to run against a database that recorded
// versions this build does not know.
func validateAppliedVersions(applied []int, registered []Migration) error {
	var unknown []string
	for _, version := range applied {
		if !slices.ContainsFunc(registered, func(m Migration) bool { return m.Version == version }) {
			unknown = append(unknown, fmt.Sprintf("%06d", version))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf(
		"migration_logs contains unknown versions not present in code: %s (was the database migrated by a newer build?)",
		strings.Join(unknown, ", "),
	)
}
