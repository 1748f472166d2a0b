// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kunjungan/internal/config"
	"kunjungan/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// GormLogger sends gorm's query log through slog. Failed queries log at
// error, queries slower than SlowThreshold at warn, everything else only at
// info level.
type GormLogger struct {
	log           *slog.Logger
	Level         logger.LogLevel
	SlowThreshold time.Duration
}

// NewGormLogger logs warnings and queries slower than 200ms.
func NewGormLogger(l *slog.Logger) *GormLogger {
	return &GormLogger{log: l, Level: logger.Warn, SlowThreshold: 200 * time.Millisecond}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.Level = level
	return &clone
}

func (l *GormLogger) printf(ctx context.Context, at logger.LogLevel, lvl slog.Level, msg string, data []any) {
	if l.Level >= at {
		l.log.Log(ctx, lvl, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, data)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold

	var (
		lvl slog.Level
		msg string
	)
	switch {
	case failed && l.Level >= logger.Error:
		lvl, msg = slog.LevelError, "GORM query error"
	case slow && l.Level >= logger.Warn:
		lvl, msg = slog.LevelWarn, "GORM slow query"
	case l.Level >= logger.Info:
		lvl, msg = slog.LevelInfo, "GORM query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if failed {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log.LogAttrs(ctx, lvl, msg, attrs...)
}

// ConnectOptions controls what Connect does after opening the pool.
type ConnectOptions struct {
	// ApplySchema runs the configured schema policy (SQL migrations and/or AutoMigrate).
	ApplySchema bool
}

// DSN builds the PostgreSQL connection string from cfg.
func DSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)
}

// Connect opens the database and applies the schema policy.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens the pool and, when asked, applies the schema
// policy. The handle is also stored in DB.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: NewGormLogger(middleware.Logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}

	middleware.Logger.Info("database connected",
		slog.String("host", cfg.DBHost),
		slog.String("database", cfg.DBName),
	)

	if opts.ApplySchema {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	DB = db
	return db, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// configurePool applies the pool limits, falling back to 25 open, 5 idle and
// a 5 minute lifetime.
func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}

	maxOpen := positiveOr(cfg.DBMaxOpenConns, 25)
	maxIdle := min(positiveOr(cfg.DBMaxIdleConns, 5), maxOpen)
	lifetime := time.Duration(positiveOr(cfg.DBConnMaxLifetimeMinutes, 5)) * time.Minute

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	return nil
}

// Ping checks that the database answers within the context deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
