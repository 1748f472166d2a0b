// Command migrate runs schema operations against the configured database.
//
//	migrate up            apply pending embedded SQL migrations
//	migrate auto          run gorm AutoMigrate for the persistent models
//	migrate status        print the schema policy and pending versions
//	migrate down <ver>    revert one applied migration
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"kunjungan/internal/config"
	"kunjungan/internal/database"

	"gorm.io/gorm"
)

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up":     migrateUp,
	"auto":   migrateAuto,
	"status": migrateStatus,
	"down":   migrateDown,
}

var errUsage = errors.New("usage: migrate <up|auto|status|down> [version]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	return cmd(context.Background(), db, cfg, args[1:])
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	n, err := database.NewMigrator(db, database.GetMigrations()).Up(ctx)
	if err != nil {
		return fmt.Errorf("sql migrations failed after %d applied: %w", n, err)
	}
	fmt.Printf("%d migration(s) applied\n", n)
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	fmt.Println("automigrations applied")
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "mode\t%s\n", status.Mode)
	_, _ = fmt.Fprintf(w, "env\t%s\n", status.Environment)
	_, _ = fmt.Fprintf(w, "sql migrations\t%t\n", status.SQL)
	_, _ = fmt.Fprintf(w, "auto migrate\t%t\n", status.AutoMigrate)
	_, _ = fmt.Fprintf(w, "applied\t%v\n", status.AppliedVersions)
	for _, m := range status.PendingMigrations {
		_, _ = fmt.Fprintf(w, "pending\t%s\n", m.String())
	}
	return w.Flush()
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	fmt.Printf("rolled back migration %06d\n", version)
	return nil
}
