package database

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strconv"

	"kunjungan/internal/middleware"
)

// Migration is one versioned SQL change with its rollback.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations []Migration

var upFile = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

func init() {
	if err := RegisterMigrations(migrationFS); err != nil {
		middleware.Logger.Error("failed to register embedded migrations", slog.String("error", err.Error()))
	}
}

func byVersion(a, b Migration) int { return cmp.Compare(a.Version, b.Version) }

// RegisterMigrations adds the migrations found in fsys to the registry.
func RegisterMigrations(fsys fs.ReadFileFS) error {
	loaded, err := LoadMigrations(fsys)
	if err != nil {
		return err
	}
	for _, m := range loaded {
		if GetMigrationByVersion(m.Version) != nil {
			return fmt.Errorf("duplicate migration version %06d", m.Version)
		}
	}
	migrations = append(migrations, loaded...)
	slices.SortFunc(migrations, byVersion)
	return nil
}

// LoadMigrations reads NNNNNN_name.up.sql / .down.sql pairs from the
// migrations directory of fsys. Every up script needs a down script.
func LoadMigrations(fsys fs.ReadFileFS) ([]Migration, error) {
	ups, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var out []Migration
	for _, file := range ups {
		match := upFile.FindStringSubmatch(path.Base(file))
		if match == nil {
			middleware.Logger.Warn("Skipping migration with invalid name", slog.String("file", file))
			continue
		}
		version, _ := strconv.Atoi(match[1])
		if slices.ContainsFunc(out, func(m Migration) bool { return m.Version == version }) {
			return nil, fmt.Errorf("duplicate migration version %06d", version)
		}

		up, err := fsys.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		downFile := path.Join("migrations", match[1]+"_"+match[2]+".down.sql")
		down, err := fsys.ReadFile(downFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", downFile, err)
		}

		out = append(out, Migration{
			Version:    version,
			Name:       match[2],
			UpScript:   string(up),
			DownScript: string(down),
		})
	}
	slices.SortFunc(out, byVersion)
	return out, nil
}

// GetMigrations returns registered migrations in version order.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the migration with the given version, or nil.
func GetMigrationByVersion(version int) *Migration {
	i := slices.IndexFunc(migrations, func(m Migration) bool { return m.Version == version })
	if i < 0 {
		return nil
	}
	return &migrations[i]
}
