package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"kunjungan/internal/config"
	"kunjungan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, configurePool(db, &config.Config{}))
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "kunjungan"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=kunjungan sslmode=disable TimeZone=UTC", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestPing(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, Close(db))
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		mode        string
		destructive bool
		wantSQL     bool
		wantAuto    bool
		wantErr     bool
	}{
		{"hybrid dev", "development", "", false, true, true, false},
		{"hybrid prod", "production", "hybrid", false, true, false, false},
		{"sql only", "development", "sql", false, true, false, false},
		{"auto dev", "development", "auto", false, false, true, false},
		{"auto prod refused", "production", "auto", false, false, false, true},
		{"auto prod allowed", "production", "auto", true, false, true, false},
		{"unknown mode", "development", "magic", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env, DBSchemaMode: tt.mode, DBAutoMigrateAllowDestructive: tt.destructive}
			plan, err := PlanSchema(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.SQL)
			assert.Equal(t, tt.wantAuto, plan.AutoMigrate)
			assert.Equal(t, tt.destructive, plan.Destructive)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, "000001_create_users", all[0].String())
	assert.Equal(t, "000002_create_kunjungan", all[1].String())
	assert.Contains(t, all[1].UpScript, "CREATE TABLE IF NOT EXISTS kunjungan")
	assert.Contains(t, all[1].DownScript, "DROP TABLE IF EXISTS kunjungan")
	assert.NotNil(t, GetMigrationByVersion(2))
	assert.Nil(t, GetMigrationByVersion(99))
}

func TestPersistentModels(t *testing.T) {
	assert.ElementsMatch(t, []any{&models.User{}, &models.VisitRequest{}}, PersistentModels())
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_b.up.sql":   {Data: []byte("B")},
		"migrations/000002_b.down.sql": {Data: []byte("-B")},
		"migrations/000001_a.up.sql":   {Data: []byte("A")},
		"migrations/000001_a.down.sql": {Data: []byte("-A")},
		"migrations/README.md":         {Data: []byte("ignored")},
		"migrations/bad.up.sql":        {Data: []byte("skipped")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "-B", got[1].DownScript)
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_a.up.sql": {Data: []byte("A")},
	}
	_, err := LoadMigrations(fsys)
	assert.Error(t, err)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 0 }, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 3", 0 }, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 4", 0 }, errors.New("hidden"))
	assert.Empty(t, buf.String())
}

// memDB pins the pool to one connection so every statement sees the same
// in-memory database.
func memDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func testMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "notes", UpScript: "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)", DownScript: "DROP TABLE notes"},
		{Version: 2, Name: "tags", UpScript: "CREATE TABLE tags (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE tags"},
	}
}

func TestMigrator_UpDown(t *testing.T) {
	db := memDB(t)
	ctx := context.Background()
	m := NewMigrator(db, testMigrations())

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	n, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable("notes"))

	n, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasTable("tags"))
	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)

	assert.Error(t, m.Down(ctx, 2), "not applied")
	assert.Error(t, m.Down(ctx, 9), "unknown version")
}

func TestMigrator_FailedMigrationLeavesNoLog(t *testing.T) {
	db := memDB(t)
	ctx := context.Background()

	broken := append(testMigrations()[:1], Migration{Version: 2, Name: "broken", UpScript: "CREATE TABLE", DownScript: ""})
	m := NewMigrator(db, broken)

	n, err := m.Up(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, n)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	_, err = NewMigrator(db, nil).Pending(ctx)
	assert.Error(t, err, "database knows versions this build does not")
}
