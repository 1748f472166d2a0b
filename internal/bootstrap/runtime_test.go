package bootstrap

import (
	"testing"

	"kunjungan/internal/config"
	"kunjungan/internal/models"
	"kunjungan/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func bootstrapConfig() *config.Config {
	return &config.Config{
		AdminBootstrap: true,
		AdminEmail:     " Admin@DPRD.example ",
		AdminPassword:  "Rahasia!2025xx",
	}
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := bootstrapConfig()

	require.NoError(t, EnsureAdmin(cfg, db))
	require.NoError(t, EnsureAdmin(cfg, db))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@dprd.example", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte(cfg.AdminPassword)))
}

func TestEnsureAdmin_KeepsExistingPasswordAndPromotes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	existing := models.User{Email: "admin@dprd.example", Password: "old-hash", Role: "viewer"}
	require.NoError(t, db.Create(&existing).Error)

	require.NoError(t, EnsureAdmin(bootstrapConfig(), db))

	var got models.User
	require.NoError(t, db.First(&got, existing.ID).Error)
	assert.Equal(t, "old-hash", got.Password)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := bootstrapConfig()
	cfg.AdminBootstrap = false

	require.NoError(t, EnsureAdmin(cfg, db))
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEnsureAdmin_RejectsBadSettings(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	weak := bootstrapConfig()
	weak.AdminPassword = "short"
	assert.Error(t, EnsureAdmin(weak, db))

	noEmail := bootstrapConfig()
	noEmail.AdminEmail = "  "
	assert.Error(t, EnsureAdmin(noEmail, db))
}

func TestSeedDemoVisits_OnlyIntoEmptyTable(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, seedDemoVisits(db, 4))
	require.NoError(t, seedDemoVisits(db, 4))

	var n int64
	require.NoError(t, db.Model(&models.VisitRequest{}).Count(&n).Error)
	assert.Equal(t, int64(4), n)
}
