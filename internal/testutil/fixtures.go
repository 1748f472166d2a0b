package testutil

import (
	"testing"
	"time"

	"kunjungan/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TinyPDF returns the bytes of a minimal single-page PDF document.
func TinyPDF(t *testing.T) []byte {
	t.Helper()
	return []byte("%PDF-1.4\n" +
		"1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
		"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
		"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]>>endobj\n" +
		"trailer<</Root 1 0 R>>\n%%EOF\n")
}

// NewSQLiteDB opens an in-memory database migrated with the application models.
// The pool is pinned to one connection so every query sees the same database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.VisitRequest{}))
	return db
}

// NextWeekday returns the first date after from that falls on weekday.
func NextWeekday(from time.Time, weekday time.Weekday) time.Time {
	d := from.AddDate(0, 0, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// SampleVisit returns a valid pending visit scheduled on date.
func SampleVisit(date time.Time) models.VisitRequest {
	return models.VisitRequest{
		InstitutionName: "SMA 1",
		Purpose:         "Studi banding kurikulum merdeka",
		VisitorCount:    25,
		ScheduledDate:   models.NewDate(date),
		Phone:           "081234567890",
		Email:           "a@b.com",
		Status:          models.VisitStatusPending,
	}
}
