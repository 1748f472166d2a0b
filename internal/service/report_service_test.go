package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kunjungan/internal/cache"
	"kunjungan/internal/models"
	"kunjungan/internal/testutil"
)

func seedApproved(repo *testutil.VisitRepoStub, dates ...time.Time) {
	for _, d := range dates {
		v := testutil.SampleVisit(d)
		v.Status = models.VisitStatusApproved
		v.UpdatedAt = d.AddDate(0, 0, -3)
		repo.Put(v)
	}
}

func TestReportService_RekapOneRow(t *testing.T) {
	repo := testutil.NewVisitRepoStub()
	seedApproved(repo, time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC))

	pending := testutil.SampleVisit(time.Date(2025, time.October, 22, 0, 0, 0, 0, time.UTC))
	repo.Put(pending)
	other := testutil.SampleVisit(time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC))
	other.Status = models.VisitStatusApproved
	repo.Put(other)

	svc := NewReportService(ReportServiceDeps{Repo: repo, Now: func() time.Time { return fixedNow }})
	rekap, err := svc.Rekap(context.Background(), 2025, time.October)
	require.NoError(t, err)

	assert.Equal(t, "Rekap_Kunjungan_Oktober_2025.pdf", rekap.Filename)
	assert.Equal(t, 1, rekap.Rows)
	assert.Equal(t, 1, rekap.Pages)
	assert.True(t, bytes.HasPrefix(rekap.Content, []byte("%PDF-")))
}

func TestReportService_RekapEmptyMonthIsNotFound(t *testing.T) {
	repo := testutil.NewVisitRepoStub()
	repo.Put(testutil.SampleVisit(time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC)))

	svc := NewReportService(ReportServiceDeps{Repo: repo})
	_, err := svc.Rekap(context.Background(), 2025, time.October)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, MsgReportEmpty, err.Error())
}

func TestReportService_AvailablePeriodsLabelsAndCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	repo := testutil.NewVisitRepoStub()
	seedApproved(repo,
		time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.October, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 3, 0, 0, 0, 0, time.UTC),
	)

	svc := NewReportService(ReportServiceDeps{Repo: repo, Redis: rdb})
	periods, err := svc.AvailablePeriods(context.Background())
	require.NoError(t, err)

	require.Len(t, periods, 2)
	assert.Equal(t, models.PeriodSummary{Year: 2025, Month: 10, Count: 2, Label: "Oktober 2025 (2 kunjungan)"}, periods[0])
	assert.Equal(t, models.PeriodSummary{Year: 2024, Month: 12, Count: 1, Label: "Desember 2024 (1 kunjungan)"}, periods[1])
	assert.True(t, mr.Exists(cache.ReportPeriodsKey))

	// A cached answer is served until invalidated.
	seedApproved(repo, time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC))
	cached, err := svc.AvailablePeriods(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	cache.Invalidate(context.Background(), rdb, cache.ReportPeriodsKey)
	fresh, err := svc.AvailablePeriods(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestReportService_AvailablePeriodsWithoutRedis(t *testing.T) {
	repo := testutil.NewVisitRepoStub()
	svc := NewReportService(ReportServiceDeps{Repo: repo})

	periods, err := svc.AvailablePeriods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, periods)
}
