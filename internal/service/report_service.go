package service

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"kunjungan/internal/branding"
	"kunjungan/internal/cache"
	"kunjungan/internal/featureflags"
	"kunjungan/internal/locale"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"
	"kunjungan/internal/observability"
	"kunjungan/internal/report"
	"kunjungan/internal/repository"
)

// MsgReportEmpty is returned when a month has no approved visits.
const MsgReportEmpty = "Tidak ada data kunjungan yang disetujui pada bulan tersebut"

// Rekap is a rendered monthly recap.
type Rekap struct {
	Filename string
	Content  []byte
	Rows     int
	Pages    int
}

// ReportServiceDeps are the collaborators of ReportService.
type ReportServiceDeps struct {
	Repo     repository.VisitRepository
	Redis    *redis.Client
	Profile  *branding.Profile
	Location *time.Location
	Flags    *featureflags.Manager
	Now      func() time.Time
}

// ReportService builds the monthly recap and the period selector.
type ReportService struct {
	repo    repository.VisitRepository
	redis   *redis.Client
	profile *branding.Profile
	loc     *time.Location
	flags   *featureflags.Manager
	now     func() time.Time
}

func NewReportService(deps ReportServiceDeps) *ReportService {
	s := &ReportService{
		repo:    deps.Repo,
		redis:   deps.Redis,
		profile: deps.Profile,
		loc:     deps.Location,
		flags:   deps.Flags,
		now:     deps.Now,
	}
	if s.profile == nil {
		s.profile = branding.Default()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Rekap renders the approved visits of one month. It returns a not-found
// error instead of an empty document.
func (s *ReportService) Rekap(ctx context.Context, year int, month time.Month) (*Rekap, error) {
	span, ctx := observability.NewSpan(ctx, "report.rekap")
	defer span.End()
	span.AddAttributes(
		attribute.Int("report.year", year),
		attribute.Int("report.month", int(month)),
	)

	visits, err := s.repo.ListApprovedByMonth(ctx, year, month)
	if err != nil {
		span.SetError(err)
		observability.ReportsGenerated.WithLabelValues(observability.ResultFailure).Inc()
		return nil, err
	}
	if len(visits) == 0 {
		observability.ReportsGenerated.WithLabelValues(observability.ResultEmpty).Inc()
		return nil, models.NewNotFoundError(MsgReportEmpty)
	}

	var buf bytes.Buffer
	stats, err := report.Render(&buf, year, month, visits, report.Options{
		Profile:      s.profile,
		Location:     s.loc,
		Now:          s.now(),
		RepeatHeader: s.flags.Enabled(featureflags.ReportRepeatHeader),
	})
	if err != nil {
		span.SetError(err)
		observability.ReportsGenerated.WithLabelValues(observability.ResultFailure).Inc()
		middleware.Logger.ErrorContext(ctx, "Failed to render recap",
			slog.Int("year", year),
			slog.Int("month", int(month)),
			slog.String("error", err.Error()),
		)
		return nil, models.NewInternalError(err)
	}

	span.AddAttributes(
		attribute.Int("report.rows", stats.Rows),
		attribute.Int("report.pages", stats.Pages),
	)
	observability.ReportsGenerated.WithLabelValues(observability.ResultSuccess).Inc()
	return &Rekap{
		Filename: report.Filename(year, month),
		Content:  buf.Bytes(),
		Rows:     stats.Rows,
		Pages:    stats.Pages,
	}, nil
}

// AvailablePeriods lists months with approved visits, newest first, each
// with its display label. Results are cached briefly when Redis is present.
func (s *ReportService) AvailablePeriods(ctx context.Context) ([]models.PeriodSummary, error) {
	return cache.Aside(ctx, s.redis, cache.ReportPeriodsKey, cache.ReportPeriodsTTL,
		func(ctx context.Context) ([]models.PeriodSummary, error) {
			periods, err := s.repo.AvailablePeriods(ctx)
			if err != nil {
				return nil, err
			}
			for i := range periods {
				p := &periods[i]
				p.Label = locale.PeriodLabel(p.Year, time.Month(p.Month), p.Count)
			}
			return periods, nil
		})
}
