package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"kunjungan/internal/cache"
	"kunjungan/internal/featureflags"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"
	"kunjungan/internal/observability"
	"kunjungan/internal/repository"
	"kunjungan/internal/storage"
	"kunjungan/internal/validation"
)

var errNoDocumentStore = errors.New("document store not configured")

// Notifier sends visit emails without blocking the caller.
type Notifier interface {
	NotifySubmitted(ctx context.Context, visit *models.VisitRequest)
	NotifyStatusChanged(ctx context.Context, visit *models.VisitRequest)
}

// SubmitVisitInput is one public intake submission.
type SubmitVisitInput struct {
	Form            validation.VisitForm
	CoverLetter     []byte
	CoverLetterType string
}

// VisitServiceDeps are the collaborators of VisitService.
type VisitServiceDeps struct {
	Repo         repository.VisitRepository
	Store        storage.DocumentStore
	Notifier     Notifier
	Validator    *validation.IntakeValidator
	Flags        *featureflags.Manager
	Redis        *redis.Client
	MaxFileBytes int64
}

// VisitService implements intake, review and removal of visit requests.
type VisitService struct {
	repo         repository.VisitRepository
	store        storage.DocumentStore
	notifier     Notifier
	validator    *validation.IntakeValidator
	flags        *featureflags.Manager
	redis        *redis.Client
	maxFileBytes int64
}

func NewVisitService(deps VisitServiceDeps) *VisitService {
	validator := deps.Validator
	if validator == nil {
		validator = validation.NewIntakeValidator(nil, nil)
	}
	return &VisitService{
		repo:         deps.Repo,
		store:        deps.Store,
		notifier:     deps.Notifier,
		validator:    validator,
		flags:        deps.Flags,
		redis:        deps.Redis,
		maxFileBytes: deps.MaxFileBytes,
	}
}

// Submit validates and stores a new pending request. A stored cover letter is
// removed again when the insert fails.
func (s *VisitService) Submit(ctx context.Context, in SubmitVisitInput) (*models.VisitRequest, error) {
	visit, err := s.validator.Validate(in.Form)
	if err != nil {
		observability.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	var stored string
	if len(in.CoverLetter) > 0 {
		if err := validation.ValidateCoverLetter(in.CoverLetter, in.CoverLetterType, s.maxFileBytes); err != nil {
			observability.SubmissionsTotal.WithLabelValues("invalid").Inc()
			return nil, err
		}
		if s.store == nil {
			return nil, models.NewInternalError(errNoDocumentStore)
		}
		stored, err = s.store.Save(ctx, in.CoverLetter)
		if err != nil {
			observability.SubmissionsTotal.WithLabelValues(observability.ResultFailure).Inc()
			return nil, models.NewInternalError(err)
		}
		visit.CoverLetterFile = &stored
	}

	if err := s.repo.Create(ctx, visit); err != nil {
		if stored != "" {
			s.removeDocument(ctx, stored)
		}
		observability.SubmissionsTotal.WithLabelValues(observability.ResultFailure).Inc()
		return nil, err
	}

	observability.SubmissionsTotal.WithLabelValues(observability.ResultSuccess).Inc()
	middleware.Logger.InfoContext(ctx, "Visit request submitted",
		slog.Uint64("visit_id", uint64(visit.ID)),
		slog.Bool("cover_letter", stored != ""),
	)

	if s.notifier != nil && s.flags.EnabledFor(featureflags.SubmissionConfirmation, visit.Email) {
		s.notifier.NotifySubmitted(ctx, visit)
	}
	return visit, nil
}

// List returns every request, newest first.
func (s *VisitService) List(ctx context.Context) ([]models.VisitRequest, error) {
	return s.repo.List(ctx)
}

// Get returns one request.
func (s *VisitService) Get(ctx context.Context, id uint) (*models.VisitRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves a request to status. An actual change sends exactly one
// notification to the visitor; repeating the current status sends none.
func (s *VisitService) UpdateStatus(ctx context.Context, id uint, status, reason string) (*models.VisitRequest, error) {
	change, err := validation.ValidateStatusChange(status, reason)
	if err != nil {
		return nil, err
	}

	update, err := s.repo.UpdateStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}
	visit := update.Visit

	if !update.Changed() {
		return visit, nil
	}

	observability.StatusTransitions.WithLabelValues(string(update.PreviousStatus), string(visit.Status)).Inc()
	cache.Invalidate(ctx, s.redis, cache.ReportPeriodsKey)
	middleware.Logger.InfoContext(ctx, "Visit status changed",
		slog.Uint64("visit_id", uint64(visit.ID)),
		slog.String("from", string(update.PreviousStatus)),
		slog.String("to", string(visit.Status)),
	)

	if s.notifier != nil && strings.TrimSpace(visit.Email) != "" {
		s.notifier.NotifyStatusChanged(ctx, visit)
	}
	return visit, nil
}

// Delete removes a request and its cover letter. A missing or undeletable
// file does not fail the call.
func (s *VisitService) Delete(ctx context.Context, id uint) error {
	visit, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if visit.HasCoverLetter() {
		s.removeDocument(ctx, *visit.CoverLetterFile)
	}
	cache.Invalidate(ctx, s.redis, cache.ReportPeriodsKey)
	middleware.Logger.InfoContext(ctx, "Visit request deleted", slog.Uint64("visit_id", uint64(id)))
	return nil
}

func (s *VisitService) removeDocument(ctx context.Context, name string) {
	if s.store == nil {
		return
	}
	if err := s.store.Remove(ctx, name); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to remove cover letter",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)
	}
}
