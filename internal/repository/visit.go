package repository

import (
	"context"
	"time"

	"kunjungan/internal/models"
	"kunjungan/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const visitTable = "kunjungan"

// StatusUpdate is the outcome of an atomic status change.
type StatusUpdate struct {
	PreviousStatus models.VisitStatus
	Visit          *models.VisitRequest
}

// Changed reports whether the stored status value actually moved.
func (u *StatusUpdate) Changed() bool {
	return u.Visit != nil && u.PreviousStatus != u.Visit.Status
}

// VisitRepository is the visit record store.
type VisitRepository interface {
	Create(ctx context.Context, visit *models.VisitRequest) error
	List(ctx context.Context) ([]models.VisitRequest, error)
	GetByID(ctx context.Context, id uint) (*models.VisitRequest, error)
	UpdateStatus(ctx context.Context, id uint, change models.StatusChange) (*StatusUpdate, error)
	// Delete removes the row and returns it so the caller can clean up its file.
	Delete(ctx context.Context, id uint) (*models.VisitRequest, error)
	ListApprovedByMonth(ctx context.Context, year int, month time.Month) ([]models.VisitRequest, error)
	AvailablePeriods(ctx context.Context) ([]models.PeriodSummary, error)
}

type visitRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
	now     func() time.Time
}

// NewVisitRepository returns a gorm-backed VisitRepository.
func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{
		db:      db,
		log:     observability.NewRepoLogger(visitTable),
		metrics: observability.NewDatabaseMetrics(visitTable),
		now:     time.Now,
	}
}

func (r *visitRepository) Create(ctx context.Context, visit *models.VisitRequest) error {
	ctx, span := observability.StartRepoSpan(ctx, visitTable, "Create")
	defer span.End()
	defer r.metrics.TrackQuery("create")()

	visit.Status = models.VisitStatusPending
	visit.RejectionReason = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(visit).Error
	})
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		r.log.LogError(ctx, err, "create")
		return mapDBError(err, models.MsgVisitNotFound)
	}

	span.SetAttributes(attribute.Int64("visit.id", int64(visit.ID)))
	r.log.LogCreate(ctx, map[string]interface{}{
		"id":         visit.ID,
		"has_letter": visit.HasCoverLetter(),
	})
	return nil
}

func (r *visitRepository) List(ctx context.Context) ([]models.VisitRequest, error) {
	defer r.metrics.TrackQuery("list")()

	var visits []models.VisitRequest
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&visits).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	r.log.LogRead(ctx, map[string]interface{}{"count": len(visits)})
	return visits, nil
}

func (r *visitRepository) GetByID(ctx context.Context, id uint) (*models.VisitRequest, error) {
	defer r.metrics.TrackQuery("get_by_id")()

	var visit models.VisitRequest
	if err := r.db.WithContext(ctx).First(&visit, id).Error; err != nil {
		return nil, mapDBError(err, models.MsgVisitNotFound)
	}
	return &visit, nil
}

// UpdateStatus reads the prior status and writes the new one in a single
// transaction. The reason is stored only for rejections.
func (r *visitRepository) UpdateStatus(ctx context.Context, id uint, change models.StatusChange) (*StatusUpdate, error) {
	ctx, span := observability.StartRepoSpan(ctx, visitTable, "UpdateStatus")
	defer span.End()
	defer r.metrics.TrackQuery("update_status")()

	var reason interface{}
	if change.Status == models.VisitStatusRejected {
		reason = change.RejectionReason
	}

	var result StatusUpdate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.VisitRequest
		q := tx
		if r.db.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&current, id).Error; err != nil {
			return err
		}
		result.PreviousStatus = current.Status

		if err := tx.Model(&models.VisitRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":           change.Status,
			"rejection_reason": reason,
			"updated_at":       r.now(),
		}).Error; err != nil {
			return err
		}

		var updated models.VisitRequest
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}
		result.Visit = &updated
		return nil
	})
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, mapDBError(err, models.MsgVisitNotFound)
	}

	span.SetAttributes(
		attribute.String("visit.status.from", string(result.PreviousStatus)),
		attribute.String("visit.status.to", string(result.Visit.Status)),
	)
	r.log.LogUpdate(ctx, map[string]interface{}{
		"id":   id,
		"from": result.PreviousStatus,
		"to":   result.Visit.Status,
	})
	return &result, nil
}

func (r *visitRepository) Delete(ctx context.Context, id uint) (*models.VisitRequest, error) {
	defer r.metrics.TrackQuery("delete")()

	var deleted models.VisitRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.VisitRequest{}, id).Error
	})
	if err != nil {
		return nil, mapDBError(err, models.MsgVisitNotFound)
	}

	r.log.LogDelete(ctx, map[string]interface{}{"id": id, "has_letter": deleted.HasCoverLetter()})
	return &deleted, nil
}

// ListApprovedByMonth returns approved visits scheduled within the calendar
// month, earliest first.
func (r *visitRepository) ListApprovedByMonth(ctx context.Context, year int, month time.Month) ([]models.VisitRequest, error) {
	ctx, span := observability.StartRepoSpan(ctx, visitTable, "ListApprovedByMonth")
	defer span.End()
	defer r.metrics.TrackQuery("list_approved_by_month")()

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var visits []models.VisitRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.VisitStatusApproved).
		Where("jadwal_kunjungan >= ? AND jadwal_kunjungan < ?", models.NewDate(from), models.NewDate(to)).
		Order("jadwal_kunjungan ASC").
		Order("id ASC").
		Find(&visits).Error
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		r.log.LogError(ctx, err, "list_approved_by_month")
		return nil, models.NewInternalError(err)
	}
	span.SetAttributes(attribute.Int("visit.count", len(visits)))
	return visits, nil
}

type periodRow struct {
	Year  int
	Month int
	Count int64
}

// AvailablePeriods groups approved visits by scheduled year and month, newest first.
func (r *visitRepository) AvailablePeriods(ctx context.Context) ([]models.PeriodSummary, error) {
	defer r.metrics.TrackQuery("available_periods")()

	yearExpr := "CAST(strftime('%Y', jadwal_kunjungan) AS INTEGER)"
	monthExpr := "CAST(strftime('%m', jadwal_kunjungan) AS INTEGER)"
	if r.db.Name() == "postgres" {
		yearExpr = "CAST(EXTRACT(YEAR FROM jadwal_kunjungan) AS INTEGER)"
		monthExpr = "CAST(EXTRACT(MONTH FROM jadwal_kunjungan) AS INTEGER)"
	}

	var rows []periodRow
	err := r.db.WithContext(ctx).
		Model(&models.VisitRequest{}).
		Select(yearExpr+" AS year, "+monthExpr+" AS month, COUNT(*) AS count").
		Where("status = ?", models.VisitStatusApproved).
		Group("year, month").
		Order("year DESC, month DESC").
		Scan(&rows).Error
	if err != nil {
		r.log.LogError(ctx, err, "available_periods")
		return nil, models.NewInternalError(err)
	}

	periods := make([]models.PeriodSummary, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, models.PeriodSummary{Year: row.Year, Month: row.Month, Count: row.Count})
	}
	return periods, nil
}
