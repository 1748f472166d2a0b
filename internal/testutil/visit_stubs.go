// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"kunjungan/internal/models"
	"kunjungan/internal/repository"
)

// VisitRepoStub is an in-memory visit repository implementation for tests.
type VisitRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.VisitRequest
	nextID uint

	// CreateErr, when set, is returned by Create without storing anything.
	CreateErr error
	Now       func() time.Time
}

// NewVisitRepoStub creates an in-memory visit repository stub for tests.
func NewVisitRepoStub() *VisitRepoStub {
	return &VisitRepoStub{items: make(map[uint]*models.VisitRequest), nextID: 1, Now: time.Now}
}

var _ repository.VisitRepository = (*VisitRepoStub)(nil)

// Create stores a copy of visit with a fresh id and pending status.
func (s *VisitRepoStub) Create(_ context.Context, visit *models.VisitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}

	now := s.Now()
	visit.ID = s.nextID
	s.nextID++
	visit.Status = models.VisitStatusPending
	visit.RejectionReason = nil
	visit.CreatedAt = now
	visit.UpdatedAt = now

	cp := *visit
	s.items[visit.ID] = &cp
	return nil
}

// Put stores visit as-is, keeping its id.
func (s *VisitRepoStub) Put(visit models.VisitRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visit.ID == 0 {
		visit.ID = s.nextID
	}
	if visit.ID >= s.nextID {
		s.nextID = visit.ID + 1
	}
	s.items[visit.ID] = &visit
}

// List returns stored visits newest first.
func (s *VisitRepoStub) List(_ context.Context) ([]models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.VisitRequest, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID returns a copy of the stored visit.
func (s *VisitRepoStub) GetByID(_ context.Context, id uint) (*models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError(models.MsgVisitNotFound)
	}
	cp := *v
	return &cp, nil
}

// UpdateStatus applies change and reports the prior status.
func (s *VisitRepoStub) UpdateStatus(_ context.Context, id uint, change models.StatusChange) (*repository.StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError(models.MsgVisitNotFound)
	}
	prev := v.Status
	v.Status = change.Status
	v.RejectionReason = nil
	if change.Status == models.VisitStatusRejected {
		reason := change.RejectionReason
		v.RejectionReason = &reason
	}
	v.UpdatedAt = s.Now()

	cp := *v
	return &repository.StatusUpdate{PreviousStatus: prev, Visit: &cp}, nil
}

// Delete removes and returns the stored visit.
func (s *VisitRepoStub) Delete(_ context.Context, id uint) (*models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError(models.MsgVisitNotFound)
	}
	delete(s.items, id)
	return v, nil
}

// ListApprovedByMonth filters approved visits in the month, earliest first.
func (s *VisitRepoStub) ListApprovedByMonth(_ context.Context, year int, month time.Month) ([]models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.VisitRequest
	for _, v := range s.items {
		if v.Status != models.VisitStatusApproved {
			continue
		}
		if v.ScheduledDate.Year() == year && v.ScheduledDate.Month() == month {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate.Equal(out[j].ScheduledDate.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledDate.Before(out[j].ScheduledDate.Time)
	})
	return out, nil
}

// AvailablePeriods groups approved visits by year and month, newest first.
func (s *VisitRepoStub) AvailablePeriods(_ context.Context) ([]models.PeriodSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[[2]int]int64)
	for _, v := range s.items {
		if v.Status != models.VisitStatusApproved {
			continue
		}
		counts[[2]int{v.ScheduledDate.Year(), int(v.ScheduledDate.Month())}]++
	}

	out := make([]models.PeriodSummary, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.PeriodSummary{Year: k[0], Month: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}
