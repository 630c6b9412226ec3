package inmemory

import (
	"context"
	"sort"
	"strings"
	"time"

	seminarsdomain "opsboard/internal/domain/seminars"
)

type SeminarsRepository struct {
	lockable
}

func (r *SeminarsRepository) Transaction(ctx context.Context, fn func(seminarsdomain.Repository) error) error {
	return r.inTx(func(l lockable) error {
		return fn(&SeminarsRepository{lockable: l})
	})
}

func (r *SeminarsRepository) ListSeminars(ctx context.Context, unitID string) ([]seminarsdomain.Seminar, error) {
	defer r.rlock()()

	items := make([]seminarsdomain.Seminar, 0)
	for _, seminar := range r.store.seminars {
		if seminar.UnitID == unitID {
			items = append(items, seminar)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].StartsOn, items[j].StartsOn
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *SeminarsRepository) GetSeminarByID(ctx context.Context, unitID, seminarID string) (*seminarsdomain.Seminar, error) {
	defer r.rlock()()

	seminar, ok := r.store.seminars[seminarID]
	if !ok || seminar.UnitID != unitID {
		return nil, seminarsdomain.ErrSeminarNotFound
	}
	return &seminar, nil
}

func (r *SeminarsRepository) NameExists(ctx context.Context, unitID, name, excludeID string) (bool, error) {
	defer r.rlock()()

	for _, seminar := range r.store.seminars {
		if seminar.UnitID != unitID || seminar.ID == excludeID {
			continue
		}
		if strings.EqualFold(seminar.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *SeminarsRepository) CreateSeminar(ctx context.Context, seminar *seminarsdomain.Seminar) error {
	defer r.lock()()

	now := time.Now().UTC()
	if seminar.CreatedAt.IsZero() {
		seminar.CreatedAt = now
	}
	if seminar.UpdatedAt.IsZero() {
		seminar.UpdatedAt = now
	}
	r.store.seminars[seminar.ID] = *seminar
	return nil
}

func (r *SeminarsRepository) UpdateSeminar(ctx context.Context, seminar *seminarsdomain.Seminar) error {
	defer r.lock()()

	existing, ok := r.store.seminars[seminar.ID]
	if !ok || existing.UnitID != seminar.UnitID {
		return seminarsdomain.ErrSeminarNotFound
	}
	r.store.seminars[seminar.ID] = *seminar
	return nil
}

func (r *SeminarsRepository) DeleteSeminar(ctx context.Context, unitID, seminarID string) (bool, error) {
	defer r.lock()()

	seminar, ok := r.store.seminars[seminarID]
	if !ok || seminar.UnitID != unitID {
		return false, nil
	}
	delete(r.store.seminars, seminarID)
	return true, nil
}
