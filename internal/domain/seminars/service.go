package seminars

import (
	"context"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxNameLength     = 120
	maxLocationLength = 200
)

// ChangeHook is called with the unit id after a successful write.
type ChangeHook func(unitID string)

type Service struct {
	repo   Repository
	policy *bluemonday.Policy
	hooks  []ChangeHook
}

func NewService(repo Repository, hooks ...ChangeHook) *Service {
	return &Service{
		repo:   repo,
		policy: bluemonday.StrictPolicy(),
		hooks:  hooks,
	}
}

func (s *Service) List(ctx context.Context, unitID string) ([]Seminar, error) {
	items, err := s.repo.ListSeminars(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Seminar{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, unitID, seminarID string) (*Seminar, error) {
	return s.repo.GetSeminarByID(ctx, unitID, seminarID)
}

// NameLookup maps seminar ids of the unit to their display names.
func (s *Service) NameLookup(ctx context.Context, unitID string) (map[string]string, error) {
	items, err := s.repo.ListSeminars(ctx, unitID)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]string, len(items))
	for _, item := range items {
		lookup[item.ID] = item.Name
	}
	return lookup, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Seminar, error) {
	name, location, err := s.normalize(input.Name, input.Location)
	if err != nil {
		return nil, err
	}

	seminar := Seminar{
		ID:       uuid.NewString(),
		UnitID:   input.UnitID,
		Name:     name,
		StartsOn: civilDate(input.StartsOn),
		Location: location,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.NameExists(ctx, input.UnitID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}
		return tx.CreateSeminar(ctx, &seminar)
	})
	if err != nil {
		return nil, err
	}

	s.notify(input.UnitID)
	return &seminar, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Seminar, error) {
	name, location, err := s.normalize(input.Name, input.Location)
	if err != nil {
		return nil, err
	}

	var updated Seminar
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		seminar, err := tx.GetSeminarByID(ctx, input.UnitID, input.ID)
		if err != nil {
			return err
		}

		taken, err := tx.NameExists(ctx, input.UnitID, name, seminar.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}

		seminar.Name = name
		seminar.Location = location
		seminar.StartsOn = civilDate(input.StartsOn)
		seminar.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateSeminar(ctx, seminar); err != nil {
			return err
		}

		updated = *seminar
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(input.UnitID)
	return &updated, nil
}

// Delete removes the seminar. Transactions keep their link; reports fall back
// to a placeholder name for it.
func (s *Service) Delete(ctx context.Context, unitID, seminarID string) error {
	deleted, err := s.repo.DeleteSeminar(ctx, unitID, seminarID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSeminarNotFound
	}
	s.notify(unitID)
	return nil
}

func (s *Service) normalize(name, location string) (string, string, error) {
	name = s.sanitize(name)
	if name == "" {
		return "", "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", "", ErrNameTooLong
	}
	location = s.sanitize(location)
	if utf8.RuneCountInString(location) > maxLocationLength {
		return "", "", ErrLocationTooLong
	}
	return name, location, nil
}

func (s *Service) sanitize(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func (s *Service) notify(unitID string) {
	for _, hook := range s.hooks {
		hook(unitID)
	}
}

func civilDate(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	day := time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}
