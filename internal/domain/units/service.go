package units

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	unitCodeLength   = 6
	unitCodeAttempts = 10
)

type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, cache: cache}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Membership, error) {
	items, err := s.repo.ListUnitsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Membership{}
	}
	return items, nil
}

// RequireMember returns the membership of userID in unitID, or ErrNotMember.
// An unknown unit is reported as ErrNotMember as well, so callers cannot probe
// for unit ids.
func (s *Service) RequireMember(ctx context.Context, userID, unitID string) (*UnitMember, error) {
	if member, ok := s.cache.GetMember(unitID, userID); ok {
		return member, nil
	}

	member, err := s.repo.GetMember(ctx, unitID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}

	s.cache.SetMember(member)
	return member, nil
}

func (s *Service) Get(ctx context.Context, userID, unitID string) (*Unit, error) {
	if _, err := s.RequireMember(ctx, userID, unitID); err != nil {
		return nil, err
	}
	return s.repo.GetUnitByID(ctx, unitID)
}

func (s *Service) Create(ctx context.Context, userID, name string) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var result Unit
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		unit := Unit{
			ID:      uuid.NewString(),
			Name:    name,
			Code:    code,
			OwnerID: userID,
		}
		if err := tx.CreateUnit(ctx, &unit); err != nil {
			return err
		}

		member := UnitMember{
			UnitID: unit.ID,
			UserID: userID,
			Role:   RoleOwner,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) Join(ctx context.Context, userID, code string) (*Unit, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCodeRequired
	}

	var result Unit
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		unit, err := tx.GetUnitByCode(ctx, code)
		if err != nil {
			return err
		}

		existing, err := tx.GetMember(ctx, unit.ID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyMember
		}

		member := UnitMember{
			UnitID: unit.ID,
			UserID: userID,
			Role:   RoleMember,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) ListMembers(ctx context.Context, userID, unitID string) ([]UnitMember, error) {
	if _, err := s.RequireMember(ctx, userID, unitID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, unitID)
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < unitCodeAttempts; i++ {
		code, err := generateCode(unitCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

// generateCode draws from an alphabet without 0/O and 1/I.
func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
