package inmemory

import (
	"context"
	"sort"
	"time"

	unitsdomain "opsboard/internal/domain/units"
)

type UnitsRepository struct {
	lockable
}

func (r *UnitsRepository) Transaction(ctx context.Context, fn func(unitsdomain.Repository) error) error {
	return r.inTx(func(l lockable) error {
		return fn(&UnitsRepository{lockable: l})
	})
}

func (r *UnitsRepository) ListUnitsByUser(ctx context.Context, userID string) ([]unitsdomain.Membership, error) {
	defer r.rlock()()

	memberships := make([]unitsdomain.Membership, 0)
	for key, member := range r.store.members {
		if key.userID != userID {
			continue
		}
		if unit, ok := r.store.units[key.unitID]; ok {
			memberships = append(memberships, unitsdomain.Membership{Unit: unit, Role: member.Role})
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].Unit.Name < memberships[j].Unit.Name
	})
	return memberships, nil
}

func (r *UnitsRepository) GetUnitByID(ctx context.Context, unitID string) (*unitsdomain.Unit, error) {
	defer r.rlock()()

	unit, ok := r.store.units[unitID]
	if !ok {
		return nil, unitsdomain.ErrUnitNotFound
	}
	return &unit, nil
}

func (r *UnitsRepository) GetUnitByCode(ctx context.Context, code string) (*unitsdomain.Unit, error) {
	defer r.rlock()()

	for _, unit := range r.store.units {
		if unit.Code == code {
			return &unit, nil
		}
	}
	return nil, unitsdomain.ErrUnitCodeNotFound
}

func (r *UnitsRepository) GetMember(ctx context.Context, unitID, userID string) (*unitsdomain.UnitMember, error) {
	defer r.rlock()()

	member, ok := r.store.members[memberKey{unitID: unitID, userID: userID}]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (r *UnitsRepository) ListMembers(ctx context.Context, unitID string) ([]unitsdomain.UnitMember, error) {
	defer r.rlock()()

	members := make([]unitsdomain.UnitMember, 0)
	for key, member := range r.store.members {
		if key.unitID == unitID {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].UserID < members[j].UserID
	})
	return members, nil
}

func (r *UnitsRepository) CreateUnit(ctx context.Context, unit *unitsdomain.Unit) error {
	defer r.lock()()

	now := time.Now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	if unit.UpdatedAt.IsZero() {
		unit.UpdatedAt = now
	}
	r.store.units[unit.ID] = *unit
	return nil
}

func (r *UnitsRepository) AddMember(ctx context.Context, member *unitsdomain.UnitMember) error {
	defer r.lock()()

	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	r.store.members[memberKey{unitID: member.UnitID, userID: member.UserID}] = *member
	return nil
}

func (r *UnitsRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	defer r.rlock()()

	for _, unit := range r.store.units {
		if unit.Code == code {
			return true, nil
		}
	}
	return false, nil
}
