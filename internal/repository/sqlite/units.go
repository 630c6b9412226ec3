package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	unitsdomain "opsboard/internal/domain/units"
)

type UnitsRepository struct {
	conn
}

func NewUnits(db *sql.DB) *UnitsRepository {
	return &UnitsRepository{conn: newConn(db)}
}

func (r *UnitsRepository) Transaction(ctx context.Context, fn func(unitsdomain.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(&UnitsRepository{conn: c})
	})
}

func (r *UnitsRepository) ListUnitsByUser(ctx context.Context, userID string) ([]unitsdomain.Membership, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT u.id, u.name, u.code, u.owner_id, u.created_at, u.updated_at, m.role
		FROM units u JOIN unit_members m ON m.unit_id = u.id
		WHERE m.user_id = ?
		ORDER BY u.name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]unitsdomain.Membership, 0)
	for rows.Next() {
		var (
			membership unitsdomain.Membership
			createdAt  string
			updatedAt  string
		)
		unit := &membership.Unit
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.Code, &unit.OwnerID, &createdAt, &updatedAt, &membership.Role); err != nil {
			return nil, err
		}
		unit.CreatedAt = parseTimestamp(createdAt)
		unit.UpdatedAt = parseTimestamp(updatedAt)
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}

func (r *UnitsRepository) GetUnitByID(ctx context.Context, unitID string) (*unitsdomain.Unit, error) {
	unit, err := r.getUnit(ctx, "id = ?", unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, unitsdomain.ErrUnitNotFound
	}
	return unit, err
}

func (r *UnitsRepository) GetUnitByCode(ctx context.Context, code string) (*unitsdomain.Unit, error) {
	unit, err := r.getUnit(ctx, "code = ?", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, unitsdomain.ErrUnitCodeNotFound
	}
	return unit, err
}

func (r *UnitsRepository) getUnit(ctx context.Context, condition string, arg any) (*unitsdomain.Unit, error) {
	var (
		unit      unitsdomain.Unit
		createdAt string
		updatedAt string
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT id, name, code, owner_id, created_at, updated_at FROM units WHERE "+condition,
		arg,
	).Scan(&unit.ID, &unit.Name, &unit.Code, &unit.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	unit.CreatedAt = parseTimestamp(createdAt)
	unit.UpdatedAt = parseTimestamp(updatedAt)
	return &unit, nil
}

func (r *UnitsRepository) GetMember(ctx context.Context, unitID, userID string) (*unitsdomain.UnitMember, error) {
	var (
		member   unitsdomain.UnitMember
		joinedAt string
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT unit_id, user_id, role, joined_at FROM unit_members WHERE unit_id = ? AND user_id = ?",
		unitID, userID,
	).Scan(&member.UnitID, &member.UserID, &member.Role, &joinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	member.JoinedAt = parseTimestamp(joinedAt)
	return &member, nil
}

func (r *UnitsRepository) ListMembers(ctx context.Context, unitID string) ([]unitsdomain.UnitMember, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT unit_id, user_id, role, joined_at FROM unit_members WHERE unit_id = ? ORDER BY joined_at ASC",
		unitID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]unitsdomain.UnitMember, 0)
	for rows.Next() {
		var (
			member   unitsdomain.UnitMember
			joinedAt string
		)
		if err := rows.Scan(&member.UnitID, &member.UserID, &member.Role, &joinedAt); err != nil {
			return nil, err
		}
		member.JoinedAt = parseTimestamp(joinedAt)
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *UnitsRepository) CreateUnit(ctx context.Context, unit *unitsdomain.Unit) error {
	now := time.Now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	if unit.UpdatedAt.IsZero() {
		unit.UpdatedAt = now
	}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO units (id, name, code, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		unit.ID, unit.Name, unit.Code, unit.OwnerID, formatTimestamp(unit.CreatedAt), formatTimestamp(unit.UpdatedAt),
	)
	return err
}

func (r *UnitsRepository) AddMember(ctx context.Context, member *unitsdomain.UnitMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO unit_members (unit_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		member.UnitID, member.UserID, member.Role, formatTimestamp(member.JoinedAt),
	)
	return err
}

func (r *UnitsRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM units WHERE code = ?", code).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
