package units

import (
	"context"
	"errors"
	"time"

	unitsdomain "opsboard/internal/domain/units"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(unitsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListUnitsByUser(ctx context.Context, userID string) ([]unitsdomain.Membership, error) {
	type membershipRow struct {
		ID        string    `gorm:"column:id"`
		Name      string    `gorm:"column:name"`
		Code      string    `gorm:"column:code"`
		OwnerID   string    `gorm:"column:owner_id"`
		CreatedAt time.Time `gorm:"column:created_at"`
		UpdatedAt time.Time `gorm:"column:updated_at"`
		Role      string    `gorm:"column:role"`
	}

	var rows []membershipRow
	if err := r.db.WithContext(ctx).
		Table("units").
		Select("units.id, units.name, units.code, units.owner_id, units.created_at, units.updated_at, unit_members.role").
		Joins("join unit_members on unit_members.unit_id = units.id").
		Where("unit_members.user_id = ?", userID).
		Order("units.name asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	memberships := make([]unitsdomain.Membership, 0, len(rows))
	for _, row := range rows {
		memberships = append(memberships, unitsdomain.Membership{
			Unit: unitsdomain.Unit{
				ID:        row.ID,
				Name:      row.Name,
				Code:      row.Code,
				OwnerID:   row.OwnerID,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			Role: row.Role,
		})
	}
	return memberships, nil
}

func (r *PostgresRepository) GetUnitByID(ctx context.Context, unitID string) (*unitsdomain.Unit, error) {
	var unit unitsdomain.Unit
	if err := r.db.WithContext(ctx).Where("id = ?", unitID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unitsdomain.ErrUnitNotFound
		}
		return nil, err
	}
	return &unit, nil
}

func (r *PostgresRepository) GetUnitByCode(ctx context.Context, code string) (*unitsdomain.Unit, error) {
	var unit unitsdomain.Unit
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unitsdomain.ErrUnitCodeNotFound
		}
		return nil, err
	}
	return &unit, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, unitID, userID string) (*unitsdomain.UnitMember, error) {
	var member unitsdomain.UnitMember
	if err := r.db.WithContext(ctx).Where("unit_id = ? AND user_id = ?", unitID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, unitID string) ([]unitsdomain.UnitMember, error) {
	var members []unitsdomain.UnitMember
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) CreateUnit(ctx context.Context, unit *unitsdomain.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *unitsdomain.UnitMember) error {
	return r.db.WithContext(ctx).Omit("Unit").Create(member).Error
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&unitsdomain.Unit{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
