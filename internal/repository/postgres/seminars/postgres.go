package seminars

import (
	"context"
	"errors"

	seminarsdomain "opsboard/internal/domain/seminars"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(seminarsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListSeminars(ctx context.Context, unitID string) ([]seminarsdomain.Seminar, error) {
	var items []seminarsdomain.Seminar
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("starts_on desc nulls last").
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetSeminarByID(ctx context.Context, unitID, seminarID string) (*seminarsdomain.Seminar, error) {
	var seminar seminarsdomain.Seminar
	if err := r.db.WithContext(ctx).Where("id = ? AND unit_id = ?", seminarID, unitID).First(&seminar).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, seminarsdomain.ErrSeminarNotFound
		}
		return nil, err
	}
	return &seminar, nil
}

func (r *PostgresRepository) NameExists(ctx context.Context, unitID, name, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&seminarsdomain.Seminar{}).
		Where("unit_id = ? AND lower(name) = lower(?)", unitID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateSeminar(ctx context.Context, seminar *seminarsdomain.Seminar) error {
	return r.db.WithContext(ctx).Create(seminar).Error
}

func (r *PostgresRepository) UpdateSeminar(ctx context.Context, seminar *seminarsdomain.Seminar) error {
	return r.db.WithContext(ctx).
		Model(&seminarsdomain.Seminar{}).
		Where("id = ? AND unit_id = ?", seminar.ID, seminar.UnitID).
		Select("name", "starts_on", "location", "updated_at").
		Updates(seminar).Error
}

func (r *PostgresRepository) DeleteSeminar(ctx context.Context, unitID, seminarID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&seminarsdomain.Seminar{}, "id = ? AND unit_id = ?", seminarID, unitID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
