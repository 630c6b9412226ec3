package transactions

import (
	"context"
	"errors"

	transactionsdomain "opsboard/internal/domain/transactions"

	"gorm.io/gorm"
)

const defaultListLimit = 100

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(transactionsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, unitID string, filter transactionsdomain.ListFilter) ([]transactionsdomain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&transactionsdomain.Transaction{}).Where("unit_id = ?", unitID)
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SeminarID != "" {
		query = query.Where("metadata->>'seminar_id' = ?", filter.SeminarID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var items []transactionsdomain.Transaction
	if err := query.
		Order("date desc").
		Order("created_at desc").
		Limit(limit).
		Offset(filter.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) GetTransactionByID(ctx context.Context, unitID, transactionID string) (*transactionsdomain.Transaction, error) {
	var transaction transactionsdomain.Transaction
	if err := r.db.WithContext(ctx).Where("id = ? AND unit_id = ?", transactionID, unitID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transactionsdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&transactionsdomain.Transaction{}).
		Where("id = ? AND unit_id = ?", transaction.ID, transaction.UnitID).
		Select("date", "type", "amount", "currency", "amount_aed", "category", "description", "metadata", "updated_at").
		Updates(transaction)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return transactionsdomain.ErrTransactionNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, unitID, transactionID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&transactionsdomain.Transaction{}, "id = ? AND unit_id = ?", transactionID, unitID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) SeminarExists(ctx context.Context, unitID, seminarID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("seminars").Where("id = ? AND unit_id = ?", seminarID, unitID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
