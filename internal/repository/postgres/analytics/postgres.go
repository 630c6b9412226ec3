package analytics

import (
	"context"
	"time"

	analyticsdomain "opsboard/internal/domain/analytics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListTransactions returns the unit's ledger in the engine's shape. The amount
// is the AED-normalized column, and only the seminar link is read out of the
// metadata document.
func (r *PostgresRepository) ListTransactions(ctx context.Context, unitID string) ([]analyticsdomain.Transaction, error) {
	type transactionRow struct {
		Date      time.Time       `gorm:"column:date"`
		Type      string          `gorm:"column:type"`
		AmountAED decimal.Decimal `gorm:"column:amount_aed"`
		Category  string          `gorm:"column:category"`
		SeminarID *string         `gorm:"column:seminar_id"`
	}

	query := "SELECT t.date, t.type, t.amount_aed, t.category, t.metadata->>'seminar_id' AS seminar_id " +
		"FROM transactions t WHERE t.unit_id = ? ORDER BY t.date ASC, t.created_at ASC"

	var rows []transactionRow
	if err := r.db.WithContext(ctx).Raw(query, unitID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]analyticsdomain.Transaction, 0, len(rows))
	for _, row := range rows {
		item := analyticsdomain.Transaction{
			Date:     row.Date,
			Type:     analyticsdomain.TransactionType(row.Type),
			Amount:   row.AmountAED,
			Category: row.Category,
		}
		if row.SeminarID != nil && *row.SeminarID != "" {
			item.Metadata = map[string]string{analyticsdomain.MetadataSeminarKey: *row.SeminarID}
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *PostgresRepository) ListSeminarNames(ctx context.Context, unitID string) ([]analyticsdomain.NameRef, error) {
	var rows []analyticsdomain.NameRef
	if err := r.db.WithContext(ctx).
		Raw("SELECT s.id::text AS id, s.name AS name FROM seminars s WHERE s.unit_id = ?", unitID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
