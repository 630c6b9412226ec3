package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	analyticsdomain "opsboard/internal/domain/analytics"
)

type AnalyticsRepository struct {
	conn
}

func NewAnalytics(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{conn: newConn(db)}
}

func (r *AnalyticsRepository) ListTransactions(ctx context.Context, unitID string) ([]analyticsdomain.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT date, type, amount_aed, category, json_extract(metadata, '$.seminar_id')
		FROM transactions WHERE unit_id = ?
		ORDER BY date ASC, created_at ASC`,
		unitID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]analyticsdomain.Transaction, 0)
	for rows.Next() {
		var (
			date      string
			kind      string
			amount    decimal.Decimal
			category  string
			seminarID sql.NullString
		)
		if err := rows.Scan(&date, &kind, &amount, &category, &seminarID); err != nil {
			return nil, err
		}
		parsed, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		item := analyticsdomain.Transaction{
			Date:     parsed,
			Type:     analyticsdomain.TransactionType(kind),
			Amount:   amount,
			Category: category,
		}
		if seminarID.Valid && seminarID.String != "" {
			item.Metadata = map[string]string{analyticsdomain.MetadataSeminarKey: seminarID.String}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *AnalyticsRepository) ListSeminarNames(ctx context.Context, unitID string) ([]analyticsdomain.NameRef, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT id, name FROM seminars WHERE unit_id = ?", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]analyticsdomain.NameRef, 0)
	for rows.Next() {
		var ref analyticsdomain.NameRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
