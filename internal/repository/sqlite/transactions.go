package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	transactionsdomain "opsboard/internal/domain/transactions"
)

const (
	defaultListLimit   = 100
	transactionColumns = "id, unit_id, created_by, date, type, amount, currency, amount_aed, category, description, metadata, created_at, updated_at"
)

type TransactionsRepository struct {
	conn
}

func NewTransactions(db *sql.DB) *TransactionsRepository {
	return &TransactionsRepository{conn: newConn(db)}
}

func (r *TransactionsRepository) Transaction(ctx context.Context, fn func(transactionsdomain.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(&TransactionsRepository{conn: c})
	})
}

func (r *TransactionsRepository) ListTransactions(ctx context.Context, unitID string, filter transactionsdomain.ListFilter) ([]transactionsdomain.Transaction, int64, error) {
	conditions := []string{"unit_id = ?"}
	args := []any{unitID}
	if filter.From != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, formatDate(*filter.To))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.SeminarID != "" {
		conditions = append(conditions, "json_extract(metadata, '$.seminar_id') = ?")
		args = append(args, filter.SeminarID)
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := "SELECT " + transactionColumns + " FROM transactions WHERE " + where +
		" ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?"

	rows, err := r.q.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]transactionsdomain.Transaction, 0)
	for rows.Next() {
		item, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *TransactionsRepository) GetTransactionByID(ctx context.Context, unitID, transactionID string) (*transactionsdomain.Transaction, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND unit_id = ?", transactionID, unitID)
	item, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transactionsdomain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *TransactionsRepository) CreateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	now := time.Now().UTC()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = now
	}
	if transaction.UpdatedAt.IsZero() {
		transaction.UpdatedAt = now
	}

	metadata, err := encodeMetadata(transaction.Metadata)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		transaction.ID,
		transaction.UnitID,
		transaction.CreatedBy,
		formatDate(transaction.Date),
		string(transaction.Type),
		transaction.Amount.StringFixed(2),
		transaction.Currency,
		transaction.AmountAED.StringFixed(2),
		transaction.Category,
		transaction.Description,
		metadata,
		formatTimestamp(transaction.CreatedAt),
		formatTimestamp(transaction.UpdatedAt),
	)
	return err
}

func (r *TransactionsRepository) UpdateTransaction(ctx context.Context, transaction *transactionsdomain.Transaction) error {
	metadata, err := encodeMetadata(transaction.Metadata)
	if err != nil {
		return err
	}
	if transaction.UpdatedAt.IsZero() {
		transaction.UpdatedAt = time.Now().UTC()
	}

	result, err := r.q.ExecContext(ctx,
		`UPDATE transactions
		SET date = ?, type = ?, amount = ?, currency = ?, amount_aed = ?, category = ?, description = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND unit_id = ?`,
		formatDate(transaction.Date),
		string(transaction.Type),
		transaction.Amount.StringFixed(2),
		transaction.Currency,
		transaction.AmountAED.StringFixed(2),
		transaction.Category,
		transaction.Description,
		metadata,
		formatTimestamp(transaction.UpdatedAt),
		transaction.ID,
		transaction.UnitID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return transactionsdomain.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionsRepository) DeleteTransaction(ctx context.Context, unitID, transactionID string) (bool, error) {
	result, err := r.q.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND unit_id = ?", transactionID, unitID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *TransactionsRepository) SeminarExists(ctx context.Context, unitID, seminarID string) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM seminars WHERE id = ? AND unit_id = ?", seminarID, unitID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*transactionsdomain.Transaction, error) {
	var (
		item      transactionsdomain.Transaction
		date      string
		kind      string
		amount    decimal.Decimal
		amountAED decimal.Decimal
		metadata  sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&item.ID,
		&item.UnitID,
		&item.CreatedBy,
		&date,
		&kind,
		&amount,
		&item.Currency,
		&amountAED,
		&item.Category,
		&item.Description,
		&metadata,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	item.Date = parsed
	item.Type = transactionsdomain.Type(kind)
	item.Amount = amount
	item.AmountAED = amountAED
	if item.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}
