// Package sqlite stores units, seminars and transactions in an embedded
// SQLite database. Dates are kept as YYYY-MM-DD text, amounts as decimal
// text and metadata as a JSON document.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"opsboard/internal/calendar"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn is shared by the repositories. Inside Transaction, q is the *sql.Tx
// and nested calls join it.
type conn struct {
	db *sql.DB
	q  querier
	tx bool
}

func newConn(db *sql.DB) conn {
	return conn{db: db, q: db}
}

func (c conn) inTx(ctx context.Context, fn func(conn) error) error {
	if c.tx {
		return fn(c)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(conn{db: c.db, q: tx, tx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func formatDate(t time.Time) string {
	return calendar.Civil(t).Format(calendar.DateLayout)
}

func parseDate(value string) (time.Time, error) {
	if len(value) > len(calendar.DateLayout) {
		value = value[:len(calendar.DateLayout)]
	}
	return time.Parse(calendar.DateLayout, value)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func encodeMetadata(metadata map[string]string) (sql.NullString, error) {
	if len(metadata) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeMetadata(value sql.NullString) (map[string]string, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(value.String), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
