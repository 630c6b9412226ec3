package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	seminarsdomain "opsboard/internal/domain/seminars"
)

const seminarColumns = "id, unit_id, name, starts_on, location, created_at, updated_at"

type SeminarsRepository struct {
	conn
}

func NewSeminars(db *sql.DB) *SeminarsRepository {
	return &SeminarsRepository{conn: newConn(db)}
}

func (r *SeminarsRepository) Transaction(ctx context.Context, fn func(seminarsdomain.Repository) error) error {
	return r.inTx(ctx, func(c conn) error {
		return fn(&SeminarsRepository{conn: c})
	})
}

func (r *SeminarsRepository) ListSeminars(ctx context.Context, unitID string) ([]seminarsdomain.Seminar, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+seminarColumns+" FROM seminars WHERE unit_id = ? ORDER BY starts_on IS NULL, starts_on DESC, name ASC",
		unitID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]seminarsdomain.Seminar, 0)
	for rows.Next() {
		item, err := scanSeminar(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *SeminarsRepository) GetSeminarByID(ctx context.Context, unitID, seminarID string) (*seminarsdomain.Seminar, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+seminarColumns+" FROM seminars WHERE id = ? AND unit_id = ?", seminarID, unitID)
	item, err := scanSeminar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, seminarsdomain.ErrSeminarNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *SeminarsRepository) NameExists(ctx context.Context, unitID, name, excludeID string) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seminars WHERE unit_id = ? AND name = ? COLLATE NOCASE AND id <> ?",
		unitID, name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SeminarsRepository) CreateSeminar(ctx context.Context, seminar *seminarsdomain.Seminar) error {
	now := time.Now().UTC()
	if seminar.CreatedAt.IsZero() {
		seminar.CreatedAt = now
	}
	if seminar.UpdatedAt.IsZero() {
		seminar.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx,
		"INSERT INTO seminars ("+seminarColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		seminar.ID,
		seminar.UnitID,
		seminar.Name,
		nullableDate(seminar.StartsOn),
		seminar.Location,
		formatTimestamp(seminar.CreatedAt),
		formatTimestamp(seminar.UpdatedAt),
	)
	return err
}

func (r *SeminarsRepository) UpdateSeminar(ctx context.Context, seminar *seminarsdomain.Seminar) error {
	if seminar.UpdatedAt.IsZero() {
		seminar.UpdatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		"UPDATE seminars SET name = ?, starts_on = ?, location = ?, updated_at = ? WHERE id = ? AND unit_id = ?",
		seminar.Name,
		nullableDate(seminar.StartsOn),
		seminar.Location,
		formatTimestamp(seminar.UpdatedAt),
		seminar.ID,
		seminar.UnitID,
	)
	return err
}

func (r *SeminarsRepository) DeleteSeminar(ctx context.Context, unitID, seminarID string) (bool, error) {
	result, err := r.q.ExecContext(ctx, "DELETE FROM seminars WHERE id = ? AND unit_id = ?", seminarID, unitID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanSeminar(row rowScanner) (*seminarsdomain.Seminar, error) {
	var (
		item      seminarsdomain.Seminar
		startsOn  sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&item.ID, &item.UnitID, &item.Name, &startsOn, &item.Location, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if startsOn.Valid && startsOn.String != "" {
		parsed, err := parseDate(startsOn.String)
		if err != nil {
			return nil, err
		}
		item.StartsOn = &parsed
	}
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}

func nullableDate(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*value), Valid: true}
}
