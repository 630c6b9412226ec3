package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	userdomain "opsboard/internal/domain/user"
)

type ProfilesRepository struct {
	conn
}

func NewProfiles(db *sql.DB) *ProfilesRepository {
	return &ProfilesRepository{conn: newConn(db)}
}

func (r *ProfilesRepository) UpsertProfile(ctx context.Context, profile *userdomain.Profile) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, email, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			email = COALESCE(excluded.email, user_profiles.email),
			name = COALESCE(excluded.name, user_profiles.name),
			updated_at = excluded.updated_at`,
		profile.UserID, nullString(profile.Email), nullString(profile.Name),
		formatTimestamp(now), formatTimestamp(now),
	)
	return err
}

func (r *ProfilesRepository) ListProfiles(ctx context.Context, userIDs []string) ([]userdomain.Profile, error) {
	if len(userIDs) == 0 {
		return []userdomain.Profile{}, nil
	}

	args := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",")

	rows, err := r.q.QueryContext(ctx,
		"SELECT user_id, email, name, created_at, updated_at FROM user_profiles WHERE user_id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]userdomain.Profile, 0, len(userIDs))
	for rows.Next() {
		var (
			profile              userdomain.Profile
			email, name          sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&profile.UserID, &email, &name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if email.Valid {
			profile.Email = &email.String
		}
		if name.Valid {
			profile.Name = &name.String
		}
		profile.CreatedAt = parseTimestamp(createdAt)
		profile.UpdatedAt = parseTimestamp(updatedAt)
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
