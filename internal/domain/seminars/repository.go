package seminars

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListSeminars(ctx context.Context, unitID string) ([]Seminar, error)
	GetSeminarByID(ctx context.Context, unitID, seminarID string) (*Seminar, error)
	// NameExists reports whether another seminar of the unit carries the name,
	// compared case-insensitively. excludeID is skipped when non-empty.
	NameExists(ctx context.Context, unitID, name, excludeID string) (bool, error)
	CreateSeminar(ctx context.Context, seminar *Seminar) error
	UpdateSeminar(ctx context.Context, seminar *Seminar) error
	DeleteSeminar(ctx context.Context, unitID, seminarID string) (bool, error)
}
