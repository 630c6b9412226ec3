package user

import "context"

type Repository interface {
	// UpsertProfile inserts the profile or refreshes the non-nil fields of an
	// existing one.
	UpsertProfile(ctx context.Context, profile *Profile) error
	ListProfiles(ctx context.Context, userIDs []string) ([]Profile, error)
}
