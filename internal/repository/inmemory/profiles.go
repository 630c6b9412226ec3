package inmemory

import (
	"context"
	"time"

	userdomain "opsboard/internal/domain/user"
)

type ProfilesRepository struct {
	lockable
}

func (r *ProfilesRepository) UpsertProfile(ctx context.Context, profile *userdomain.Profile) error {
	defer r.lock()()

	now := time.Now().UTC()
	existing, ok := r.store.profiles[profile.UserID]
	if !ok {
		existing = userdomain.Profile{UserID: profile.UserID, CreatedAt: now}
	}
	if profile.Email != nil {
		email := *profile.Email
		existing.Email = &email
	}
	if profile.Name != nil {
		name := *profile.Name
		existing.Name = &name
	}
	existing.UpdatedAt = now
	r.store.profiles[profile.UserID] = existing
	return nil
}

func (r *ProfilesRepository) ListProfiles(ctx context.Context, userIDs []string) ([]userdomain.Profile, error) {
	defer r.rlock()()

	profiles := make([]userdomain.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if profile, ok := r.store.profiles[id]; ok {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}
