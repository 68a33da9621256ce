package ports

import (
	"context"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// ProfileStore defines the interface for profile persistence.
type ProfileStore interface {
	// GetByAuthUserID returns the profile for the given provider user id.
	// domain.ErrProfileNotFound is the canonical not-found signal.
	GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error)

	// Insert persists a new profile. domain.ErrProfileExists is returned
	// when a profile for the same auth user id already exists (unique
	// constraint), which is how a lost bootstrap race surfaces.
	Insert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)

	// Update replaces the mutable fields of an existing profile.
	Update(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}
