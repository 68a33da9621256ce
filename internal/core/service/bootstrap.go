package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// Bootstrapper creates the fallback profile when the server-side sign-up
// trigger has not (or did not) create one.
type Bootstrapper struct {
	store ports.ProfileStore
	log   zerolog.Logger
}

func NewBootstrapper(store ports.ProfileStore, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{store: store, log: log}
}

// DefaultProfile builds the profile a fresh session gets: email from the
// session, full name from metadata or the email local-part, role from
// metadata or standard, onboarding not yet completed.
func DefaultProfile(session *domain.Session) *domain.Profile {
	role := session.MetadataString("role")
	if role == "" {
		role = domain.RoleStandard
	}

	now := time.Now().UTC()
	return &domain.Profile{
		AuthUserID:          session.UserID,
		Email:               session.Email,
		FullName:            session.DisplayName(),
		Role:                role,
		IsActive:            true,
		IsPublic:            false,
		OnboardingCompleted: false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Create persists the default profile for the session. An insert conflict
// means the trigger won the race after our lookup; that is surfaced as
// ErrProfileCreationFailed rather than retried — the caller decides whether
// to fail the run or re-fetch.
func (b *Bootstrapper) Create(ctx context.Context, session *domain.Session) (*domain.Profile, error) {
	draft := DefaultProfile(session)

	created, err := b.store.Insert(ctx, draft)
	if err != nil {
		if errors.Is(err, domain.ErrProfileExists) {
			b.log.Warn().
				Str("auth_user_id", session.UserID).
				Msg("bootstrap lost the race: profile already exists")
		} else {
			b.log.Error().Err(err).
				Str("auth_user_id", session.UserID).
				Msg("profile insert failed")
		}
		return nil, domain.ErrProfileCreationFailed
	}

	b.log.Info().
		Str("auth_user_id", created.AuthUserID).
		Str("role", created.Role).
		Msg("profile bootstrapped")
	return created, nil
}
