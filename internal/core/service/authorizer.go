package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// AuthorizerService performs one complete authorization check: resolve the
// session, fetch the profile, classify. Every failure path resolves to a
// login redirect — the check fails closed, it never throws outward.
type AuthorizerService struct {
	sessions   ports.SessionSource
	store      ports.ProfileStore
	classifier *Classifier
	audit      ports.AuditSink
	log        zerolog.Logger
}

func NewAuthorizerService(
	sessions ports.SessionSource,
	store ports.ProfileStore,
	classifier *Classifier,
	audit ports.AuditSink,
	log zerolog.Logger,
) *AuthorizerService {
	return &AuthorizerService{
		sessions:   sessions,
		store:      store,
		classifier: classifier,
		audit:      audit,
		log:        log,
	}
}

func (a *AuthorizerService) Check(ctx context.Context, accessToken string, requiredRoles []string, currentPath string) domain.Decision {
	session, err := a.sessions.Resolve(ctx, accessToken)
	if err != nil {
		a.log.Warn().Err(err).Msg("session resolution failed during check")
		session = nil
	}

	var profile *domain.Profile
	if session != nil {
		profile, err = a.store.GetByAuthUserID(ctx, session.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrProfileNotFound) {
				a.log.Error().Err(err).
					Str("auth_user_id", session.UserID).
					Msg("profile fetch failed during check")
			}
			profile = nil
		}
	}

	decision := a.classifier.Classify(session, profile, requiredRoles, currentPath)

	if !decision.Allowed() && a.audit != nil && session != nil {
		a.audit.Enqueue(ports.AuditEntry{
			AuthUserID: session.UserID,
			Email:      session.Email,
			Kind:       "guard",
			Outcome:    string(decision.Kind),
			Path:       currentPath,
			At:         time.Now().UTC(),
		})
	}

	return decision
}
