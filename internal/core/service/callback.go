package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// defaultBootstrapDelay gives the server-side sign-up trigger a head start
// before the client looks for the profile it should have created. A single
// fixed delay, not a guarantee: the insert-conflict path covers the case
// where the trigger lands after the fetch.
const defaultBootstrapDelay = 1500 * time.Millisecond

// CallbackState names the steps of one callback run, for logs and the
// status the SPA shows while the run is in flight.
type CallbackState string

const (
	StateAuthenticating   CallbackState = "authenticating"
	StateResolvingProfile CallbackState = "resolving_profile"
	StateBootstrapping    CallbackState = "bootstrapping"
	StateDeciding         CallbackState = "deciding"
	StateNavigating       CallbackState = "navigating"
	StateError            CallbackState = "error"
)

// OnceGuard enforces at-most-once processing of a callback nonce.
type OnceGuard interface {
	// MarkProcessed records the nonce and reports whether this was the
	// first time it was seen.
	MarkProcessed(ctx context.Context, nonce string) (first bool, err error)
}

// CallbackService runs the one-shot state machine executed after the
// identity provider redirects back to the application:
//
//	Authenticating → ResolvingProfile → {Bootstrapping | Deciding} → Navigating
//
// with Error reachable from any step. Steps run strictly in sequence; there
// is exactly one navigation decision per run.
type CallbackService struct {
	sessions   ports.SessionSource
	store      ports.ProfileStore
	bootstrap  *Bootstrapper
	classifier *Classifier
	once       OnceGuard
	audit      ports.AuditSink
	delay      time.Duration
	log        zerolog.Logger
}

// NewCallbackService wires the callback pipeline. once and audit may be nil
// (no replay protection / no audit trail); bootstrapDelay <= 0 selects the
// default.
func NewCallbackService(
	sessions ports.SessionSource,
	store ports.ProfileStore,
	bootstrap *Bootstrapper,
	classifier *Classifier,
	once OnceGuard,
	audit ports.AuditSink,
	bootstrapDelay time.Duration,
	log zerolog.Logger,
) *CallbackService {
	if bootstrapDelay <= 0 {
		bootstrapDelay = defaultBootstrapDelay
	}
	return &CallbackService{
		sessions:   sessions,
		store:      store,
		bootstrap:  bootstrap,
		classifier: classifier,
		once:       once,
		audit:      audit,
		delay:      bootstrapDelay,
		log:        log,
	}
}

// Run executes the state machine once. Error returns mean the run reached
// the Error state: session retrieval failed, the nonce was replayed, or the
// bootstrap insert lost its race. A missing session is not an error — the
// decision is simply a login redirect.
func (s *CallbackService) Run(ctx context.Context, in ports.CallbackInput) (*ports.CallbackResult, error) {
	if s.once != nil && in.Nonce != "" {
		first, err := s.once.MarkProcessed(ctx, in.Nonce)
		if err != nil {
			// The guard is an availability aid; losing it must not strand
			// the user on the callback screen.
			s.log.Warn().Err(err).Msg("callback once-guard unavailable, processing anyway")
		} else if !first {
			return nil, domain.ErrCallbackReplayed
		}
	}

	s.logState(StateAuthenticating, in.CurrentPath)
	session, err := s.sessions.Resolve(ctx, in.AccessToken)
	if err != nil {
		s.record("", "", "error:session_retrieval", in.CurrentPath)
		return nil, err
	}
	if session == nil {
		s.log.Info().Msg("no session on callback, redirecting to login")
		s.record("", "", string(domain.DecisionRedirectToLogin), in.CurrentPath)
		return &ports.CallbackResult{Decision: domain.LoginDecision()}, nil
	}

	s.logState(StateResolvingProfile, in.CurrentPath)
	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}

	profile, err := s.store.GetByAuthUserID(ctx, session.UserID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		// Transient fetch failures degrade to "not found" so the run can
		// still reach a safe decision.
		s.log.Error().Err(err).
			Str("auth_user_id", session.UserID).
			Msg("profile fetch failed, treating as absent")
		profile = nil
	}

	bootstrapped := false
	if profile == nil {
		s.logState(StateBootstrapping, in.CurrentPath)
		profile, err = s.bootstrap.Create(ctx, session)
		if err != nil {
			s.record(session.UserID, session.Email, "error:profile_creation", in.CurrentPath)
			return nil, err
		}
		bootstrapped = true
	}

	s.logState(StateDeciding, in.CurrentPath)
	decision := s.classifier.Classify(session, profile, DefaultRequiredRoles, in.CurrentPath)

	s.logState(StateNavigating, in.CurrentPath)
	s.log.Info().
		Str("auth_user_id", session.UserID).
		Str("role", profile.Role).
		Bool("onboarding_completed", profile.OnboardingCompleted).
		Str("decision", string(decision.Kind)).
		Msg("callback navigation decision")
	s.record(session.UserID, session.Email, string(decision.Kind), in.CurrentPath)

	return &ports.CallbackResult{
		Decision:     decision,
		Profile:      profile,
		Bootstrapped: bootstrapped,
	}, nil
}

func (s *CallbackService) logState(state CallbackState, path string) {
	s.log.Debug().Str("state", string(state)).Str("path", path).Msg("callback state")
}

func (s *CallbackService) record(userID, email, outcome, path string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEntry{
		AuthUserID: userID,
		Email:      email,
		Kind:       "callback",
		Outcome:    outcome,
		Path:       path,
		At:         time.Now().UTC(),
	})
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
