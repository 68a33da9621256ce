package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

type stubSessionSource struct {
	session *domain.Session
	err     error
}

func (s *stubSessionSource) Resolve(_ context.Context, accessToken string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if accessToken == "" {
		return nil, nil
	}
	return s.session, nil
}

func (s *stubSessionSource) Subscribe(_ context.Context, _ string, _ func()) (func(), error) {
	return func() {}, nil
}

type stubOnceGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (g *stubOnceGuard) MarkProcessed(_ context.Context, nonce string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[nonce] {
		return false, nil
	}
	g.seen[nonce] = true
	return true, nil
}

func newTestCallbackService(sessions ports.SessionSource, store ports.ProfileStore, once OnceGuard) *CallbackService {
	log := zerolog.Nop()
	return NewCallbackService(
		sessions,
		store,
		NewBootstrapper(store, log),
		NewClassifier(testAdminPortal),
		once,
		nil,
		time.Millisecond,
		log,
	)
}

func TestCallback_SessionAbsent_Login(t *testing.T) {
	store := newStubProfileStore()
	svc := newTestCallbackService(&stubSessionSource{}, store, nil)

	result, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "", CurrentPath: "/"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Decision.Kind != domain.DecisionRedirectToLogin {
		t.Fatalf("expected login redirect, got %s", result.Decision.Kind)
	}
	if store.inserts != 0 {
		t.Fatalf("no profile should be created without a session")
	}
}

func TestCallback_SessionRetrievalFailed(t *testing.T) {
	sessions := &stubSessionSource{err: domain.ErrSessionRetrieval}
	svc := newTestCallbackService(sessions, newStubProfileStore(), nil)

	_, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"})
	if !errors.Is(err, domain.ErrSessionRetrieval) {
		t.Fatalf("expected ErrSessionRetrieval, got %v", err)
	}
}

func TestCallback_BootstrapsMissingProfile(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{
		UserID: "user_1",
		Email:  "jane@example.com",
		Metadata: map[string]any{
			"full_name": "Jane Doe",
			"role":      "standard",
		},
	}}
	store := newStubProfileStore()
	svc := newTestCallbackService(sessions, store, nil)

	result, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Bootstrapped {
		t.Fatalf("expected bootstrap")
	}
	if result.Profile.FullName != "Jane Doe" || result.Profile.Role != domain.RoleStandard {
		t.Fatalf("unexpected bootstrapped profile: %+v", result.Profile)
	}
	if result.Profile.OnboardingCompleted {
		t.Fatalf("fresh profile must not be onboarded")
	}
	// Fresh profile means onboarding still pending.
	if result.Decision.Kind != domain.DecisionRedirectToSetup {
		t.Fatalf("expected setup redirect, got %s", result.Decision.Kind)
	}
}

func TestCallback_Idempotent_NoSecondProfile(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	svc := newTestCallbackService(sessions, store, nil)

	in := ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"}
	if _, err := svc.Run(context.Background(), in); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	result, err := svc.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Bootstrapped {
		t.Fatalf("second run must reuse the existing profile")
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly 1 insert, got %d", store.inserts)
	}
}

func TestCallback_InsertConflict_ErrorState(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	// Fetch misses, then the insert collides with a trigger-created row.
	store.getErr = domain.ErrProfileNotFound
	store.insertErr = domain.ErrProfileExists
	svc := newTestCallbackService(sessions, store, nil)

	_, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"})
	if !errors.Is(err, domain.ErrProfileCreationFailed) {
		t.Fatalf("expected ErrProfileCreationFailed, got %v", err)
	}
}

func TestCallback_FetchErrorDegradesToNotFound(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	store.getErr = errors.New("store unavailable")
	svc := newTestCallbackService(sessions, store, nil)

	result, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Bootstrapped {
		t.Fatalf("degraded fetch should fall through to bootstrap")
	}
}

func TestCallback_OnboardedUser_PortalRoot(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	store.profiles["user_1"] = standardProfile(true)
	svc := newTestCallbackService(sessions, store, nil)

	result, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Decision.Kind != domain.DecisionAllowed {
		t.Fatalf("expected allowed, got %s", result.Decision.Kind)
	}
	if store.inserts != 0 {
		t.Fatalf("existing profile must not be re-created")
	}
}

func TestCallback_NonStandardRole_ExternalRedirect(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	admin := standardProfile(true)
	admin.Role = domain.RoleAdmin
	store.profiles["user_1"] = admin
	svc := newTestCallbackService(sessions, store, nil)

	result, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", CurrentPath: "/"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Decision.Kind != domain.DecisionRedirectExternal {
		t.Fatalf("expected external redirect, got %s", result.Decision.Kind)
	}
	if result.Decision.Location != testAdminPortal {
		t.Fatalf("expected admin portal url, got %s", result.Decision.Location)
	}
}

func TestCallback_NonceReplayed(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	once := &stubOnceGuard{}
	svc := newTestCallbackService(sessions, store, once)

	in := ports.CallbackInput{AccessToken: "tok", Nonce: "n1", CurrentPath: "/"}
	if _, err := svc.Run(context.Background(), in); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := svc.Run(context.Background(), in); !errors.Is(err, domain.ErrCallbackReplayed) {
		t.Fatalf("expected ErrCallbackReplayed, got %v", err)
	}
}

func TestCallback_OnceGuardUnavailable_ProceedsAnyway(t *testing.T) {
	sessions := &stubSessionSource{session: &domain.Session{UserID: "user_1", Email: "jane@example.com"}}
	store := newStubProfileStore()
	once := &stubOnceGuard{err: errors.New("redis down")}
	svc := newTestCallbackService(sessions, store, once)

	if _, err := svc.Run(context.Background(), ports.CallbackInput{AccessToken: "tok", Nonce: "n1", CurrentPath: "/"}); err != nil {
		t.Fatalf("run should tolerate a failing once-guard: %v", err)
	}
}
