package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// GuardState is the route guard's gate state.
type GuardState string

const (
	GuardChecking     GuardState = "checking"
	GuardAuthorized   GuardState = "authorized"
	GuardUnauthorized GuardState = "unauthorized"
)

// GuardSnapshot is one observed guard evaluation.
type GuardSnapshot struct {
	State    GuardState      `json:"state"`
	Decision domain.Decision `json:"decision"`
	Seq      uint64          `json:"-"`
}

// Guard is the stateful gate in front of a protected subtree. It re-enters
// Checking whenever its inputs (session token, required roles) change or the
// session source signals a change, runs a full authorization check, and
// settles on Authorized or Unauthorized. There is no terminal state.
//
// Each re-check carries a monotonically increasing sequence number; a check
// that finishes after a newer one started is discarded, so stale in-flight
// results never override a newer decision.
type Guard struct {
	authorizer ports.Authorizer
	sessions   ports.SessionSource
	log        zerolog.Logger

	mu            sync.Mutex
	seq           uint64
	accessToken   string
	requiredRoles []string
	currentPath   string
	last          GuardSnapshot
	unsubscribe   func()

	updates chan GuardSnapshot
}

func NewGuard(authorizer ports.Authorizer, sessions ports.SessionSource, log zerolog.Logger) *Guard {
	return &Guard{
		authorizer: authorizer,
		sessions:   sessions,
		log:        log,
		last:       GuardSnapshot{State: GuardChecking},
		updates:    make(chan GuardSnapshot, 8),
	}
}

// Updates delivers guard snapshots as checks settle. When a consumer lags,
// older snapshots are dropped in favour of newer ones.
func (g *Guard) Updates() <-chan GuardSnapshot {
	return g.updates
}

// Start sets the guard's initial inputs, subscribes to session-change
// notifications, and kicks off the first check.
func (g *Guard) Start(ctx context.Context, accessToken string, requiredRoles []string, currentPath string) error {
	if len(requiredRoles) == 0 {
		requiredRoles = DefaultRequiredRoles
	}

	g.mu.Lock()
	g.accessToken = accessToken
	g.requiredRoles = requiredRoles
	g.currentPath = currentPath
	g.mu.Unlock()

	// The subscription needs the user id; a failed or absent session still
	// gets its (unauthorized) check, just without change notifications.
	if session, err := g.sessions.Resolve(ctx, accessToken); err == nil && session != nil {
		unsub, err := g.sessions.Subscribe(ctx, session.UserID, func() {
			g.Recheck(ctx)
		})
		if err != nil {
			g.log.Warn().Err(err).Msg("session change subscription failed")
		} else {
			g.mu.Lock()
			g.unsubscribe = unsub
			g.mu.Unlock()
		}
	}

	g.Recheck(ctx)
	return nil
}

// SetRequiredRoles replaces the required-role set and re-checks.
func (g *Guard) SetRequiredRoles(ctx context.Context, roles []string) {
	if len(roles) == 0 {
		roles = DefaultRequiredRoles
	}
	g.mu.Lock()
	g.requiredRoles = roles
	g.mu.Unlock()
	g.Recheck(ctx)
}

// SetAccessToken replaces the session input and re-checks.
func (g *Guard) SetAccessToken(ctx context.Context, token string) {
	g.mu.Lock()
	g.accessToken = token
	g.mu.Unlock()
	g.Recheck(ctx)
}

// Recheck transitions to Checking and starts a new evaluation, superseding
// any check still in flight.
func (g *Guard) Recheck(ctx context.Context) {
	g.mu.Lock()
	g.seq++
	seq := g.seq
	token := g.accessToken
	roles := append([]string(nil), g.requiredRoles...)
	path := g.currentPath
	g.last = GuardSnapshot{State: GuardChecking, Seq: seq}
	g.mu.Unlock()

	go g.check(ctx, seq, token, roles, path)
}

// Snapshot returns the most recent guard state.
func (g *Guard) Snapshot() GuardSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Stop cancels the session-change subscription.
func (g *Guard) Stop() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (g *Guard) check(ctx context.Context, seq uint64, token string, roles []string, path string) {
	decision := g.authorizer.Check(ctx, token, roles, path)

	g.mu.Lock()
	if seq != g.seq {
		g.mu.Unlock()
		g.log.Debug().Uint64("seq", seq).Msg("stale guard check discarded")
		return
	}
	state := GuardUnauthorized
	if decision.Allowed() {
		state = GuardAuthorized
	}
	snap := GuardSnapshot{State: state, Decision: decision, Seq: seq}
	g.last = snap
	g.mu.Unlock()

	g.emit(snap)
}

func (g *Guard) emit(snap GuardSnapshot) {
	for {
		select {
		case g.updates <- snap:
			return
		default:
			// Full buffer: evict the oldest pending snapshot.
			select {
			case <-g.updates:
			default:
			}
		}
	}
}
