package ports

import (
	"context"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// SessionSource resolves identity-provider sessions. It is consumed, never
// implemented, by the core: the provider owns authentication.
type SessionSource interface {
	// Resolve exchanges a provider access token for a Session. An empty
	// token resolves to (nil, nil) — "no session" is a normal outcome, not
	// an error. A failure to validate or look up a non-empty token returns
	// an error wrapping domain.ErrSessionRetrieval.
	Resolve(ctx context.Context, accessToken string) (*domain.Session, error)

	// Subscribe registers onChange to run whenever the given user's session
	// changes (refresh, revocation, sign-out). The returned func cancels
	// the subscription; it is safe to call more than once.
	Subscribe(ctx context.Context, authUserID string, onChange func()) (unsubscribe func(), err error)
}
