package ports

import (
	"context"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// CallbackInput carries what the identity provider hands back after a
// redirect: the access token and the one-shot nonce minted for this run.
type CallbackInput struct {
	AccessToken string
	Nonce       string
	CurrentPath string
}

// CallbackResult is the outcome of one callback run: the single navigation
// decision, the resolved profile, and whether this run had to bootstrap it.
type CallbackResult struct {
	Decision     domain.Decision
	Profile      *domain.Profile
	Bootstrapped bool
}

type CallbackService interface {
	Run(ctx context.Context, in CallbackInput) (*CallbackResult, error)
}
