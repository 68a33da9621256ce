package ports

import (
	"context"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// Authorizer computes a navigation decision for one request. Implementations
// must fail closed: any failure along the way resolves to a login redirect,
// never to access.
type Authorizer interface {
	Check(ctx context.Context, accessToken string, requiredRoles []string, currentPath string) domain.Decision
}
