package service

import (
	"strings"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// DefaultRequiredRoles is the role set a guard enforces when none is given.
var DefaultRequiredRoles = []string{domain.RoleStandard}

// Classifier computes navigation decisions. It is pure and synchronous: the
// decision is a function of (session, profile, requiredRoles, currentPath)
// and nothing else; the caller performs the actual navigation.
type Classifier struct {
	adminPortalURL string
}

func NewClassifier(adminPortalURL string) *Classifier {
	return &Classifier{adminPortalURL: adminPortalURL}
}

// Classify applies the portal's authorization rules in order; the first
// match wins.
//
//  1. No session → login.
//  2. No profile (or the lookup failed upstream) → login, fail closed.
//  3. Non-standard role → the admin portal origin (cross-application
//     redirect — this portal only serves standard users).
//  4. Role not in requiredRoles → same external redirect; a role mismatch
//     means the user belongs to the other portal.
//  5. Onboarding incomplete, and not already on the setup route → setup.
//  6. Otherwise allowed, carrying the resolved profile.
func (cl *Classifier) Classify(session *domain.Session, profile *domain.Profile, requiredRoles []string, currentPath string) domain.Decision {
	if session == nil {
		return domain.LoginDecision()
	}
	if profile == nil {
		return domain.LoginDecision()
	}
	if profile.Role != domain.RoleStandard {
		return domain.ExternalDecision(cl.adminPortalURL)
	}
	if len(requiredRoles) == 0 {
		requiredRoles = DefaultRequiredRoles
	}
	if !containsRole(requiredRoles, profile.Role) {
		return domain.ExternalDecision(cl.adminPortalURL)
	}
	if !profile.OnboardingCompleted && !strings.HasPrefix(currentPath, domain.RouteSetup) {
		return domain.SetupDecision()
	}
	return domain.AllowedDecision(profile)
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
