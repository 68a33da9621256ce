package domain

// In-app routes the portal can navigate to.
const (
	RoutePortalRoot = "/"
	RouteSetup      = "/setup-profile"
	RouteLogin      = "/login"
)

// DecisionKind identifies which variant of an AuthorizationDecision holds.
type DecisionKind string

const (
	DecisionAllowed          DecisionKind = "allowed"
	DecisionRedirectToLogin  DecisionKind = "redirect_to_login"
	DecisionRedirectToSetup  DecisionKind = "redirect_to_setup"
	DecisionRedirectExternal DecisionKind = "redirect_to_external_portal"
)

// Decision is the navigation outcome of one authorization evaluation.
// Exactly one variant holds: Profile is set only for Allowed, Location only
// for the redirect variants. Derived, never persisted.
type Decision struct {
	Kind     DecisionKind `json:"kind"`
	Location string       `json:"location,omitempty"`
	Profile  *Profile     `json:"profile,omitempty"`
	// External marks Location as a cross-application redirect (full page
	// navigation) rather than an in-app route change.
	External bool `json:"external,omitempty"`
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Kind == DecisionAllowed
}

func AllowedDecision(p *Profile) Decision {
	return Decision{Kind: DecisionAllowed, Profile: p}
}

func LoginDecision() Decision {
	return Decision{Kind: DecisionRedirectToLogin, Location: RouteLogin}
}

func SetupDecision() Decision {
	return Decision{Kind: DecisionRedirectToSetup, Location: RouteSetup}
}

func ExternalDecision(url string) Decision {
	return Decision{Kind: DecisionRedirectExternal, Location: url, External: true}
}
