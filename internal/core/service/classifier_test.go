package service

import (
	"testing"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

const testAdminPortal = "https://admin.example.com"

func standardProfile(onboarded bool) *domain.Profile {
	return &domain.Profile{
		AuthUserID:          "user_1",
		Email:               "jane@example.com",
		FullName:            "Jane Doe",
		Role:                domain.RoleStandard,
		IsActive:            true,
		OnboardingCompleted: onboarded,
	}
}

func testSession() *domain.Session {
	return &domain.Session{UserID: "user_1", Email: "jane@example.com"}
}

func TestClassify_NoSession(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	for _, profile := range []*domain.Profile{nil, standardProfile(true)} {
		d := cl.Classify(nil, profile, DefaultRequiredRoles, "/")
		if d.Kind != domain.DecisionRedirectToLogin {
			t.Fatalf("expected login redirect, got %s", d.Kind)
		}
		if d.Location != domain.RouteLogin {
			t.Fatalf("expected location %s, got %s", domain.RouteLogin, d.Location)
		}
	}
}

func TestClassify_NoProfile_FailsClosed(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	d := cl.Classify(testSession(), nil, DefaultRequiredRoles, "/")
	if d.Kind != domain.DecisionRedirectToLogin {
		t.Fatalf("expected login redirect, got %s", d.Kind)
	}
}

func TestClassify_NonStandardRole_ExternalRedirect(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	for _, role := range []string{domain.RoleAdmin, domain.RolePartner, "support"} {
		for _, onboarded := range []bool{true, false} {
			p := standardProfile(onboarded)
			p.Role = role

			d := cl.Classify(testSession(), p, DefaultRequiredRoles, "/")
			if d.Kind != domain.DecisionRedirectExternal {
				t.Fatalf("role %s onboarded=%v: expected external redirect, got %s", role, onboarded, d.Kind)
			}
			if d.Location != testAdminPortal {
				t.Fatalf("expected admin portal url, got %s", d.Location)
			}
			if !d.External {
				t.Fatalf("external redirect not marked as cross-application")
			}
		}
	}
}

func TestClassify_RequiredRolesMismatch_ExternalRedirect(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	d := cl.Classify(testSession(), standardProfile(true), []string{"reviewer"}, "/")
	if d.Kind != domain.DecisionRedirectExternal {
		t.Fatalf("expected external redirect on role mismatch, got %s", d.Kind)
	}
}

func TestClassify_OnboardingIncomplete_Setup(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	d := cl.Classify(testSession(), standardProfile(false), DefaultRequiredRoles, "/")
	if d.Kind != domain.DecisionRedirectToSetup {
		t.Fatalf("expected setup redirect, got %s", d.Kind)
	}
	if d.Location != domain.RouteSetup {
		t.Fatalf("expected location %s, got %s", domain.RouteSetup, d.Location)
	}
}

func TestClassify_OnboardingIncomplete_AlreadyOnSetup(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	d := cl.Classify(testSession(), standardProfile(false), DefaultRequiredRoles, domain.RouteSetup)
	if d.Kind != domain.DecisionAllowed {
		t.Fatalf("expected allowed on setup route, got %s", d.Kind)
	}
}

func TestClassify_Onboarded_Allowed(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	p := standardProfile(true)
	d := cl.Classify(testSession(), p, DefaultRequiredRoles, "/")
	if d.Kind != domain.DecisionAllowed {
		t.Fatalf("expected allowed, got %s", d.Kind)
	}
	if d.Profile == nil || d.Profile.AuthUserID != p.AuthUserID {
		t.Fatalf("allowed decision did not carry the profile: %+v", d.Profile)
	}
}

func TestClassify_EmptyRequiredRoles_DefaultsToStandard(t *testing.T) {
	cl := NewClassifier(testAdminPortal)

	d := cl.Classify(testSession(), standardProfile(true), nil, "/")
	if d.Kind != domain.DecisionAllowed {
		t.Fatalf("expected allowed with default role set, got %s", d.Kind)
	}
}
