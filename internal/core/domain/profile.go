package domain

import (
	"errors"
	"time"
)

const (
	// RoleStandard is the only role the client portal serves. Every other
	// role belongs to the admin portal.
	RoleStandard = "standard"
	RoleAdmin    = "admin"
	RolePartner  = "partner"
)

var ErrProfileNotFound = errors.New("profile not found")
var ErrProfileExists = errors.New("profile already exists")
var ErrProfileCreationFailed = errors.New("failed to create user profile")
var ErrSessionMissing = errors.New("no active session")
var ErrSessionRetrieval = errors.New("failed to establish session")
var ErrCallbackReplayed = errors.New("auth callback already processed")
var ErrOnboardingIncomplete = errors.New("onboarding not completed")

// Profile is the application-level record describing a user's role and
// onboarding state. It is keyed by the identity provider's user id
// (AuthUserID, unique) and is created either by a server-side trigger at
// sign-up or by the client-side bootstrapper as a fallback.
type Profile struct {
	ID                  string    `json:"id"`
	AuthUserID          string    `json:"auth_user_id"`
	Email               string    `json:"email"`
	FullName            string    `json:"full_name"`
	Role                string    `json:"role"`
	IsActive            bool      `json:"is_active"`
	IsPublic            bool      `json:"is_public"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
