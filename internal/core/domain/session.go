package domain

import "strings"

// Session is the ephemeral proof of identity issued by the identity
// provider. The core never persists it; it is read once per evaluation.
// Metadata is the provider's opaque user_metadata mapping.
type Session struct {
	UserID   string         `json:"user_id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MetadataString returns the named metadata value when it is a non-empty
// string, or "" otherwise.
func (s *Session) MetadataString(key string) string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	v, _ := s.Metadata[key].(string)
	return v
}

// DisplayName resolves the user's display name: metadata full_name first,
// then the email local-part.
func (s *Session) DisplayName() string {
	if name := s.MetadataString("full_name"); name != "" {
		return name
	}
	if at := strings.Index(s.Email, "@"); at > 0 {
		return s.Email[:at]
	}
	return s.Email
}
