package auth

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller resolved from a session token.
// It is created once per request and never mutated.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
}

// Profile is the public view of a user.
type Profile struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
}

// LoginResult contains a profile and the session token issued for it.
type LoginResult struct {
	Profile   Profile   `json:"profile"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}
