package auth

import "errors"

// Domain errors.
var (
	// Token errors
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")

	// Configuration errors
	ErrMissingSecret = errors.New("token verification secret is not configured")
)
