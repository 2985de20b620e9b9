package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/domain/authz"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
	// EmailKey is the context key for email.
	EmailKey = "email"
	// IdentityKey is the context key for the full identity.
	IdentityKey = "identity"
)

// Authorizer verifies a bearer token and evaluates guards against it.
type Authorizer interface {
	Authorize(ctx context.Context, token string, guards ...authz.Guard) (*auth.Identity, error)
}

// GuardFunc builds the guards for a request, usually from path parameters.
// An error means the request itself is malformed.
type GuardFunc func(c *gin.Context) ([]authz.Guard, error)

// ErrorRenderer writes an error response.
type ErrorRenderer func(c *gin.Context, err error)

// RequireGuards returns a middleware that authenticates the caller and
// evaluates the guards built for the request. On success the identity is
// stored in the context under IdentityKey, UserIDKey and EmailKey.
func RequireGuards(authorizer Authorizer, render ErrorRenderer, build GuardFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := extractBearerToken(c)

		var guards []authz.Guard
		if build != nil {
			g, err := build(c)
			if err != nil {
				// Anonymous callers get 401 before learning anything about the path.
				if _, authErr := authorizer.Authorize(ctx, token); authErr != nil {
					err = authErr
				}
				render(c, err)
				c.Abort()
				return
			}
			guards = g
		}

		id, err := authorizer.Authorize(ctx, token, guards...)
		if err != nil {
			render(c, err)
			c.Abort()
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// RequireAuth returns a middleware that only requires a valid token.
func RequireAuth(authorizer Authorizer, render ErrorRenderer) gin.HandlerFunc {
	return RequireGuards(authorizer, render, nil)
}

func setIdentity(c *gin.Context, id *auth.Identity) {
	c.Set(IdentityKey, id)
	c.Set(UserIDKey, id.UserID)
	c.Set(EmailKey, id.Email)
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if len(authHeader) < len(BearerPrefix) || !strings.EqualFold(authHeader[:len(BearerPrefix)], BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(BearerPrefix):])
}

// GetIdentity returns the identity from context, or nil.
func GetIdentity(c *gin.Context) *auth.Identity {
	if val, exists := c.Get(IdentityKey); exists {
		if id, ok := val.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}

// GetUserID returns the user ID from context.
// Returns uuid.Nil if not found.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

// GetEmail returns the email from context.
// Returns empty string if not found.
func GetEmail(c *gin.Context) string {
	if val, exists := c.Get(EmailKey); exists {
		if email, ok := val.(string); ok {
			return email
		}
	}
	return ""
}
