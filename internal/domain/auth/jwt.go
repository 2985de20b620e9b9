package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents JWT token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
}

type serviceIdentity struct {
	token    []byte
	identity Identity
}

// Verifier validates session tokens and resolves them to an Identity.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	secret   []byte
	issuer   string
	services []serviceIdentity
}

// NewVerifier creates a new token verifier.
func NewVerifier(cfg *Config) (*Verifier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
	for i, st := range cfg.ServiceTokens {
		if st.Token == "" {
			return nil, fmt.Errorf("service token %d: empty token", i)
		}
		userID, err := uuid.Parse(st.UserID)
		if err != nil {
			return nil, fmt.Errorf("service token %d: invalid user id: %w", i, err)
		}
		v.services = append(v.services, serviceIdentity{
			token:    []byte(st.Token),
			identity: Identity{UserID: userID, Email: st.Email, Name: st.Name},
		})
	}
	return v, nil
}

// Verify validates a bearer token and returns the identity it carries.
func (v *Verifier) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	if id := v.matchServiceToken(token); id != nil {
		return id, nil
	}

	claims, err := v.parse(token)
	if err != nil {
		return nil, err
	}

	userID := claims.UserID
	if userID == uuid.Nil {
		userID, err = uuid.Parse(claims.Subject)
		if err != nil {
			return nil, ErrInvalidTokenClaims
		}
	}

	return &Identity{
		UserID: userID,
		Email:  strings.ToLower(claims.Email),
		Name:   claims.Name,
	}, nil
}

// matchServiceToken compares against every configured token without
// returning early so the time taken does not depend on which one matched.
func (v *Verifier) matchServiceToken(token string) *Identity {
	var match *Identity
	candidate := []byte(token)
	for i := range v.services {
		if subtle.ConstantTimeCompare(v.services[i].token, candidate) == 1 {
			id := v.services[i].identity
			match = &id
		}
	}
	return match
}

func (v *Verifier) parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTokenClaims
	}
	return claims, nil
}

// Signer mints HS256 session tokens. The service only verifies tokens in
// production; Signer backs the development login endpoint and tests.
type Signer struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewSigner creates a new token signer.
func NewSigner(cfg *Config) (*Signer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: cfg.AccessTokenExpiry,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the profile.
func (s *Signer) Issue(profile Profile) (*LoginResult, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   profile.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID: profile.UserID,
		Email:  profile.Email,
		Name:   profile.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &LoginResult{
		Profile:   profile,
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}
