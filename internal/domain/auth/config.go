package auth

import "time"

// Config holds token verification configuration.
type Config struct {
	// Secret is the HMAC key shared with the token issuer.
	Secret string

	// Issuer, when set, must match the iss claim.
	Issuer string

	// AccessTokenExpiry is the lifetime of tokens minted by Signer.
	AccessTokenExpiry time.Duration

	// ServiceTokens are static bearer tokens for internal callers.
	ServiceTokens []ServiceToken
}

// ServiceToken maps a static bearer token to a fixed identity.
type ServiceToken struct {
	Token  string `mapstructure:"token"`
	UserID string `mapstructure:"user_id"`
	Email  string `mapstructure:"email"`
	Name   string `mapstructure:"name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "orgauth",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	if c.AccessTokenExpiry <= 0 {
		c.AccessTokenExpiry = 15 * time.Minute
	}
	return nil
}
