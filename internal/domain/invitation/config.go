package invitation

import (
	"strings"
	"time"
)

// Config holds invitation domain configuration.
type Config struct {
	// TTL is how long an invitation can be accepted after it was sent.
	TTL time.Duration

	// NonceLength is the number of random bytes mixed into each token.
	NonceLength int

	// MaxBatch caps the number of emails in one issuance call.
	MaxBatch int

	DefaultPageSize int
	MaxPageSize     int

	// BaseURL is the base URL for invitation links.
	BaseURL string

	// RequireEmailMatch binds accept/reject to the invited address.
	RequireEmailMatch bool

	// NotifyConcurrency bounds parallel notification delivery.
	NotifyConcurrency int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TTL:               7 * 24 * time.Hour,
		NonceLength:       32,
		MaxBatch:          50,
		DefaultPageSize:   20,
		MaxPageSize:       100,
		NotifyConcurrency: 4,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.NonceLength < 16 {
		c.NonceLength = d.NonceLength
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = d.MaxBatch
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = min(d.DefaultPageSize, c.MaxPageSize)
	}
	if c.NotifyConcurrency <= 0 {
		c.NotifyConcurrency = d.NotifyConcurrency
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// AcceptURL builds the link sent to the recipient.
func (c *Config) AcceptURL(token string) string {
	if c.BaseURL == "" {
		return ""
	}
	return c.BaseURL + "/invitations/" + token
}
