package invitation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/uniedit/orgauth/internal/utils/random"
)

const (
	tokenKeyInfo  = "orgauth invitation token v1"
	digestKeyInfo = "orgauth invitation digest v1"
)

// TokenMinter derives invitation tokens and their lookup digests from a
// secret. Tokens are never stored; an invitation keeps only a random nonce
// and the digest, and the token can be recomputed for its recipient.
type TokenMinter struct {
	tokenKey  []byte
	digestKey []byte
	nonceLen  int
}

// NewTokenMinter creates a minter keyed by secret.
func NewTokenMinter(secret string, nonceLen int) (*TokenMinter, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if nonceLen <= 0 {
		nonceLen = DefaultConfig().NonceLength
	}

	tokenKey, err := deriveKey(secret, tokenKeyInfo)
	if err != nil {
		return nil, err
	}
	digestKey, err := deriveKey(secret, digestKeyInfo)
	if err != nil {
		return nil, err
	}

	return &TokenMinter{tokenKey: tokenKey, digestKey: digestKey, nonceLen: nonceLen}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// NewNonce returns a fresh random nonce.
func (m *TokenMinter) NewNonce() (string, error) {
	return random.Base64URL(m.nonceLen)
}

// Token returns the bearer token for the invitation with id and nonce.
func (m *TokenMinter) Token(id uuid.UUID, nonce string) string {
	mac := hmac.New(sha256.New, m.tokenKey)
	mac.Write(id[:])
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Digest returns the value stored for token lookups.
func (m *TokenMinter) Digest(token string) string {
	mac := hmac.New(sha256.New, m.digestKey)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches reports whether token belongs to inv, in constant time.
func (m *TokenMinter) Matches(inv *Invitation, token string) bool {
	return hmac.Equal([]byte(m.Token(inv.ID(), inv.Nonce())), []byte(token))
}
