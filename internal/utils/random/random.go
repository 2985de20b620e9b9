package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Bytes returns n cryptographically secure random bytes.
func Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	return b, nil
}

// Base64URL generates a cryptographically secure random unpadded
// base64url string from length random bytes.
func Base64URL(length int) (string, error) {
	b, err := Bytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
