package authz

import (
	"errors"
	"fmt"

	"github.com/uniedit/orgauth/internal/domain/org"
)

// Domain errors.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrResourceNotFound = org.ErrResourceNotFound
)

// DeniedError reports the guard that failed. Reason is for logs only and
// must not be rendered to callers.
type DeniedError struct {
	Guard  Guard
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("forbidden: %s: %s", e.Guard, e.Reason)
}

// Unwrap makes errors.Is(err, ErrForbidden) hold.
func (e *DeniedError) Unwrap() error {
	return ErrForbidden
}

func deny(g Guard, reason string) error {
	return &DeniedError{Guard: g, Reason: reason}
}
