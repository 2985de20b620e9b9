package org

import (
	"errors"
	"fmt"
)

// Domain errors for the org module.
var (
	// Organization errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidName          = errors.New("invalid name")

	// Member errors
	ErrMemberNotFound = errors.New("member not found")
	ErrLastOwner      = errors.New("organization must keep at least one owner")

	// Permission errors
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrInvalidRole            = errors.New("invalid role")
	ErrCannotAssignRole       = errors.New("cannot assign a role above your own")

	// Resource resolution errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrTeamNotFound     = fmt.Errorf("team: %w", ErrResourceNotFound)
	ErrAppNotFound      = fmt.Errorf("app: %w", ErrResourceNotFound)
)
