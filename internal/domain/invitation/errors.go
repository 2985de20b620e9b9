package invitation

import (
	"errors"

	"github.com/uniedit/orgauth/internal/utils/pagination"
)

// Domain errors for the invitation module.
var (
	// Token errors. Both are rendered to callers as the same message.
	ErrInvalidOrExpiredToken = errors.New("invitation token is invalid or expired")
	ErrAlreadyResolved       = errors.New("invitation has already been resolved")

	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is not pending")
	ErrIssueConflict        = errors.New("concurrent invitation for the same email")

	// Input errors
	ErrInvalidEmail  = errors.New("invalid email")
	ErrNoRecipients  = errors.New("no recipients")
	ErrBatchTooLarge = errors.New("too many recipients")
	ErrInvalidCursor = pagination.ErrInvalidCursor
	ErrRateLimited   = errors.New("too many invitations, try again later")
	ErrMissingSecret = errors.New("invitation token secret is required")
)
