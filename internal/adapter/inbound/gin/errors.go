package gin

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/domain/authz"
	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/domain/org"
	apperrors "github.com/uniedit/orgauth/internal/utils/errors"
)

// Invalid, expired and already used invitations share one response so the
// caller cannot tell them apart.
const inviteInvalidMessage = "invitation is invalid or has expired"

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= 500 {
		_ = c.Error(err)
	} else if errors.Is(err, invitation.ErrAlreadyResolved) {
		// Kept for the request log only.
		_ = c.Error(errors.New("invite_already_resolved"))
	}
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	// Authentication and authorization
	case errors.Is(err, authz.ErrUnauthenticated),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return apperrors.Unauthorized("")
	case errors.Is(err, authz.ErrForbidden),
		errors.Is(err, org.ErrInsufficientPermission):
		return apperrors.Forbidden("")
	case errors.Is(err, org.ErrCannotAssignRole):
		return apperrors.Forbidden("cannot assign a role above your own")
	case errors.Is(err, org.ErrResourceNotFound):
		return apperrors.NotFound("resource")

	// Organizations
	case errors.Is(err, org.ErrOrganizationNotFound):
		return apperrors.NotFound("organization")
	case errors.Is(err, org.ErrMemberNotFound):
		return apperrors.NotFound("member")
	case errors.Is(err, org.ErrLastOwner):
		return apperrors.Conflict("organization must keep at least one owner")
	case errors.Is(err, org.ErrInvalidName):
		return apperrors.BadRequest("name must be 1 to 100 characters")
	case errors.Is(err, org.ErrInvalidRole):
		return apperrors.BadRequest("role must be one of owner, admin, member")

	// Invitations
	case errors.Is(err, invitation.ErrInvalidOrExpiredToken),
		errors.Is(err, invitation.ErrAlreadyResolved):
		return apperrors.Gone("INVITE_INVALID", inviteInvalidMessage)
	case errors.Is(err, invitation.ErrInvitationNotFound):
		return apperrors.NotFound("invitation")
	case errors.Is(err, invitation.ErrInvitationNotPending):
		return apperrors.Conflict("invitation is no longer pending")
	case errors.Is(err, invitation.ErrIssueConflict):
		return apperrors.Conflict("another invitation for this email is being issued")
	case errors.Is(err, invitation.ErrInvalidEmail):
		return apperrors.BadRequest("invalid email address")
	case errors.Is(err, invitation.ErrNoRecipients):
		return apperrors.BadRequest("at least one email is required")
	case errors.Is(err, invitation.ErrBatchTooLarge):
		return apperrors.BadRequest("too many emails in one request")
	case errors.Is(err, invitation.ErrInvalidCursor):
		return apperrors.BadRequest("invalid cursor")
	case errors.Is(err, invitation.ErrRateLimited):
		return apperrors.RateLimited("too many invitations, try again later")

	default:
		return apperrors.Internal("internal server error", err)
	}
}

// badRequest renders a binding or path parameter error.
func badRequest(c *gin.Context, message string) {
	appErr := apperrors.BadRequest(message)
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}
