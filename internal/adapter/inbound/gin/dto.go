package gin

import (
	"time"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

// ========== Organization DTOs ==========

// CreateOrganizationRequest is the body of POST /orgs.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateMemberRoleRequest is the body of PATCH /orgs/:org_id/members/:user_id.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateTeamRequest is the body of POST /orgs/:org_id/teams.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateAppRequest is the body of POST /orgs/:org_id/apps. Omitting team_id
// creates an org-wide app.
type CreateAppRequest struct {
	Name   string     `json:"name" binding:"required"`
	TeamID *uuid.UUID `json:"team_id"`
}

// AccessResponse confirms the caller may access a team or app.
type AccessResponse struct {
	OrgID  uuid.UUID  `json:"org_id"`
	TeamID *uuid.UUID `json:"team_id,omitempty"`
	AppID  *uuid.UUID `json:"app_id,omitempty"`
}

// ========== Invitation DTOs ==========

// CreateInvitationsRequest is the body of POST /orgs/:org_id/invitations.
type CreateInvitationsRequest struct {
	Emails []string `json:"emails" binding:"required,min=1"`
	Role   string   `json:"role" binding:"required"`
}

// TokenRequest carries an invitation token.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ListRequest holds cursor pagination query parameters.
type ListRequest = pagination.Request

// InvitationResponse is the public view of an invitation. The token is
// only included for the issuer at creation and for the recipient.
type InvitationResponse struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Email     string    `json:"email"`
	Role      org.Role  `json:"role"`
	Status    string    `json:"status"`
	IssuedBy  uuid.UUID `json:"issued_by"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssuedInvitationResponse is returned to the issuer.
type IssuedInvitationResponse struct {
	InvitationResponse
	Token     string `json:"token"`
	AcceptURL string `json:"accept_url,omitempty"`
}

// UserInvitationResponse is a pending invitation as seen by its recipient.
type UserInvitationResponse struct {
	InvitationResponse
	OrgName   string `json:"org_name"`
	Token     string `json:"token"`
	AcceptURL string `json:"accept_url,omitempty"`
}

// PageResponse is one page of a cursor-paginated listing. NextCursor is
// null on the last page.
type PageResponse[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

// AcceptInvitationResponse is returned after joining an organization.
type AcceptInvitationResponse struct {
	Membership *org.Membership `json:"membership"`
}

// ========== Account DTOs ==========

// DevTokenRequest is the body of POST /dev/token.
type DevTokenRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Email  string     `json:"email" binding:"required,email"`
	Name   string     `json:"name"`
}

func toInvitationResponse(inv *invitation.Invitation, ttl time.Duration) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID(),
		OrgID:     inv.OrgID(),
		Email:     inv.Email(),
		Role:      inv.Role(),
		Status:    inv.Status().String(),
		IssuedBy:  inv.IssuedBy(),
		SentAt:    inv.SentAt(),
		ExpiresAt: inv.ExpiresAt(ttl),
	}
}

func toPageResponse[S, T any](page *pagination.Page[S], convert func(S) T) PageResponse[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}

	resp := PageResponse[T]{Items: items}
	if page.HasMore() {
		next := page.NextCursor
		resp.NextCursor = &next
	}
	return resp
}
