package gin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/middleware"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

// InvitationService is the invitation domain as seen by HTTP handlers.
type InvitationService interface {
	CreateInvites(ctx context.Context, orgID uuid.UUID, emails []string, role org.Role, issuedBy uuid.UUID) ([]*invitation.Issued, error)
	ListPendingForOrg(ctx context.Context, orgID uuid.UUID, cursor string, pageSize int) (*pagination.Page[*invitation.Invitation], error)
	ListPendingForUser(ctx context.Context, email, cursor string, pageSize int) (*pagination.Page[*invitation.UserInvite], error)
	Accept(ctx context.Context, token string, actorID uuid.UUID, actorEmail string) (*org.Membership, error)
	Reject(ctx context.Context, token string, actorID uuid.UUID, actorEmail string) error
	Revoke(ctx context.Context, orgID, invitationID, actorID uuid.UUID) error
	Config() *invitation.Config
}

// InvitationAdapter serves invitation routes.
type InvitationAdapter struct {
	service     InvitationService
	guards      *Guards
	respondRate gin.HandlerFunc
}

// NewInvitationAdapter creates a new invitation HTTP adapter. Accept and
// reject are limited per caller by limiter; a nil limiter disables that.
func NewInvitationAdapter(service InvitationService, guards *Guards, limiter middleware.Limiter, limit middleware.RateLimitConfig) *InvitationAdapter {
	return &InvitationAdapter{
		service:     service,
		guards:      guards,
		respondRate: middleware.RateLimit(limiter, limit),
	}
}

// RegisterRoutes registers invitation routes.
func (a *InvitationAdapter) RegisterRoutes(r *gin.RouterGroup) {
	g := a.guards

	orgInvites := r.Group("/orgs/:org_id/invitations", g.Require(orgMember(org.RoleAdmin)))
	{
		orgInvites.POST("", a.CreateInvitations)
		orgInvites.GET("", a.ListOrgInvitations)
		orgInvites.DELETE("/:invitation_id", a.RevokeInvitation)
	}

	mine := r.Group("/invitations", g.Authenticated())
	{
		mine.GET("", a.ListMyInvitations)
		mine.POST("/accept", a.respondRate, a.AcceptInvitation)
		mine.POST("/reject", a.respondRate, a.RejectInvitation)
	}
}

// CreateInvitations issues invitations for a batch of emails.
//
//	@Summary		Invite members
//	@Description	Issues one invitation per distinct email. A pending invitation for the same email is superseded.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			org_id	path		string						true	"Organization ID"
//	@Param			request	body		CreateInvitationsRequest	true	"Recipients"
//	@Success		201		{object}	map[string][]IssuedInvitationResponse
//	@Failure		400		{object}	errors.ErrorResponse
//	@Failure		403		{object}	errors.ErrorResponse
//	@Failure		429		{object}	errors.ErrorResponse
//	@Router			/orgs/{org_id}/invitations [post]
func (a *InvitationAdapter) CreateInvitations(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")

	var req CreateInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	role, err := org.ParseRole(req.Role)
	if err != nil {
		handleError(c, err)
		return
	}

	issued, err := a.service.CreateInvites(c.Request.Context(), orgID, req.Emails, role, middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	ttl := a.service.Config().TTL
	out := make([]IssuedInvitationResponse, 0, len(issued))
	for _, is := range issued {
		out = append(out, IssuedInvitationResponse{
			InvitationResponse: toInvitationResponse(is.Invitation, ttl),
			Token:              is.Token,
			AcceptURL:          is.AcceptURL,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"invitations": out})
}

// ListOrgInvitations lists the organization's pending invitations.
//
//	@Summary	List pending invitations
//	@Tags		Invitations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		org_id		path		string	true	"Organization ID"
//	@Param		cursor		query		string	false	"Cursor from a previous page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	PageResponse[InvitationResponse]
//	@Router		/orgs/{org_id}/invitations [get]
func (a *InvitationAdapter) ListOrgInvitations(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")

	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	page, err := a.service.ListPendingForOrg(c.Request.Context(), orgID, req.Cursor, req.PageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	ttl := a.service.Config().TTL
	c.JSON(http.StatusOK, toPageResponse(page, func(inv *invitation.Invitation) InvitationResponse {
		return toInvitationResponse(inv, ttl)
	}))
}

// RevokeInvitation revokes a pending invitation.
//
//	@Summary	Revoke invitation
//	@Tags		Invitations
//	@Security	BearerAuth
//	@Param		org_id			path	string	true	"Organization ID"
//	@Param		invitation_id	path	string	true	"Invitation ID"
//	@Success	204
//	@Failure	404	{object}	errors.ErrorResponse
//	@Failure	409	{object}	errors.ErrorResponse
//	@Router		/orgs/{org_id}/invitations/{invitation_id} [delete]
func (a *InvitationAdapter) RevokeInvitation(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")
	invitationID, err := pathUUID(c, "invitation_id")
	if err != nil {
		handleError(c, err)
		return
	}

	if err := a.service.Revoke(c.Request.Context(), orgID, invitationID, middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMyInvitations lists pending invitations addressed to the caller.
//
//	@Summary	List my invitations
//	@Tags		Invitations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		cursor		query		string	false	"Cursor from a previous page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	PageResponse[UserInvitationResponse]
//	@Router		/invitations [get]
func (a *InvitationAdapter) ListMyInvitations(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	page, err := a.service.ListPendingForUser(c.Request.Context(), middleware.GetEmail(c), req.Cursor, req.PageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	ttl := a.service.Config().TTL
	c.JSON(http.StatusOK, toPageResponse(page, func(ui *invitation.UserInvite) UserInvitationResponse {
		return UserInvitationResponse{
			InvitationResponse: toInvitationResponse(ui.Invitation, ttl),
			OrgName:            ui.OrgName,
			Token:              ui.Token,
			AcceptURL:          ui.AcceptURL,
		}
	}))
}

// AcceptInvitation joins the organization named by the token.
//
//	@Summary	Accept invitation
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		TokenRequest	true	"Invitation token"
//	@Success	200		{object}	AcceptInvitationResponse
//	@Failure	410		{object}	errors.ErrorResponse
//	@Failure	429		{object}	errors.ErrorResponse
//	@Router		/invitations/accept [post]
func (a *InvitationAdapter) AcceptInvitation(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	membership, err := a.service.Accept(c.Request.Context(), req.Token, middleware.GetUserID(c), middleware.GetEmail(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptInvitationResponse{Membership: membership})
}

// RejectInvitation declines the invitation named by the token.
//
//	@Summary	Reject invitation
//	@Tags		Invitations
//	@Accept		json
//	@Security	BearerAuth
//	@Param		request	body	TokenRequest	true	"Invitation token"
//	@Success	204
//	@Failure	410	{object}	errors.ErrorResponse
//	@Router		/invitations/reject [post]
func (a *InvitationAdapter) RejectInvitation(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := a.service.Reject(c.Request.Context(), req.Token, middleware.GetUserID(c), middleware.GetEmail(c)); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
