package gin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/middleware"
)

// OrgService is the organization domain as seen by HTTP handlers.
type OrgService interface {
	CreateOrganization(ctx context.Context, creatorID uuid.UUID, name string) (*org.Organization, error)
	ListMyOrganizations(ctx context.Context, userID uuid.UUID) ([]*org.MembershipWithOrg, error)
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]*org.Membership, error)
	UpdateMemberRole(ctx context.Context, orgID, actorID, targetID uuid.UUID, role org.Role) error
	RemoveMember(ctx context.Context, orgID, actorID, targetID uuid.UUID) error
	CreateTeam(ctx context.Context, orgID uuid.UUID, name string) (*org.Team, error)
	CreateApp(ctx context.Context, orgID uuid.UUID, teamID *uuid.UUID, name string) (*org.App, error)
	ResolveTeam(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error)
	ResolveApp(ctx context.Context, appID uuid.UUID) (*org.AppScope, error)
}

// OrgAdapter serves organization, membership and resource routes.
type OrgAdapter struct {
	service OrgService
	guards  *Guards
}

// NewOrgAdapter creates a new organization HTTP adapter.
func NewOrgAdapter(service OrgService, guards *Guards) *OrgAdapter {
	return &OrgAdapter{service: service, guards: guards}
}

// RegisterRoutes registers organization routes.
func (a *OrgAdapter) RegisterRoutes(r *gin.RouterGroup) {
	g := a.guards

	orgs := r.Group("/orgs")
	{
		orgs.POST("", g.Authenticated(), a.CreateOrganization)
		orgs.GET("", g.Authenticated(), a.ListMyOrganizations)

		orgs.GET("/:org_id/members", g.Require(orgMember("")), a.ListMembers)
		orgs.PATCH("/:org_id/members/:user_id", g.Require(orgMember(org.RoleAdmin)), a.UpdateMemberRole)
		orgs.DELETE("/:org_id/members/:user_id", g.Require(selfOrRole(org.RoleAdmin)), a.RemoveMember)

		orgs.POST("/:org_id/teams", g.Require(orgMember(org.RoleAdmin)), a.CreateTeam)
		orgs.POST("/:org_id/apps", g.Require(orgMember(org.RoleAdmin)), a.CreateApp)
	}

	r.GET("/teams/:team_id/access", g.Require(teamMember("")), a.TeamAccess)
	r.GET("/apps/:app_id/access", g.Require(appMember("")), a.AppAccess)
}

// CreateOrganization handles organization creation. The caller becomes owner.
//
//	@Summary		Create organization
//	@Tags			Organizations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateOrganizationRequest	true	"Organization"
//	@Success		201		{object}	org.Organization
//	@Failure		400		{object}	errors.ErrorResponse
//	@Failure		401		{object}	errors.ErrorResponse
//	@Router			/orgs [post]
func (a *OrgAdapter) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	o, err := a.service.CreateOrganization(c.Request.Context(), middleware.GetUserID(c), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

// ListMyOrganizations lists the caller's organizations with their role.
//
//	@Summary		List my organizations
//	@Tags			Organizations
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		org.MembershipWithOrg
//	@Failure		401	{object}	errors.ErrorResponse
//	@Router			/orgs [get]
func (a *OrgAdapter) ListMyOrganizations(c *gin.Context) {
	orgs, err := a.service.ListMyOrganizations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// ListMembers lists the organization's members.
//
//	@Summary		List members
//	@Tags			Organizations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			org_id	path		string	true	"Organization ID"
//	@Success		200		{array}		org.Membership
//	@Failure		403		{object}	errors.ErrorResponse
//	@Router			/orgs/{org_id}/members [get]
func (a *OrgAdapter) ListMembers(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")

	members, err := a.service.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// UpdateMemberRole changes a member's role.
//
//	@Summary		Update member role
//	@Tags			Organizations
//	@Accept			json
//	@Security		BearerAuth
//	@Param			org_id	path	string					true	"Organization ID"
//	@Param			user_id	path	string					true	"User ID"
//	@Param			request	body	UpdateMemberRoleRequest	true	"Role"
//	@Success		204
//	@Failure		403	{object}	errors.ErrorResponse
//	@Failure		409	{object}	errors.ErrorResponse
//	@Router			/orgs/{org_id}/members/{user_id} [patch]
func (a *OrgAdapter) UpdateMemberRole(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")
	targetID, err := pathUUID(c, "user_id")
	if err != nil {
		handleError(c, err)
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	role, err := org.ParseRole(req.Role)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := a.service.UpdateMemberRole(c.Request.Context(), orgID, middleware.GetUserID(c), targetID, role); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMember removes a member, or lets a member leave.
//
//	@Summary		Remove member
//	@Tags			Organizations
//	@Security		BearerAuth
//	@Param			org_id	path	string	true	"Organization ID"
//	@Param			user_id	path	string	true	"User ID"
//	@Success		204
//	@Failure		403	{object}	errors.ErrorResponse
//	@Failure		409	{object}	errors.ErrorResponse
//	@Router			/orgs/{org_id}/members/{user_id} [delete]
func (a *OrgAdapter) RemoveMember(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")
	targetID, _ := pathUUID(c, "user_id")

	if err := a.service.RemoveMember(c.Request.Context(), orgID, middleware.GetUserID(c), targetID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateTeam creates a team.
//
//	@Summary	Create team
//	@Tags		Resources
//	@Security	BearerAuth
//	@Param		org_id	path		string				true	"Organization ID"
//	@Param		request	body		CreateTeamRequest	true	"Team"
//	@Success	201		{object}	org.Team
//	@Router		/orgs/{org_id}/teams [post]
func (a *OrgAdapter) CreateTeam(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	team, err := a.service.CreateTeam(c.Request.Context(), orgID, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// CreateApp creates an app.
//
//	@Summary	Create app
//	@Tags		Resources
//	@Security	BearerAuth
//	@Param		org_id	path		string				true	"Organization ID"
//	@Param		request	body		CreateAppRequest	true	"App"
//	@Success	201		{object}	org.App
//	@Router		/orgs/{org_id}/apps [post]
func (a *OrgAdapter) CreateApp(c *gin.Context) {
	orgID, _ := pathUUID(c, "org_id")

	var req CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	app, err := a.service.CreateApp(c.Request.Context(), orgID, req.TeamID, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// TeamAccess reports the organization a team belongs to. Reaching the
// handler means the team guard passed.
func (a *OrgAdapter) TeamAccess(c *gin.Context) {
	teamID, _ := pathUUID(c, "team_id")

	orgID, err := a.service.ResolveTeam(c.Request.Context(), teamID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccessResponse{OrgID: orgID, TeamID: &teamID})
}

// AppAccess reports the team and organization an app belongs to.
func (a *OrgAdapter) AppAccess(c *gin.Context) {
	appID, _ := pathUUID(c, "app_id")

	scope, err := a.service.ResolveApp(c.Request.Context(), appID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccessResponse{OrgID: scope.OrgID, TeamID: scope.TeamID, AppID: &appID})
}
