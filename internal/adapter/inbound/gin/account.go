package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/utils/middleware"
)

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(profile auth.Profile) (*auth.LoginResult, error)
}

// AccountAdapter serves caller identity routes.
type AccountAdapter struct {
	guards *Guards
	issuer TokenIssuer
}

// NewAccountAdapter creates a new account HTTP adapter. A nil issuer
// leaves POST /dev/token unregistered.
func NewAccountAdapter(guards *Guards, issuer TokenIssuer) *AccountAdapter {
	return &AccountAdapter{guards: guards, issuer: issuer}
}

// RegisterRoutes registers account routes.
func (a *AccountAdapter) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", a.guards.Authenticated(), a.Me)
	if a.issuer != nil {
		r.POST("/dev/token", a.DevToken)
	}
}

// Me returns the authenticated identity.
//
//	@Summary	Current identity
//	@Tags		Account
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	auth.Identity
//	@Failure	401	{object}	errors.ErrorResponse
//	@Router		/me [get]
func (a *AccountAdapter) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetIdentity(c))
}

// DevToken mints a token for any profile. Development only.
//
//	@Summary	Issue development token
//	@Tags		Account
//	@Accept		json
//	@Produce	json
//	@Param		request	body		DevTokenRequest	true	"Profile"
//	@Success	200		{object}	auth.LoginResult
//	@Router		/dev/token [post]
func (a *AccountAdapter) DevToken(c *gin.Context) {
	var req DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	profile := auth.Profile{UserID: uuid.New(), Email: req.Email, Name: req.Name}
	if req.UserID != nil {
		profile.UserID = *req.UserID
	}

	result, err := a.issuer.Issue(profile)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
