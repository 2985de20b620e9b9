package gin

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/authz"
	"github.com/uniedit/orgauth/internal/domain/org"
	apperrors "github.com/uniedit/orgauth/internal/utils/errors"
	"github.com/uniedit/orgauth/internal/utils/middleware"
)

// Guards builds route middleware from guard descriptors.
type Guards struct {
	authorizer middleware.Authorizer
}

// NewGuards creates a new guard middleware factory.
func NewGuards(authorizer middleware.Authorizer) *Guards {
	return &Guards{authorizer: authorizer}
}

// Authenticated requires a valid token and nothing else.
func (g *Guards) Authenticated() gin.HandlerFunc {
	return middleware.RequireAuth(g.authorizer, handleError)
}

// Require authenticates the caller and evaluates the guards built by fn.
func (g *Guards) Require(fn middleware.GuardFunc) gin.HandlerFunc {
	return middleware.RequireGuards(g.authorizer, handleError, fn)
}

// orgMember guards on the :org_id path parameter.
func orgMember(minRole org.Role) middleware.GuardFunc {
	return func(c *gin.Context) ([]authz.Guard, error) {
		orgID, err := pathUUID(c, "org_id")
		if err != nil {
			return nil, err
		}
		return []authz.Guard{withMin(authz.OrgMember(orgID), minRole)}, nil
	}
}

// teamMember guards on the :team_id path parameter.
func teamMember(minRole org.Role) middleware.GuardFunc {
	return func(c *gin.Context) ([]authz.Guard, error) {
		teamID, err := pathUUID(c, "team_id")
		if err != nil {
			return nil, err
		}
		return []authz.Guard{withMin(authz.TeamMember(teamID), minRole)}, nil
	}
}

// appMember guards on the :app_id path parameter.
func appMember(minRole org.Role) middleware.GuardFunc {
	return func(c *gin.Context) ([]authz.Guard, error) {
		appID, err := pathUUID(c, "app_id")
		if err != nil {
			return nil, err
		}
		return []authz.Guard{withMin(authz.AppMember(appID), minRole)}, nil
	}
}

// selfOrRole lets the :user_id member act on themselves, or anyone holding
// minRole in :org_id.
func selfOrRole(minRole org.Role) middleware.GuardFunc {
	return func(c *gin.Context) ([]authz.Guard, error) {
		orgID, err := pathUUID(c, "org_id")
		if err != nil {
			return nil, err
		}
		userID, err := pathUUID(c, "user_id")
		if err != nil {
			return nil, err
		}
		return []authz.Guard{authz.SelfOrRole(userID, orgID, minRole)}, nil
	}
}

func withMin(g authz.Guard, minRole org.Role) authz.Guard {
	if minRole == "" {
		return g
	}
	return g.AtLeast(minRole)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
