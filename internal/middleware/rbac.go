package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

// RequireRoles admits principals holding at least one grant of the listed
// roles, for any direction. Appeal-level scoping happens in the services.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, g := range principal.Grants {
			if _, ok := allowed[g.Role]; ok {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireAnyGrant admits principals holding any council role.
func RequireAnyGrant() gin.HandlerFunc {
	return RequireRoles(models.RoleMember, models.RoleLead, models.RoleBoard, models.RoleStaff)
}
