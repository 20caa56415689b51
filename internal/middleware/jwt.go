package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/logger"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing the request principal.
	ContextUserKey = "currentUser"
	// ContextClaimsKey is the gin context key storing validated token claims.
	ContextClaimsKey = "tokenClaims"
)

// Authenticator validates tokens and resolves their principal.
type Authenticator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
	Principal(ctx context.Context, claims *models.JWTClaims) (*models.Principal, error)
}

// JWT protects routes by requiring a valid access token. The principal with
// its current role grants is stored under ContextUserKey.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		principal, err := auth.Principal(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextUserKey, principal)
		c.Set(logger.UserIDKey, principal.UserID)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}
