package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/portfolio-api/internal/errors"
	"github.com/yukikurage/portfolio-api/internal/models"
)

// RequireRole allows the request through only when the authenticated user has
// one of the given roles. It must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := GetIdentity(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		if len(roles) == 1 && roles[0] == models.RoleAdmin {
			apierrors.Forbidden(c, "Admin access required")
		} else {
			apierrors.Forbidden(c, "")
		}
		c.Abort()
	}
}
