package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/constants"
	apierrors "github.com/yukikurage/portfolio-api/internal/errors"
	"github.com/yukikurage/portfolio-api/internal/services"
)

const contextKeyIdentity = "identity"

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	VerifyToken(ctx context.Context, token string) (*services.Identity, error)
}

// RequireAuth checks the Authorization: Bearer header
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		identity, err := authenticator.VerifyToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidToken):
				apierrors.Unauthorized(c, "Could not validate credentials")
			case errors.Is(err, services.ErrInactiveUser):
				apierrors.Forbidden(c, "Inactive user")
			default:
				logrus.WithError(err).Error("Failed to verify bearer token")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		// Store identity in context for easy access in handlers
		SetIdentity(c, identity)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	v, ok := userID.(uint64)
	return v, ok
}

// GetIdentity retrieves the resolved identity from context
func GetIdentity(c *gin.Context) (*services.Identity, bool) {
	v, exists := c.Get(contextKeyIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*services.Identity)
	return identity, ok
}

// SetIdentity stores identity the way RequireAuth does (used for testing)
func SetIdentity(c *gin.Context, identity *services.Identity) {
	c.Set(contextKeyIdentity, identity)
	c.Set(constants.ContextKeyUserID, identity.UserID)
	c.Set(constants.ContextKeyUserRole, identity.Role)
	c.Set(constants.ContextKeyTokenID, identity.TokenID)
	c.Set(constants.ContextKeyTokenExpiry, identity.TokenExpiresAt)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
