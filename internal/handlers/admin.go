package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/dto"
	apierrors "github.com/yukikurage/portfolio-api/internal/errors"
	"github.com/yukikurage/portfolio-api/internal/middleware"
	"github.com/yukikurage/portfolio-api/internal/services"
)

// AdminHandler serves the admin-only endpoints.
type AdminHandler struct {
	authService      *services.AuthService
	portfolioService *services.PortfolioService
}

func NewAdminHandler(authService *services.AuthService, portfolioService *services.PortfolioService) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		portfolioService: portfolioService,
	}
}

// ListUsers returns every registered user
func (h *AdminHandler) ListUsers(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), identity)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// ReconcileUser rebuilds a user's portfolio list from the portfolios table
func (h *AdminHandler) ReconcileUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	identifiers, err := h.portfolioService.Reconcile(c.Request.Context(), userID)
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"portfolios": len(identifiers),
	}).Info("Reconciled portfolio list")

	portfolios := []string(identifiers)
	if portfolios == nil {
		portfolios = []string{}
	}
	apierrors.Success(c, "Portfolio list reconciled", dto.ReconciledDTO{
		UserID:     userID,
		Portfolios: portfolios,
	})
}
