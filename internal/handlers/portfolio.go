package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/portfolio-api/internal/dto"
	apierrors "github.com/yukikurage/portfolio-api/internal/errors"
	"github.com/yukikurage/portfolio-api/internal/middleware"
	"github.com/yukikurage/portfolio-api/internal/services"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

func NewPortfolioHandler(portfolioService *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// CreatePortfolio stores a new draft portfolio for the current user
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreatePortfolioRequest struct {
		Template string          `json:"template"`
		Data     json.RawMessage `json:"data"`
	}

	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	portfolio, err := h.portfolioService.Create(c.Request.Context(), services.CreatePortfolioInput{
		OwnerID:  userID,
		Template: req.Template,
		Data:     req.Data,
	})
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	apierrors.Success(c, "Portfolio created successfully", dto.ToPortfolioCreatedDTO(*portfolio))
}

// ListPortfolios returns every portfolio owned by the current user
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	portfolios, err := h.portfolioService.ListOwned(c.Request.Context(), userID)
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPortfolioDTOs(portfolios))
}

// GetPortfolio returns one portfolio owned by the current user
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	portfolio, err := h.portfolioService.GetOwned(c.Request.Context(), userID, c.Param("identifier"))
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPortfolioDTO(*portfolio))
}

// UpdatePortfolio replaces the payload and/or toggles publication
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdatePortfolioRequest struct {
		Data        json.RawMessage `json:"data"`
		IsPublished *bool           `json:"is_published"`
		// camelCase spelling sent by older frontends
		IsPublishedAlt *bool `json:"isPublished"`
	}

	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	isPublished := req.IsPublished
	if isPublished == nil {
		isPublished = req.IsPublishedAlt
	}

	err := h.portfolioService.Update(c.Request.Context(), userID, c.Param("identifier"), services.UpdatePortfolioInput{
		Data:        req.Data,
		IsPublished: isPublished,
	})
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	apierrors.Success(c, "Portfolio updated successfully", nil)
}

// DeletePortfolio removes a portfolio owned by the current user
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.portfolioService.Delete(c.Request.Context(), userID, c.Param("identifier")); err != nil {
		respondPortfolioError(c, err)
		return
	}

	apierrors.Success(c, "Portfolio deleted successfully", nil)
}

// GetPublicPortfolio serves a published portfolio to anonymous visitors and counts the view
func (h *PortfolioHandler) GetPublicPortfolio(c *gin.Context) {
	portfolio, err := h.portfolioService.GetPublic(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		respondPortfolioError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPublicPortfolioDTO(*portfolio))
}

func respondPortfolioError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrPortfolioNotFound):
		apierrors.NotFound(c, "Portfolio not found or access denied")
	case errors.Is(err, services.ErrPublicPortfolioNotFound):
		apierrors.NotFound(c, "Portfolio not found or not published")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		respondUnexpectedError(c, err)
	}
}
