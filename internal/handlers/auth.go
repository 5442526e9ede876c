package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/dto"
	apierrors "github.com/yukikurage/portfolio-api/internal/errors"
	"github.com/yukikurage/portfolio-api/internal/middleware"
	"github.com/yukikurage/portfolio-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Username string `json:"username"`
		FullName string `json:"full_name"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	logrus.WithField("user_id", user.ID).Info("User registered")
	apierrors.Success(c, "User registered successfully", dto.RegisteredDTO{UserID: user.ID})
}

// Login authenticates a user and issues a bearer token. Both a JSON body
// {email, password} and an OAuth2 password form (username=<email>) are accepted.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" form:"username"`
		Password string `json:"password" form:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil || req.Email == "" || req.Password == "" {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenDTO{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		UserID:      result.User.ID,
	})
}

// Logout revokes the bearer token the request was made with.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), identity); err != nil {
		respondUnexpectedError(c, err)
		return
	}

	apierrors.Success(c, "Logged out successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "Incorrect email or password")
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.Unauthorized(c, "Could not validate credentials")
	case errors.Is(err, services.ErrInactiveUser):
		apierrors.Forbidden(c, "Inactive user")
	case errors.Is(err, services.ErrAdminRequired):
		apierrors.Forbidden(c, "Admin access required")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	default:
		respondUnexpectedError(c, err)
	}
}
