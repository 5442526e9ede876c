package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/portfolio-api/internal/handlers"
	"github.com/yukikurage/portfolio-api/internal/middleware"
	"github.com/yukikurage/portfolio-api/internal/models"
	"github.com/yukikurage/portfolio-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies bundles everything the route table needs.
type Dependencies struct {
	DB                 *gorm.DB
	AuthService        *services.AuthService
	PortfolioService   *services.PortfolioService
	CORSAllowedOrigins []string
}

// SetupRouter builds the gin engine with middleware and every route.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())

	if len(deps.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	portfolioHandler := handlers.NewPortfolioHandler(deps.PortfolioService)
	adminHandler := handlers.NewAdminHandler(deps.AuthService, deps.PortfolioService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	requireAuth := middleware.RequireAuth(deps.AuthService)

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", requireAuth, authHandler.Logout)
	r.GET("/users/me", requireAuth, authHandler.GetCurrentUser)

	// Portfolio routes (protected)
	portfolios := r.Group("/portfolios")
	portfolios.Use(requireAuth)
	{
		portfolios.POST("", portfolioHandler.CreatePortfolio)
		portfolios.GET("", portfolioHandler.ListPortfolios)
		portfolios.GET("/:identifier", portfolioHandler.GetPortfolio)
		portfolios.PUT("/:identifier", portfolioHandler.UpdatePortfolio)
		portfolios.DELETE("/:identifier", portfolioHandler.DeletePortfolio)
	}

	// Public portfolio view
	r.GET("/p/:identifier", portfolioHandler.GetPublicPortfolio)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(requireAuth, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/reconcile", adminHandler.ReconcileUser)
	}

	return r
}
