package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/auth"
	"github.com/yukikurage/portfolio-api/internal/config"
	"github.com/yukikurage/portfolio-api/internal/database"
	"github.com/yukikurage/portfolio-api/internal/repository"
	"github.com/yukikurage/portfolio-api/internal/router"
	"github.com/yukikurage/portfolio-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	setupLogger(cfg)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(database.GetDB()); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Token revocation lives in Redis when configured
	var revocations auth.RevocationStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, keeping revoked tokens in memory")
		} else {
			revocations = auth.NewRedisRevocationStore(client)
			logrus.WithField("addr", cfg.RedisAddr).Info("Redis connection established")
		}
	}
	if cfg.JWTSecret == "default-secret-key-change-me" {
		logrus.Warn("JWT_SECRET is not set, using the default secret")
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, revocations)

	// Initialize services
	db := database.GetDB()
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens)
	portfolioService := services.NewPortfolioService(repository.NewPortfolioRepository(db))

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logrus.WithError(err).Fatal("Failed to seed admin user")
		}
	}

	r := router.SetupRouter(router.Dependencies{
		DB:                 db,
		AuthService:        authService,
		PortfolioService:   portfolioService,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	logrus.Info("Server exited")
}

func setupLogger(cfg *config.Config) {
	if cfg.GinMode == gin.ReleaseMode {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
