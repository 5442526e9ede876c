package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/portfolio-api/internal/auth"
	"github.com/yukikurage/portfolio-api/internal/database"
	"github.com/yukikurage/portfolio-api/internal/models"
	"github.com/yukikurage/portfolio-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db               *gorm.DB
	tokens           *auth.TokenManager
	authService      *AuthService
	portfolioService *PortfolioService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	tokens := auth.NewTokenManager("test-secret", 30*time.Minute, nil)
	return serviceTestEnv{
		db:               db,
		tokens:           tokens,
		authService:      NewAuthService(repository.NewUserRepository(db), tokens),
		portfolioService: NewPortfolioService(repository.NewPortfolioRepository(db)),
	}
}

func (env serviceTestEnv) register(t *testing.T, email string) *models.User {
	t.Helper()

	user, err := env.authService.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "Abcd1234",
	})
	require.NoError(t, err)
	return user
}

func (env serviceTestEnv) reloadUser(t *testing.T, id uint64) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, env.db.First(&user, id).Error)
	return &user
}

const validPortfolioData = `{
	"name": "A",
	"skills": ["x"],
	"hobbies": [],
	"about": "hi",
	"contactDetails": {"email": "a@x.com", "mobile": "+1234567"},
	"template_selected": "modern"
}`
