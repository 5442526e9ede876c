package repository

import (
	"context"
	"time"

	"github.com/yukikurage/portfolio-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by exact email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsername finds a user by exact username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns every user
	List(ctx context.Context) ([]models.User, error)

	// UpdateRole changes a user's role
	UpdateRole(ctx context.Context, id uint64, role models.Role) error
}

// PortfolioRepository defines the interface for portfolio data access.
//
// CreateForOwner and DeleteOwned also maintain the owner's denormalized
// portfolio list; both writes commit or roll back together.
type PortfolioRepository interface {
	// CreateForOwner inserts the portfolio and appends its identifier to the owner's list
	CreateForOwner(ctx context.Context, portfolio *models.Portfolio) error

	// DeleteOwned deletes the owner's portfolio and removes its identifier from the owner's list
	DeleteOwned(ctx context.Context, ownerID uint64, identifier string) error

	// FindOwned finds a portfolio by identifier that belongs to ownerID
	FindOwned(ctx context.Context, ownerID uint64, identifier string) (*models.Portfolio, error)

	// FindPublished finds a published portfolio by identifier
	FindPublished(ctx context.Context, identifier string) (*models.Portfolio, error)

	// ListByOwner lists every portfolio owned by ownerID
	ListByOwner(ctx context.Context, ownerID uint64) ([]models.Portfolio, error)

	// Update writes the given fields of a portfolio and refreshes updated_at
	Update(ctx context.Context, id uint64, fields PortfolioFields) error

	// IncrementViews atomically adds one view to a published portfolio
	IncrementViews(ctx context.Context, id uint64) error

	// Reconcile rebuilds the owner's identifier list from the portfolios table
	Reconcile(ctx context.Context, ownerID uint64) (models.IdentifierList, error)
}

// PortfolioFields holds the owner-mutable fields of a portfolio. Nil fields are left untouched.
type PortfolioFields struct {
	Data        *models.PortfolioData
	IsPublished *bool
	UpdatedAt   time.Time
}
