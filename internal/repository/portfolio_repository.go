package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/portfolio-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreatePortfolio is returned when inserting the portfolio row fails.
	ErrCreatePortfolio = errors.New("portfolio repository: create portfolio failed")
	// ErrAppendIdentifier is returned when adding the identifier to the owner's list fails.
	ErrAppendIdentifier = errors.New("portfolio repository: append identifier failed")
	// ErrDeletePortfolio is returned when deleting the portfolio row fails.
	ErrDeletePortfolio = errors.New("portfolio repository: delete portfolio failed")
	// ErrRemoveIdentifier is returned when removing the identifier from the owner's list fails.
	ErrRemoveIdentifier = errors.New("portfolio repository: remove identifier failed")
)

// GormPortfolioRepository is a GORM implementation of PortfolioRepository
type GormPortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &GormPortfolioRepository{db: db}
}

// CreateForOwner inserts the portfolio and appends its identifier to the owner's
// list in a single transaction. A duplicate identifier surfaces as
// gorm.ErrDuplicatedKey wrapped in ErrCreatePortfolio.
func (r *GormPortfolioRepository) CreateForOwner(ctx context.Context, portfolio *models.Portfolio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(portfolio).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreatePortfolio, err)
		}

		err := rewriteIdentifiers(tx, portfolio.UserID, func(list models.IdentifierList) models.IdentifierList {
			if list.Contains(portfolio.UniqueIdentifier) {
				return list
			}
			return append(list, portfolio.UniqueIdentifier)
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAppendIdentifier, err)
		}

		return nil
	})
}

// DeleteOwned deletes the owner's portfolio and drops its identifier from the
// owner's list in a single transaction. gorm.ErrRecordNotFound is returned when
// the owner has no portfolio with that identifier.
func (r *GormPortfolioRepository) DeleteOwned(ctx context.Context, ownerID uint64, identifier string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("unique_identifier = ? AND user_id = ?", identifier, ownerID).
			Delete(&models.Portfolio{})
		if result.Error != nil {
			return fmt.Errorf("%w: %w", ErrDeletePortfolio, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		err := rewriteIdentifiers(tx, ownerID, func(list models.IdentifierList) models.IdentifierList {
			return list.Without(identifier)
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRemoveIdentifier, err)
		}

		return nil
	})
}

// rewriteIdentifiers locks the owner's row, applies fn to its identifier list
// and stores the result. The user row's updated_at is not touched.
func rewriteIdentifiers(tx *gorm.DB, ownerID uint64, fn func(models.IdentifierList) models.IdentifierList) error {
	var owner models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "portfolios").
		First(&owner, ownerID).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("id = ?", ownerID).
		UpdateColumn("portfolios", fn(owner.Portfolios)).Error
}

// FindOwned finds a portfolio by identifier and owner
func (r *GormPortfolioRepository) FindOwned(ctx context.Context, ownerID uint64, identifier string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.WithContext(ctx).
		Where("unique_identifier = ? AND user_id = ?", identifier, ownerID).
		First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// FindPublished finds a published portfolio by identifier
func (r *GormPortfolioRepository) FindPublished(ctx context.Context, identifier string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.WithContext(ctx).
		Where("unique_identifier = ? AND is_published = ?", identifier, true).
		First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// ListByOwner lists portfolios of an owner in creation order
func (r *GormPortfolioRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id").
		Find(&portfolios).Error; err != nil {
		return nil, err
	}
	return portfolios, nil
}

// Update writes only the provided columns so that concurrent view
// increments are never overwritten.
func (r *GormPortfolioRepository) Update(ctx context.Context, id uint64, fields PortfolioFields) error {
	updates := map[string]interface{}{
		"updated_at": fields.UpdatedAt,
	}
	if fields.Data != nil {
		updates["data"] = *fields.Data
	}
	if fields.IsPublished != nil {
		updates["is_published"] = *fields.IsPublished
	}

	return r.db.WithContext(ctx).
		Model(&models.Portfolio{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

// IncrementViews adds one view in the database. The portfolio must still be
// published; otherwise gorm.ErrRecordNotFound is returned.
func (r *GormPortfolioRepository) IncrementViews(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Portfolio{}).
		Where("id = ? AND is_published = ?", id, true).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reconcile replaces the owner's identifier list with the identifiers of the
// portfolios the owner actually has, in creation order.
func (r *GormPortfolioRepository) Reconcile(ctx context.Context, ownerID uint64) (models.IdentifierList, error) {
	var identifiers models.IdentifierList
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []string
		if err := tx.Model(&models.Portfolio{}).
			Where("user_id = ?", ownerID).
			Order("id").
			Pluck("unique_identifier", &owned).Error; err != nil {
			return err
		}

		identifiers = models.IdentifierList(owned)
		if identifiers == nil {
			identifiers = models.IdentifierList{}
		}

		return rewriteIdentifiers(tx, ownerID, func(models.IdentifierList) models.IdentifierList {
			return identifiers
		})
	})
	if err != nil {
		return nil, err
	}
	return identifiers, nil
}
