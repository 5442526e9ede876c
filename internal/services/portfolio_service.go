package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/constants"
	"github.com/yukikurage/portfolio-api/internal/metrics"
	"github.com/yukikurage/portfolio-api/internal/models"
	"github.com/yukikurage/portfolio-api/internal/repository"
	"github.com/yukikurage/portfolio-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrPortfolioNotFound is returned both when the portfolio does not exist and
	// when it belongs to someone else, so callers cannot probe other users' identifiers.
	ErrPortfolioNotFound = errors.New("portfolio not found or access denied")
	// ErrPublicPortfolioNotFound covers unknown and unpublished portfolios alike.
	ErrPublicPortfolioNotFound = errors.New("portfolio not found or not published")
	// ErrIdentifierExhausted is returned when every generated identifier collided.
	ErrIdentifierExhausted = errors.New("failed to allocate a unique portfolio identifier")
)

// PortfolioService enforces ownership and visibility rules for portfolios.
type PortfolioService struct {
	portfolioRepo      repository.PortfolioRepository
	generateIdentifier func(name string, ownerID uint64) (string, error)
	now                func() time.Time
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(portfolioRepo repository.PortfolioRepository) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:      portfolioRepo,
		generateIdentifier: utils.GenerateUniqueIdentifier,
		now:                time.Now,
	}
}

// CreatePortfolioInput represents parameters to create a portfolio.
type CreatePortfolioInput struct {
	OwnerID  uint64
	Template string
	Data     json.RawMessage
}

// UpdatePortfolioInput represents an owner update. Absent fields are left untouched;
// Data, when present, replaces the stored payload entirely.
type UpdatePortfolioInput struct {
	Data        json.RawMessage
	IsPublished *bool
}

// Create validates the input and stores a draft portfolio under a freshly
// generated identifier, retrying with a new identifier when the unique index
// rejects one.
func (s *PortfolioService) Create(ctx context.Context, input CreatePortfolioInput) (*models.Portfolio, error) {
	var fields []FieldError
	if fe := ValidateTemplate(input.Template); fe != nil {
		fields = append(fields, *fe)
	}
	data, err := ValidatePortfolioData(input.Data)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		fields = append(fields, verr.Fields...)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid portfolio data", Fields: fields}
	}

	for attempt := 1; attempt <= constants.MaxIdentifierAttempts; attempt++ {
		identifier, err := s.generateIdentifier(data.Name, input.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate identifier: %w", err)
		}

		now := s.now()
		portfolio := &models.Portfolio{
			UniqueIdentifier: identifier,
			UserID:           input.OwnerID,
			Template:         input.Template,
			Data:             data,
			IsPublished:      false,
			Views:            0,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		err = s.portfolioRepo.CreateForOwner(ctx, portfolio)
		if err == nil {
			metrics.PortfoliosCreatedTotal.Inc()
			return portfolio, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create portfolio: %w", err)
		}

		metrics.IdentifierCollisionsTotal.Inc()
		logrus.WithFields(logrus.Fields{
			"owner_id":   input.OwnerID,
			"identifier": identifier,
			"attempt":    attempt,
		}).Warn("Portfolio identifier collision, regenerating")
	}

	return nil, ErrIdentifierExhausted
}

// GetOwned returns the owner's portfolio with the given identifier.
func (s *PortfolioService) GetOwned(ctx context.Context, ownerID uint64, identifier string) (*models.Portfolio, error) {
	portfolio, err := s.portfolioRepo.FindOwned(ctx, ownerID, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to find portfolio: %w", err)
	}
	return portfolio, nil
}

// ListOwned returns every portfolio of the owner.
func (s *PortfolioService) ListOwned(ctx context.Context, ownerID uint64) ([]models.Portfolio, error) {
	portfolios, err := s.portfolioRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return portfolios, nil
}

// Update changes the payload and/or the publish flag of an owned portfolio and
// refreshes updated_at. Concurrent updates are last-writer-wins.
func (s *PortfolioService) Update(ctx context.Context, ownerID uint64, identifier string, input UpdatePortfolioInput) error {
	portfolio, err := s.GetOwned(ctx, ownerID, identifier)
	if err != nil {
		return err
	}

	fields := repository.PortfolioFields{
		IsPublished: input.IsPublished,
		UpdatedAt:   s.now(),
	}
	if hasPayload(input.Data) {
		data, err := ValidatePortfolioData(input.Data)
		if err != nil {
			return err
		}
		fields.Data = &data
	}

	if err := s.portfolioRepo.Update(ctx, portfolio.ID, fields); err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	return nil
}

// Delete removes the owner's portfolio together with its entry in the owner's list.
func (s *PortfolioService) Delete(ctx context.Context, ownerID uint64, identifier string) error {
	if err := s.portfolioRepo.DeleteOwned(ctx, ownerID, identifier); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPortfolioNotFound
		}
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	metrics.PortfoliosDeletedTotal.Inc()
	return nil
}

// GetPublic returns a published portfolio and counts the view. The returned
// Views already includes this read.
func (s *PortfolioService) GetPublic(ctx context.Context, identifier string) (*models.Portfolio, error) {
	portfolio, err := s.portfolioRepo.FindPublished(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublicPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to find portfolio: %w", err)
	}

	if err := s.portfolioRepo.IncrementViews(ctx, portfolio.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// unpublished or deleted since the read above
			return nil, ErrPublicPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to record view: %w", err)
	}

	portfolio.Views++
	metrics.PublicViewsTotal.Inc()
	return portfolio, nil
}

// Reconcile rebuilds a user's portfolio list from the portfolios they own.
func (s *PortfolioService) Reconcile(ctx context.Context, ownerID uint64) (models.IdentifierList, error) {
	identifiers, err := s.portfolioRepo.Reconcile(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to reconcile portfolios: %w", err)
	}
	return identifiers, nil
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
