package dto

import (
	"fmt"
	"time"

	"github.com/yukikurage/portfolio-api/internal/models"
)

// PortfolioDTO represents an owned portfolio in API responses
type PortfolioDTO struct {
	ID               uint64               `json:"id"`
	UniqueIdentifier string               `json:"unique_identifier"`
	UserID           uint64               `json:"user_id"`
	Template         string               `json:"template"`
	Data             models.PortfolioData `json:"data"`
	IsPublished      bool                 `json:"is_published"`
	Views            int64                `json:"views"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// PublicPortfolioDTO is what anonymous visitors see. Owner details are omitted.
type PublicPortfolioDTO struct {
	UniqueIdentifier string               `json:"unique_identifier"`
	Template         string               `json:"template"`
	Data             models.PortfolioData `json:"data"`
	IsPublished      bool                 `json:"is_published"`
	Views            int64                `json:"views"`
	CreatedAt        time.Time            `json:"created_at"`
}

// PortfolioCreatedDTO is the envelope data of a successful create
type PortfolioCreatedDTO struct {
	PortfolioID      uint64 `json:"portfolio_id"`
	UniqueIdentifier string `json:"unique_identifier"`
	URL              string `json:"url"`
}

func ToPortfolioDTO(p models.Portfolio) PortfolioDTO {
	return PortfolioDTO{
		ID:               p.ID,
		UniqueIdentifier: p.UniqueIdentifier,
		UserID:           p.UserID,
		Template:         p.Template,
		Data:             p.Data,
		IsPublished:      p.IsPublished,
		Views:            p.Views,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func ToPortfolioDTOs(portfolios []models.Portfolio) []PortfolioDTO {
	out := make([]PortfolioDTO, 0, len(portfolios))
	for _, p := range portfolios {
		out = append(out, ToPortfolioDTO(p))
	}
	return out
}

func ToPublicPortfolioDTO(p models.Portfolio) PublicPortfolioDTO {
	return PublicPortfolioDTO{
		UniqueIdentifier: p.UniqueIdentifier,
		Template:         p.Template,
		Data:             p.Data,
		IsPublished:      p.IsPublished,
		Views:            p.Views,
		CreatedAt:        p.CreatedAt,
	}
}

// ToPortfolioCreatedDTO builds the create response, including the frontend path
// the portfolio is rendered at.
func ToPortfolioCreatedDTO(p models.Portfolio) PortfolioCreatedDTO {
	return PortfolioCreatedDTO{
		PortfolioID:      p.ID,
		UniqueIdentifier: p.UniqueIdentifier,
		URL:              fmt.Sprintf("/%s/%s", p.Template, p.UniqueIdentifier),
	}
}
