package dto

import (
	"time"

	"github.com/yukikurage/portfolio-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64      `json:"id"`
	Email      string      `json:"email"`
	Username   *string     `json:"username"`
	FullName   *string     `json:"full_name"`
	IsActive   bool        `json:"is_active"`
	IsVerified bool        `json:"is_verified"`
	Role       models.Role `json:"role"`
	Portfolios []string    `json:"portfolios"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TokenDTO is returned by a successful login
type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      uint64 `json:"user_id"`
}

// RegisteredDTO is the envelope data of a successful registration
type RegisteredDTO struct {
	UserID uint64 `json:"user_id"`
}

// ReconciledDTO is the envelope data of a list rebuild
type ReconciledDTO struct {
	UserID     uint64   `json:"user_id"`
	Portfolios []string `json:"portfolios"`
}

func ToUserDTO(user models.User) UserDTO {
	portfolios := []string(user.Portfolios)
	if portfolios == nil {
		portfolios = []string{}
	}

	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		FullName:   user.FullName,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		Role:       user.Role,
		Portfolios: portfolios,
		CreatedAt:  user.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	return out
}
