package models

import (
	"time"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RolePremium Role = "premium"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RolePremium:
		return true
	}
	return false
}

type User struct {
	ID           uint64  `gorm:"primarykey" json:"id"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     *string `gorm:"type:varchar(100);uniqueIndex" json:"username"`
	FullName     *string `gorm:"type:varchar(255)" json:"full_name"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool    `gorm:"not null;default:true" json:"is_active"`
	IsVerified   bool    `gorm:"not null;default:false" json:"is_verified"`
	Role         Role    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	// Portfolios caches the unique identifiers of the user's portfolios in
	// creation order. It is kept in step with the portfolios table by the
	// repository, never by a foreign key.
	Portfolios IdentifierList `gorm:"type:text" json:"portfolios"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
