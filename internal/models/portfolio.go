package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Portfolio struct {
	ID               uint64        `gorm:"primarykey" json:"id"`
	UniqueIdentifier string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"unique_identifier"`
	UserID           uint64        `gorm:"not null;index" json:"user_id"`
	Template         string        `gorm:"type:varchar(50);not null" json:"template"`
	Data             PortfolioData `gorm:"type:text;not null" json:"data"`
	IsPublished      bool          `gorm:"not null;default:false" json:"is_published"`
	Views            int64         `gorm:"not null;default:0" json:"views"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type ContactDetails struct {
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile" validate:"required,mobile"`
}

// PortfolioData is the templated profile payload rendered by the frontend.
// Name, About and TemplateSelected must be present in the payload but may be empty.
type PortfolioData struct {
	Name             string         `json:"name"`
	Skills           []string       `json:"skills" validate:"required"`
	Hobbies          []string       `json:"hobbies" validate:"required"`
	About            string         `json:"about"`
	ContactDetails   ContactDetails `json:"contactDetails"`
	TemplateSelected string         `json:"template_selected"`
}

// Value implements driver.Valuer.
func (d PortfolioData) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *PortfolioData) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = PortfolioData{}
		return nil
	default:
		return fmt.Errorf("portfolio data: unsupported source type %T", src)
	}
}
