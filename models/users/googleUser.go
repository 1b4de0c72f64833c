package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoogleUser links a Google account to a User.
type GoogleUser struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	UserID      string `gorm:"type:varchar(36);index;not null"`
	User        *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GoogleID    string `gorm:"uniqueIndex;not null"`
	Email       string `gorm:"not null"`
	FirstName   string
	LastName    string
	AccessToken string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (g *GoogleUser) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
