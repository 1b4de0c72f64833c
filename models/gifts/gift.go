package gifts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OccasionAll - подарок подходит к любому поводу.
const OccasionAll = "all"

type Shop struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Website     string    `json:"website,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Rating      float64   `json:"rating" gorm:"default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Gift struct {
	ID               string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	ShopID           string          `json:"shopId" gorm:"type:varchar(36);index;not null"`
	Shop             *Shop           `json:"shop,omitempty"`
	Name             string          `json:"name" gorm:"not null"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	Occasion         string          `json:"occasion" gorm:"index;not null;default:all"`
	Rating           float64         `json:"rating" gorm:"default:0"`
	IsTrending       bool            `json:"isTrending" gorm:"default:false"`
	ShopifyVariantID string          `json:"shopifyVariantId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// GiftSuggestion - сохранённая рекомендация, уникальна по паре (дата, подарок).
type GiftSuggestion struct {
	ID              string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ImportantDateID string    `json:"importantDateId" gorm:"type:varchar(36);not null;uniqueIndex:idx_suggestion_date_gift"`
	GiftID          string    `json:"giftId" gorm:"type:varchar(36);not null;uniqueIndex:idx_suggestion_date_gift"`
	Gift            *Gift     `json:"gift,omitempty"`
	Reason          string    `json:"reason"`
	RelevanceScore  float64   `json:"relevanceScore"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (g *Gift) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (s *GiftSuggestion) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
