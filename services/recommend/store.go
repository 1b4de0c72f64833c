package recommend

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gift-reminder-backend/models/dates"
	"gift-reminder-backend/models/gifts"
)

// ErrDateNotFound is returned by DateOwners for an unknown important date.
var ErrDateNotFound = errors.New("important date not found")

// Catalog supplies candidate gifts for an occasion.
type Catalog interface {
	GiftsForOccasion(ctx context.Context, occasion string) ([]gifts.Gift, error)
}

// SuggestionStore persists recommendation records per (important date, gift).
type SuggestionStore interface {
	Upsert(ctx context.Context, s *gifts.GiftSuggestion) error
	ListByDate(ctx context.Context, importantDateID string) ([]gifts.GiftSuggestion, error)
}

type gormCatalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) Catalog {
	return &gormCatalog{db: db}
}

// GiftsForOccasion returns gifts tagged with occasion or with the "all" wildcard.
func (c *gormCatalog) GiftsForOccasion(ctx context.Context, occasion string) ([]gifts.Gift, error) {
	var rows []gifts.Gift
	err := c.db.WithContext(ctx).
		Preload("Shop").
		Where("occasion IN ?", []string{occasion, gifts.OccasionAll}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gifts for %q: %w", occasion, err)
	}
	return rows, nil
}

type gormSuggestionStore struct {
	db *gorm.DB
}

func NewSuggestionStore(db *gorm.DB) SuggestionStore {
	return &gormSuggestionStore{db: db}
}

// Upsert creates the suggestion or overwrites the score of the existing one. The reason
// written on creation is kept.
func (s *gormSuggestionStore) Upsert(ctx context.Context, row *gifts.GiftSuggestion) error {
	if row == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "important_date_id"}, {Name: "gift_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"relevance_score", "updated_at"}),
		}).
		Create(row).Error
}

func (s *gormSuggestionStore) ListByDate(ctx context.Context, importantDateID string) ([]gifts.GiftSuggestion, error) {
	var rows []gifts.GiftSuggestion
	err := s.db.WithContext(ctx).
		Preload("Gift").
		Preload("Gift.Shop").
		Where("important_date_id = ?", importantDateID).
		Order("relevance_score DESC").
		Order("gift_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DateOwners resolves which user an important date belongs to.
type DateOwners interface {
	OwnerOf(ctx context.Context, importantDateID string) (string, error)
}

type gormDateOwners struct {
	db *gorm.DB
}

func NewDateOwners(db *gorm.DB) DateOwners {
	return &gormDateOwners{db: db}
}

func (o *gormDateOwners) OwnerOf(ctx context.Context, importantDateID string) (string, error) {
	var date dates.ImportantDate
	err := o.db.WithContext(ctx).Select("id", "user_id").First(&date, "id = ?", importantDateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrDateNotFound
	}
	if err != nil {
		return "", err
	}
	return date.UserID, nil
}
