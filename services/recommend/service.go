package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"gift-reminder-backend/metrics"
	"gift-reminder-backend/models/gifts"
)

// ErrMissingInput is returned when the important date or occasion is empty.
var ErrMissingInput = errors.New("importantDateId and occasion are required")

// metricOccasions bounds the occasion label of RecommendationRuns.
var metricOccasions = map[string]bool{
	"birthday":        true,
	"anniversary":     true,
	"wedding":         true,
	"valentines":      true,
	"mothers_day":     true,
	"fathers_day":     true,
	"christmas":       true,
	"graduation":      true,
	gifts.OccasionAll: true,
}

func occasionLabel(occasion string) string {
	if metricOccasions[occasion] {
		return occasion
	}
	return "other"
}

// Service scores catalog gifts for an important date and stores the top results.
type Service struct {
	catalog Catalog
	store   SuggestionStore
}

func NewService(catalog Catalog, store SuggestionStore) *Service {
	return &Service{catalog: catalog, store: store}
}

// Generate ranks the catalog for occasion and upserts the top results for importantDateID.
// Upserts run one by one without a transaction; records written before a failure stay.
func (s *Service) Generate(ctx context.Context, importantDateID, occasion string) ([]ScoredGift, error) {
	if importantDateID == "" || occasion == "" {
		return nil, ErrMissingInput
	}

	candidates, err := s.catalog.GiftsForOccasion(ctx, occasion)
	if err != nil {
		return nil, err
	}

	ranked := Rank(candidates, occasion)
	for i, rec := range ranked {
		row := &gifts.GiftSuggestion{
			ImportantDateID: importantDateID,
			GiftID:          rec.Gift.ID,
			Reason:          rec.Reason,
			RelevanceScore:  rec.Score,
		}
		if err := s.store.Upsert(ctx, row); err != nil {
			metrics.SuggestionUpsertFailures.Inc()
			log.Error().Err(err).
				Str("important_date_id", importantDateID).
				Str("gift_id", rec.Gift.ID).
				Int("persisted", i).
				Msg("failed to save gift suggestion")
			return nil, fmt.Errorf("failed to save suggestion for gift %s: %w", rec.Gift.ID, err)
		}
	}

	metrics.RecommendationRuns.WithLabelValues(occasionLabel(occasion)).Inc()
	log.Debug().
		Str("important_date_id", importantDateID).
		Str("occasion", occasion).
		Int("candidates", len(candidates)).
		Int("kept", len(ranked)).
		Msg("recommendations generated")
	return ranked, nil
}

// ForDate returns stored suggestions for an important date, best first.
func (s *Service) ForDate(ctx context.Context, importantDateID string) ([]gifts.GiftSuggestion, error) {
	if importantDateID == "" {
		return nil, ErrMissingInput
	}
	return s.store.ListByDate(ctx, importantDateID)
}
