// Package recommend ranks catalog gifts for an occasion and keeps the
// resulting top-N as gift suggestions for an important date.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"gift-reminder-backend/models/gifts"
)

// TopN is how many gifts a recommendation run keeps.
const TopN = 5

const (
	exactOccasionScore = 50
	wildcardScore      = 25
	trendingBonus      = 20
	ratingWeight       = 2
	priceBandBonus     = 15
	maxScore           = 100
)

var (
	priceBandLow  = decimal.NewFromInt(30)
	priceBandHigh = decimal.NewFromInt(100)
)

// ScoredGift is a candidate gift with its relevance score and display reason.
type ScoredGift struct {
	Gift   gifts.Gift
	Score  float64
	Reason string
}

// Score returns the relevance of g for occasion, clamped to [0, 100].
// Fractions from the rating are kept.
func Score(g gifts.Gift, occasion string) float64 {
	score := float64(wildcardScore)
	if g.Occasion == occasion {
		score = exactOccasionScore
	}
	if g.IsTrending {
		score += trendingBonus
	}
	score += g.Rating * ratingWeight
	if InPriceBand(g.Price) {
		score += priceBandBonus
	}
	return math.Max(0, math.Min(maxScore, score))
}

// InPriceBand reports whether price is within [30, 100].
func InPriceBand(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(priceBandLow) && price.LessThanOrEqual(priceBandHigh)
}

// Reason builds the human readable explanation shown next to a suggestion.
func Reason(occasion string, trending bool, rating float64) string {
	label := "Popular"
	if trending {
		label = "Trending"
	}
	return fmt.Sprintf("Perfect %s gift - %s with %s★ rating", occasion, label, strconv.FormatFloat(rating, 'f', -1, 64))
}

// Rank scores every candidate and returns the best TopN, highest score first.
// Equal scores are ordered by gift ID so repeated runs give the same list.
func Rank(candidates []gifts.Gift, occasion string) []ScoredGift {
	scored := make([]ScoredGift, 0, len(candidates))
	for _, g := range candidates {
		scored = append(scored, ScoredGift{
			Gift:   g,
			Score:  Score(g, occasion),
			Reason: Reason(occasion, g.IsTrending, g.Rating),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Gift.ID < scored[j].Gift.ID
	})

	if len(scored) > TopN {
		scored = scored[:TopN]
	}
	return scored
}
