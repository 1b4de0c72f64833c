package recommend

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"gift-reminder-backend/models/gifts"
)

func gift(id, occasion string, rating float64, trending bool, price int64) gifts.Gift {
	return gifts.Gift{
		ID:         id,
		Name:       "gift " + id,
		Occasion:   occasion,
		Rating:     rating,
		IsTrending: trending,
		Price:      decimal.NewFromInt(price),
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		gift     gifts.Gift
		occasion string
		want     float64
	}{
		{"exact trending in band", gift("a", "birthday", 4.8, true, 45), "birthday", 94.6},
		{"wildcard below band", gift("b", gifts.OccasionAll, 4.0, false, 20), "wedding", 33},
		{"max inputs", gift("c", "birthday", 5, true, 100), "birthday", 95},
		{"band lower edge", gift("d", "birthday", 0, false, 30), "birthday", 65},
		{"above band", gift("e", "birthday", 0, false, 101), "birthday", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.gift, tt.occasion)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreFractionalPrice(t *testing.T) {
	g := gift("a", "birthday", 0, false, 0)
	g.Price = decimal.RequireFromString("100.01")
	if got := Score(g, "birthday"); got != 50 {
		t.Errorf("Score() = %v, want 50 for price just above band", got)
	}
	g.Price = decimal.RequireFromString("29.99")
	if got := Score(g, "birthday"); got != 50 {
		t.Errorf("Score() = %v, want 50 for price just below band", got)
	}
}

func TestScoreBounds(t *testing.T) {
	for _, occasion := range []string{"birthday", "anniversary"} {
		for _, tag := range []string{"birthday", gifts.OccasionAll} {
			for _, trending := range []bool{true, false} {
				for _, rating := range []float64{-50, 0, 2.5, 5, 80} {
					for _, price := range []int64{0, 30, 65, 100, 500} {
						s := Score(gift("x", tag, rating, trending, price), occasion)
						if s < 0 || s > 100 {
							t.Fatalf("Score(%s,%v,%v,%v) for %s = %v out of [0,100]", tag, trending, rating, price, occasion, s)
						}
					}
				}
			}
		}
	}
}

func TestExactMatchBeatsWildcardByFixedGap(t *testing.T) {
	exact := Score(gift("a", "birthday", 3.5, false, 60), "birthday")
	wildcard := Score(gift("a", gifts.OccasionAll, 3.5, false, 60), "birthday")
	if exact-wildcard != 25 {
		t.Errorf("exact - wildcard = %v, want 25", exact-wildcard)
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		trending bool
		rating   float64
		want     string
	}{
		{true, 4.8, "Perfect birthday gift - Trending with 4.8★ rating"},
		{false, 4, "Perfect birthday gift - Popular with 4★ rating"},
	}
	for _, tt := range tests {
		if got := Reason("birthday", tt.trending, tt.rating); got != tt.want {
			t.Errorf("Reason() = %q, want %q", got, tt.want)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	got := Rank(nil, "birthday")
	if got == nil || len(got) != 0 {
		t.Fatalf("Rank(nil) = %v, want empty non-nil slice", got)
	}
}

func TestRankTruncatesAndSorts(t *testing.T) {
	var candidates []gifts.Gift
	for i := 0; i < 8; i++ {
		candidates = append(candidates, gift(fmt.Sprintf("g%d", i), "birthday", float64(i%5), i%2 == 0, int64(20+i*10)))
	}

	got := Rank(candidates, "birthday")
	if len(got) != TopN {
		t.Fatalf("len(Rank()) = %d, want %d", len(got), TopN)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("rank not sorted at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
	if got[0].Reason == "" {
		t.Error("reason not filled")
	}
}

func TestRankTieBreakByID(t *testing.T) {
	candidates := []gifts.Gift{
		gift("c", "birthday", 4, false, 50),
		gift("a", "birthday", 4, false, 50),
		gift("b", "birthday", 4, false, 50),
	}
	got := Rank(candidates, "birthday")
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Gift.ID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].Gift.ID, want)
		}
	}
}

func TestRankIdempotent(t *testing.T) {
	candidates := []gifts.Gift{
		gift("a", "birthday", 4.8, true, 45),
		gift("b", gifts.OccasionAll, 4.0, false, 20),
		gift("c", "birthday", 3.1, false, 150),
	}
	first := Rank(candidates, "birthday")
	second := Rank(candidates, "birthday")
	for i := range first {
		if first[i].Gift.ID != second[i].Gift.ID || first[i].Score != second[i].Score {
			t.Fatalf("run differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
