package recommendations

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/gifts"
	"gift-reminder-backend/services/recommend"
)

// Recommender is the part of recommend.Service the handlers use.
type Recommender interface {
	Generate(ctx context.Context, importantDateID, occasion string) ([]recommend.ScoredGift, error)
	ForDate(ctx context.Context, importantDateID string) ([]gifts.GiftSuggestion, error)
}

type Handler struct {
	recommender Recommender
	owners      recommend.DateOwners
}

func NewHandler(recommender Recommender, owners recommend.DateOwners) *Handler {
	return &Handler{recommender: recommender, owners: owners}
}

// authorizeDate lets the request through only when the caller owns the important date.
func (h *Handler) authorizeDate(r *http.Request, importantDateID string) error {
	userID, err := authentication.RequestOwner(r, "")
	if err != nil {
		return err
	}
	owner, err := h.owners.OwnerOf(r.Context(), importantDateID)
	if errors.Is(err, recommend.ErrDateNotFound) {
		return httpjson.NewError(http.StatusNotFound, "Important date not found", err)
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return httpjson.NewError(http.StatusForbidden, "Access denied", nil)
	}
	return nil
}

type generateRequest struct {
	ImportantDateID string `json:"importantDateId" validate:"required"`
	Occasion        string `json:"occasion" validate:"required"`
}

type recommendationView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Rating         float64         `json:"rating"`
	RelevanceScore float64         `json:"relevanceScore"`
	Reason         string          `json:"reason"`
}

// Generate - POST /api/recommendations: подбирает и сохраняет топ подарков для даты.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	if err := h.authorizeDate(r, req.ImportantDateID); err != nil {
		httpjson.Fail(w, r, err, "An error occurred while generating recommendations")
		return
	}

	ranked, err := h.recommender.Generate(r.Context(), req.ImportantDateID, req.Occasion)
	if errors.Is(err, recommend.ErrMissingInput) {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgMissingFields)
		return
	}
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while generating recommendations")
		return
	}

	views := make([]recommendationView, 0, len(ranked))
	for _, rec := range ranked {
		views = append(views, recommendationView{
			ID:             rec.Gift.ID,
			Name:           rec.Gift.Name,
			Price:          rec.Gift.Price,
			Rating:         rec.Gift.Rating,
			RelevanceScore: rec.Score,
			Reason:         rec.Reason,
		})
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"message":         "Recommendations generated successfully",
		"recommendations": views,
	})
}

// List - GET /api/recommendations?importantDateId=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	importantDateID := r.URL.Query().Get("importantDateId")
	if importantDateID == "" {
		httpjson.Error(w, http.StatusBadRequest, "Missing importantDateId parameter")
		return
	}
	if err := h.authorizeDate(r, importantDateID); err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching recommendations")
		return
	}

	rows, err := h.recommender.ForDate(r.Context(), importantDateID)
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching recommendations")
		return
	}
	if rows == nil {
		rows = []gifts.GiftSuggestion{}
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{"recommendations": rows})
}
