package gifts

import (
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/gifts"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ListGifts - каталог подарков с фильтрами occasion, trending и q (поиск по названию).
func (h *Handler) ListGifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := h.db.WithContext(r.Context()).Preload("Shop")

	if occasion := q.Get("occasion"); occasion != "" && occasion != gifts.OccasionAll {
		query = query.Where("occasion IN ?", []string{occasion, gifts.OccasionAll})
	}
	if raw := q.Get("trending"); raw != "" {
		trending, err := strconv.ParseBool(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid trending parameter")
			return
		}
		query = query.Where("is_trending = ?", trending)
	}
	if search := strings.TrimSpace(q.Get("q")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	list := []gifts.Gift{}
	if err := query.Order("is_trending DESC").Order("rating DESC").Order("id").Find(&list).Error; err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching gifts")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"gifts": list})
}

// ListShops returns shops, best rated first.
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	list := []gifts.Shop{}
	if err := h.db.WithContext(r.Context()).Order("rating DESC").Order("name").Find(&list).Error; err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching shops")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"shops": list})
}
