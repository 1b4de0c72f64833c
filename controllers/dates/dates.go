package dates

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/dates"
)

// dateLayouts - допустимые форматы поля date.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type createRequest struct {
	UserID       string  `json:"userId"`
	Title        string  `json:"title" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	Type         string  `json:"type" validate:"required"`
	ReminderDays *int    `json:"reminderDays" validate:"omitempty,min=1"`
	Description  string  `json:"description"`
	MemberID     *string `json:"memberId"`
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Create - добавление важной даты.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	userID, err := authentication.RequestOwner(r, req.UserID)
	if err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	when, ok := parseDate(req.Date)
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	date := dates.ImportantDate{
		UserID:       userID,
		MemberID:     req.MemberID,
		Title:        req.Title,
		Date:         when,
		Type:         req.Type,
		ReminderDays: dates.DefaultReminderDays,
		Description:  req.Description,
	}
	if req.ReminderDays != nil {
		date.ReminderDays = *req.ReminderDays
	}

	if err := h.db.WithContext(r.Context()).Create(&date).Error; err != nil {
		httpjson.Fail(w, r, err, "An error occurred while adding the date")
		return
	}
	log.Debug().Str("date_id", date.ID).Str("user_id", date.UserID).Msg("important date added")

	httpjson.Write(w, http.StatusCreated, map[string]interface{}{
		"message": "Date added successfully",
		"date":    date,
	})
}

// List returns the caller's dates, earliest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := authentication.RequestOwner(r, r.URL.Query().Get("userId"))
	if err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}

	list := []dates.ImportantDate{}
	if err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).Order("date ASC").Find(&list).Error; err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching dates")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"dates": list})
}
