package reminders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/dates"
	"gift-reminder-backend/services/reminders"
)

// Sender - то, что умеет отправлять и показывать напоминания.
type Sender interface {
	SendDue(ctx context.Context, reminderType string) ([]reminders.Sent, error)
	ListByUser(ctx context.Context, userID string) ([]dates.Reminder, error)
}

type Handler struct {
	sender Sender
}

func NewHandler(sender Sender) *Handler {
	return &Handler{sender: sender}
}

type sendRequest struct {
	ReminderType string `json:"reminderType" validate:"omitempty,oneof=email sms push"`
}

// Send runs the reminder job once. An empty body means email reminders.
// The response lists only the caller's reminders; the count covers the whole run.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := authentication.RequestOwner(r, "")
	if err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}

	var req sendRequest
	if err := httpjson.Decode(r, &req); err != nil {
		var httpErr *httpjson.HTTPError
		if !errors.As(err, &httpErr) || !errors.Is(httpErr.Err, io.EOF) {
			httpjson.Fail(w, r, err, "")
			return
		}
	}

	sent, err := h.sender.SendDue(r.Context(), req.ReminderType)
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while sending reminders")
		return
	}
	own := []reminders.Sent{}
	for _, s := range sent {
		if s.Reminder.UserID == userID {
			own = append(own, s)
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"message":   fmt.Sprintf("%d reminders sent", len(sent)),
		"reminders": own,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := authentication.RequestOwner(r, r.URL.Query().Get("userId"))
	if err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	list, err := h.sender.ListByUser(r.Context(), userID)
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching reminders")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"reminders": list})
}
