package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/models/dates"
	"gift-reminder-backend/services/reminders"
)

type stubSender struct {
	gotType string
	gotUser string
	sent    []reminders.Sent
	err     error
}

func (s *stubSender) SendDue(_ context.Context, reminderType string) ([]reminders.Sent, error) {
	s.gotType = reminderType
	return s.sent, s.err
}

func (s *stubSender) ListByUser(_ context.Context, userID string) ([]dates.Reminder, error) {
	s.gotUser = userID
	return []dates.Reminder{{ID: "r1", UserID: userID}}, s.err
}

func as(userID string, r *http.Request) *http.Request {
	return r.WithContext(authentication.WithUserID(r.Context(), userID))
}

func sentFor(userIDs ...string) []reminders.Sent {
	out := make([]reminders.Sent, 0, len(userIDs))
	for _, id := range userIDs {
		out = append(out, reminders.Sent{Reminder: dates.Reminder{ID: "r-" + id, UserID: id}})
	}
	return out
}

func TestSend(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantType string
	}{
		{"empty body", "", http.StatusOK, ""},
		{"sms", `{"reminderType":"sms"}`, http.StatusOK, "sms"},
		{"unknown type", `{"reminderType":"pigeon"}`, http.StatusBadRequest, ""},
		{"malformed", `{"reminderType":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSender{sent: sentFor("u1", "u2")}
			w := httptest.NewRecorder()
			NewHandler(s).Send(w, as("u1", httptest.NewRequest(http.MethodPost, "/api/reminders/send", strings.NewReader(tt.body))))
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				if s.gotType != tt.wantType || !strings.Contains(w.Body.String(), "2 reminders sent") {
					t.Errorf("type = %q body=%s", s.gotType, w.Body.String())
				}
			}
		})
	}
}

func TestSendListsOnlyCallersReminders(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(&stubSender{sent: sentFor("u1", "u2", "u1")}).Send(w, as("u1", httptest.NewRequest(http.MethodPost, "/api/reminders/send", nil)))

	var resp struct {
		Reminders []reminders.Sent `json:"reminders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Reminders) != 2 {
		t.Fatalf("got %d reminders, want 2", len(resp.Reminders))
	}
	for _, s := range resp.Reminders {
		if s.Reminder.UserID != "u1" {
			t.Errorf("reminder of %s in u1's response", s.Reminder.UserID)
		}
	}
}

func TestSendFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(&stubSender{err: errors.New("db down")}).Send(w, as("u1", httptest.NewRequest(http.MethodPost, "/api/reminders/send", strings.NewReader("{}"))))
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "db down") {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}

func TestList(t *testing.T) {
	s := &stubSender{}
	h := NewHandler(s)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/reminders?userId=u1", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	h.List(w, as("u1", httptest.NewRequest(http.MethodGet, "/api/reminders?userId=u2", nil)))
	if w.Code != http.StatusForbidden || s.gotUser != "" {
		t.Errorf("other user: status = %d, lookup for %q", w.Code, s.gotUser)
	}

	w = httptest.NewRecorder()
	h.List(w, as("u1", httptest.NewRequest(http.MethodGet, "/api/reminders", nil)))
	if w.Code != http.StatusOK || s.gotUser != "u1" || !strings.Contains(w.Body.String(), `"r1"`) {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}
