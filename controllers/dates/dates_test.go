package dates

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/models/dates"
	"gift-reminder-backend/models/users"
	"gift-reminder-backend/testutil"
)

func as(userID string, r *http.Request) *http.Request {
	return r.WithContext(authentication.WithUserID(r.Context(), userID))
}

func TestCreateValidation(t *testing.T) {
	h := NewHandler(testutil.DB(t))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"date":"2026-12-01","type":"birthday"}`, "Missing required fields"},
		{"bad date", `{"title":"Mum","date":"01/12/2026","type":"birthday"}`, "Invalid date format"},
		{"zero reminder days", `{"title":"Mum","date":"2026-12-01","type":"birthday","reminderDays":0}`, "Missing required fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Create(w, as("u1", httptest.NewRequest(http.MethodPost, "/api/dates", strings.NewReader(tt.body))))
			if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateAndList(t *testing.T) {
	db := testutil.DB(t)
	h := NewHandler(db)
	user := users.User{Name: "Ann", Email: "ann@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	for _, body := range []string{
		`{"userId":"` + user.ID + `","title":"Anniversary","date":"2026-12-24","type":"anniversary","reminderDays":3}`,
		`{"title":"Mum","date":"2026-11-02T00:00:00Z","type":"birthday"}`,
	} {
		w := httptest.NewRecorder()
		h.Create(w, as(user.ID, httptest.NewRequest(http.MethodPost, "/api/dates", strings.NewReader(body))))
		if w.Code != http.StatusCreated {
			t.Fatalf("create status = %d body=%s", w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	h.List(w, as(user.ID, httptest.NewRequest(http.MethodGet, "/api/dates", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp struct {
		Dates []dates.ImportantDate `json:"dates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Dates) != 2 {
		t.Fatalf("got %d dates, want 2", len(resp.Dates))
	}
	if resp.Dates[0].Title != "Mum" || resp.Dates[0].UserID != user.ID || resp.Dates[0].ReminderDays != dates.DefaultReminderDays {
		t.Errorf("first = %+v, want Mum owned by %s with default reminder days", resp.Dates[0], user.ID)
	}
	if resp.Dates[1].ReminderDays != 3 {
		t.Errorf("reminderDays = %d, want 3", resp.Dates[1].ReminderDays)
	}
}

func TestOtherUsersDatesAreForbidden(t *testing.T) {
	db := testutil.DB(t)
	h := NewHandler(db)
	if err := db.Create(&dates.ImportantDate{UserID: "bob", Title: "Bob secret", Type: "birthday"}).Error; err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	h.List(w, as("ann", httptest.NewRequest(http.MethodGet, "/api/dates?userId=bob", nil)))
	if w.Code != http.StatusForbidden || strings.Contains(w.Body.String(), "Bob secret") {
		t.Errorf("list: got %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	body := `{"userId":"bob","title":"Planted","date":"2026-12-01","type":"birthday"}`
	h.Create(w, as("ann", httptest.NewRequest(http.MethodPost, "/api/dates", strings.NewReader(body))))
	if w.Code != http.StatusForbidden {
		t.Errorf("create: status = %d, want 403", w.Code)
	}
	var count int64
	db.Model(&dates.ImportantDate{}).Where("user_id = ?", "bob").Count(&count)
	if count != 1 {
		t.Errorf("bob has %d dates, want 1", count)
	}
}

func TestListRequiresAuthenticatedUser(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(testutil.DB(t)).List(w, httptest.NewRequest(http.MethodGet, "/api/dates?userId=u1", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
