package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/dates"
	"gift-reminder-backend/controllers/gifts"
	"gift-reminder-backend/controllers/orders"
	"gift-reminder-backend/controllers/recommendations"
	"gift-reminder-backend/controllers/reminders"
	shopifyctl "gift-reminder-backend/controllers/shopify"
	"gift-reminder-backend/services/notify"
	"gift-reminder-backend/services/recommend"
	reminderjob "gift-reminder-backend/services/reminders"
	"gift-reminder-backend/services/shopify"
	"gift-reminder-backend/testutil"
)

func testRouter(t *testing.T) *mux.Router {
	t.Helper()
	db := testutil.DB(t)
	return newRouter(handlers{
		db: db,
		auth: authentication.NewHandler(db, sessions.NewCookieStore([]byte("secret")), authentication.Options{
			JWTSecret: "jwt-secret",
			TokenTTL:  time.Hour,
		}),
		dates:           dates.NewHandler(db),
		gifts:           gifts.NewHandler(db),
		orders:          orders.NewHandler(db),
		recommendations: recommendations.NewHandler(recommend.NewService(recommend.NewCatalog(db), recommend.NewSuggestionStore(db)), recommend.NewDateOwners(db)),
		reminders:       reminders.NewHandler(reminderjob.NewService(db, notify.LogNotifier{}, 30)),
		shopify:         shopifyctl.NewHandler(shopify.NewClient("", "", "2024-01", time.Second)),
		loginRateLimit:  100,
	})
}

func do(router http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	router := testRouter(t)
	if w := do(router, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Errorf("/healthz status = %d", w.Code)
	}
	if w := do(router, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Errorf("/metrics status = %d", w.Code)
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	router := testRouter(t)
	for _, target := range []string{"/api/dates?userId=u1", "/api/orders?userId=u1", "/api/recommendations?importantDateId=d1", "/api/auth/me"} {
		if w := do(router, http.MethodGet, target, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", target, w.Code)
		}
	}
}

func TestPublicCatalogRoutes(t *testing.T) {
	router := testRouter(t)
	for _, target := range []string{"/api/gifts", "/api/shops", "/api/shopify/products"} {
		if w := do(router, http.MethodGet, target, "", ""); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, w.Code)
		}
	}
}

// signup registers a user and logs them in, returning the token and user id.
func signup(t *testing.T, router http.Handler, name, email string) (token, userID string) {
	t.Helper()
	body := `{"name":"` + name + `","email":"` + email + `","password":"s3cret-pass"}`
	if w := do(router, http.MethodPost, "/api/auth/signup", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", w.Code, w.Body.String())
	}
	w := do(router, http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"s3cret-pass"}`, "")
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login body=%s err=%v", w.Body.String(), err)
	}
	return login.Token, login.User.ID
}

func TestSignupLoginAndAddDate(t *testing.T) {
	router := testRouter(t)
	token, userID := signup(t, router, "Ann", "ann@example.com")

	body := `{"userId":"` + userID + `","title":"Mum","date":"2026-11-02","type":"birthday"}`
	if w := do(router, http.MethodPost, "/api/dates", body, token); w.Code != http.StatusCreated {
		t.Fatalf("add date status = %d body=%s", w.Code, w.Body.String())
	}
	w := do(router, http.MethodGet, "/api/dates?userId="+userID, "", token)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Mum"`) {
		t.Errorf("list dates got %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestUserCannotReachAnotherUsersData(t *testing.T) {
	router := testRouter(t)
	annToken, _ := signup(t, router, "Ann", "ann@example.com")
	bobToken, bobID := signup(t, router, "Bob", "bob@example.com")

	w := do(router, http.MethodPost, "/api/dates", `{"title":"BobSecret","date":"2026-12-01","type":"birthday"}`, bobToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("bob add date status = %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Date struct {
			ID string `json:"id"`
		} `json:"date"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.Date.ID == "" {
		t.Fatalf("add date body=%s err=%v", w.Body.String(), err)
	}

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"list dates", http.MethodGet, "/api/dates?userId=" + bobID, ""},
		{"add date", http.MethodPost, "/api/dates", `{"userId":"` + bobID + `","title":"Planted","date":"2026-12-02","type":"birthday"}`},
		{"list orders", http.MethodGet, "/api/orders?userId=" + bobID, ""},
		{"list reminders", http.MethodGet, "/api/reminders?userId=" + bobID, ""},
		{"list recommendations", http.MethodGet, "/api/recommendations?importantDateId=" + created.Date.ID, ""},
		{"generate recommendations", http.MethodPost, "/api/recommendations", `{"importantDateId":"` + created.Date.ID + `","occasion":"birthday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.target, tt.body, annToken)
			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403 body=%s", w.Code, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "BobSecret") {
				t.Errorf("response leaked bob's data: %s", w.Body.String())
			}
		})
	}

	w = do(router, http.MethodGet, "/api/dates", "", bobToken)
	if strings.Contains(w.Body.String(), "Planted") {
		t.Errorf("ann planted a date in bob's list: %s", w.Body.String())
	}
}
