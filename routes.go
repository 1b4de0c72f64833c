package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/dates"
	"gift-reminder-backend/controllers/gifts"
	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/controllers/middleware"
	"gift-reminder-backend/controllers/orders"
	"gift-reminder-backend/controllers/recommendations"
	"gift-reminder-backend/controllers/reminders"
	"gift-reminder-backend/controllers/shopify"
)

// handlers - все контроллеры, собранные в main.
type handlers struct {
	db              *gorm.DB
	auth            *authentication.Handler
	dates           *dates.Handler
	gifts           *gifts.Handler
	orders          *orders.Handler
	recommendations *recommendations.Handler
	reminders       *reminders.Handler
	shopify         *shopify.Handler
	loginRateLimit  int
}

func newRouter(h handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.Observe)

	router.HandleFunc("/healthz", healthz(h.db)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	public := auth.NewRoute().Subrouter()
	public.Use(httprate.LimitByIP(h.loginRateLimit, time.Minute))
	public.HandleFunc("/signup", h.auth.Signup).Methods(http.MethodPost)
	public.HandleFunc("/login", h.auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.auth.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/google/login", h.auth.HandleGoogleLogin).Methods(http.MethodGet)
	auth.HandleFunc("/google/callback", h.auth.HandleGoogleCallback).Methods(http.MethodGet)

	api.HandleFunc("/gifts", h.gifts.ListGifts).Methods(http.MethodGet)
	api.HandleFunc("/shops", h.gifts.ListShops).Methods(http.MethodGet)
	api.HandleFunc("/shopify/products", h.shopify.Products).Methods(http.MethodGet)
	api.HandleFunc("/shopify/checkout", h.shopify.Checkout).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(h.auth.Middleware)
	private.HandleFunc("/auth/me", h.auth.Me).Methods(http.MethodGet)
	private.HandleFunc("/auth/password", h.auth.ChangePassword).Methods(http.MethodPost)
	private.HandleFunc("/dates", h.dates.Create).Methods(http.MethodPost)
	private.HandleFunc("/dates", h.dates.List).Methods(http.MethodGet)
	private.HandleFunc("/orders", h.orders.Create).Methods(http.MethodPost)
	private.HandleFunc("/orders", h.orders.List).Methods(http.MethodGet)
	private.HandleFunc("/recommendations", h.recommendations.Generate).Methods(http.MethodPost)
	private.HandleFunc("/recommendations", h.recommendations.List).Methods(http.MethodGet)
	private.HandleFunc("/reminders/send", h.reminders.Send).Methods(http.MethodPost)
	private.HandleFunc("/reminders", h.reminders.List).Methods(http.MethodGet)

	return router
}

func healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			httpjson.Write(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
