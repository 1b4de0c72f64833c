package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"gift-reminder-backend/config"
	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/dates"
	"gift-reminder-backend/controllers/gifts"
	"gift-reminder-backend/controllers/httpCors"
	"gift-reminder-backend/controllers/orders"
	"gift-reminder-backend/controllers/recommendations"
	"gift-reminder-backend/controllers/reminders"
	shopifyctl "gift-reminder-backend/controllers/shopify"
	"gift-reminder-backend/services/notify"
	"gift-reminder-backend/services/recommend"
	reminderjob "gift-reminder-backend/services/reminders"
	"gift-reminder-backend/services/shopify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка загрузки конфигурации")
	}
	config.SetupLogger(cfg.App)

	// Инициализируем базу данных
	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации базы данных")
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Ошибка миграции базы данных")
	}
	log.Info().Msg("Подключение к базе данных успешно")

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := notify.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, reminders will only be logged")
		} else {
			notifier = publisher
			defer publisher.Close()
		}
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.Auth.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	reminderService := reminderjob.NewService(db, notifier, cfg.Reminders.WindowDays)
	storefront := shopify.NewClient(cfg.Shopify.StoreDomain, cfg.Shopify.StorefrontToken, cfg.Shopify.APIVersion, cfg.Shopify.Timeout)
	if !storefront.Configured() {
		log.Warn().Msg("Shopify credentials missing, storefront endpoints return empty results")
	}

	router := newRouter(handlers{
		db: db,
		auth: authentication.NewHandler(db, sessionStore, authentication.Options{
			JWTSecret: cfg.Auth.JWTSecret,
			TokenTTL:  cfg.Auth.TokenTTL,
			Google:    authentication.GoogleConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL),
		}),
		dates:           dates.NewHandler(db),
		gifts:           gifts.NewHandler(db),
		orders:          orders.NewHandler(db),
		recommendations: recommendations.NewHandler(recommend.NewService(recommend.NewCatalog(db), recommend.NewSuggestionStore(db)), recommend.NewDateOwners(db)),
		reminders:       reminders.NewHandler(reminderService),
		shopify:         shopifyctl.NewHandler(storefront),
		loginRateLimit:  cfg.Auth.LoginRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           httpCors.CorsSettings(cfg.AllowedOrigins(), !cfg.IsProduction() && cfg.App.LogLevel == "debug").Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Reminders.Interval > 0 {
		go reminderService.Run(ctx, cfg.Reminders.Interval, cfg.Reminders.DefaultType)
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("Сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Ошибка запуска сервера")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := config.CloseDB(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}
