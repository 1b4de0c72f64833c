package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config - настройки приложения. Значения по умолчанию перекрываются переменными окружения.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	CORS      CORSConfig      `koanf:"cors"`
	Shopify   ShopifyConfig   `koanf:"shopify"`
	RabbitMQ  RabbitMQConfig  `koanf:"rabbitmq"`
	Reminders RemindersConfig `koanf:"reminders"`
	Google    GoogleConfig    `koanf:"google"`
}

type AppConfig struct {
	Env      string `koanf:"env"`
	Port     string `koanf:"port"`
	LogLevel string `koanf:"log_level"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionSecret  string        `koanf:"session_secret"`
	TokenTTL       time.Duration `koanf:"token_ttl"`
	LoginRateLimit int           `koanf:"login_rate_limit"`
}

type CORSConfig struct {
	// comma separated
	AllowedOrigins string `koanf:"allowed_origins"`
}

type ShopifyConfig struct {
	StoreDomain     string        `koanf:"store_domain"`
	StorefrontToken string        `koanf:"storefront_token"`
	APIVersion      string        `koanf:"api_version"`
	Timeout         time.Duration `koanf:"timeout"`
}

type RabbitMQConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

type RemindersConfig struct {
	WindowDays  int           `koanf:"window_days"`
	Interval    time.Duration `koanf:"interval"`
	DefaultType string        `koanf:"default_type"`
}

type GoogleConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Env:      "development",
			Port:     "8080",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "gifts",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL:       24 * time.Hour,
			LoginRateLimit: 10,
		},
		CORS: CORSConfig{AllowedOrigins: "*"},
		Shopify: ShopifyConfig{
			APIVersion: "2024-01",
			Timeout:    10 * time.Second,
		},
		RabbitMQ: RabbitMQConfig{Exchange: "gifts.events"},
		Reminders: RemindersConfig{
			WindowDays:  30,
			DefaultType: "email",
		},
	}
}

var envMappings = map[string]string{
	"APP_ENV":   "app.env",
	"PORT":      "app.port",
	"LOG_LEVEL": "app.log_level",

	"DATABASE_URL": "database.url",
	"DB_HOST":      "database.host",
	"DB_PORT":      "database.port",
	"DB_USER":      "database.user",
	"DB_PASSWORD":  "database.password",
	"DB_NAME":      "database.name",
	"DB_SSLMODE":   "database.sslmode",

	"JWT_SECRET":       "auth.jwt_secret",
	"SESSION_SECRET":   "auth.session_secret",
	"TOKEN_TTL":        "auth.token_ttl",
	"RATE_LIMIT_LOGIN": "auth.login_rate_limit",

	"CORS_ALLOWED_ORIGINS": "cors.allowed_origins",

	"SHOPIFY_STORE_DOMAIN":            "shopify.store_domain",
	"SHOPIFY_STOREFRONT_ACCESS_TOKEN": "shopify.storefront_token",
	"SHOPIFY_API_VERSION":             "shopify.api_version",
	"SHOPIFY_TIMEOUT":                 "shopify.timeout",

	"RABBITMQ_URL":      "rabbitmq.url",
	"RABBITMQ_EXCHANGE": "rabbitmq.exchange",

	"REMINDER_WINDOW_DAYS": "reminders.window_days",
	"REMINDER_INTERVAL":    "reminders.interval",
	"REMINDER_TYPE":        "reminders.default_type",

	"GOOGLE_CLIENT_ID":     "google.client_id",
	"GOOGLE_CLIENT_SECRET": "google.client_secret",
	"GOOGLE_REDIRECT_URL":  "google.redirect_url",
}

// unmapped variables are dropped so the rest of the environment does not leak into the config
func envKey(name string) string {
	return envMappings[name]
}

// Load - собирает конфигурацию: значения по умолчанию, затем переменные окружения.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.IsProduction() {
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in production")
		}
		if c.Auth.SessionSecret == "" {
			return errors.New("SESSION_SECRET is required in production")
		}
	}
	if c.Reminders.WindowDays <= 0 {
		return fmt.Errorf("REMINDER_WINDOW_DAYS must be positive, got %d", c.Reminders.WindowDays)
	}
	if c.Auth.LoginRateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_LOGIN must be positive, got %d", c.Auth.LoginRateLimit)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.App.Env)
	return env == "production" || env == "prod"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN from the DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
