package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gift-reminder-backend/models/dates"
	"gift-reminder-backend/models/gifts"
	"gift-reminder-backend/models/orders"
	"gift-reminder-backend/models/users"
)

// OpenDB - подключение к Postgres. Клиент создаётся один раз в main и передаётся обработчикам.
func OpenDB(cfg DatabaseConfig) (*gorm.DB, error) {
	gormLog := log.With().Str("component", "gorm").Logger()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger.New(&gormLog, gormLogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate - миграция всех моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&users.GoogleUser{},
		&gifts.Shop{},
		&gifts.Gift{},
		&dates.ImportantDate{},
		&gifts.GiftSuggestion{},
		&dates.Reminder{},
		&orders.Order{},
		&orders.OrderItem{},
	)
}

// CloseDB closes the underlying pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
