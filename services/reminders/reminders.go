// Package reminders finds important dates that are due for a reminder and records the sends.
package reminders

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"gift-reminder-backend/metrics"
	"gift-reminder-backend/models/dates"
	"gift-reminder-backend/services/notify"
)

const DefaultType = "email"

// Sent - отправленное напоминание вместе с датой и пользователем.
type Sent struct {
	Reminder      dates.Reminder      `json:"reminder"`
	ImportantDate dates.ImportantDate `json:"importantDate"`
}

type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	window   time.Duration
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier notify.Notifier, windowDays int) *Service {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Service{
		db:       db,
		notifier: notifier,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// DaysUntil rounds the time left until event up to whole days.
func DaysUntil(event, now time.Time) int {
	return int(math.Ceil(event.Sub(now).Hours() / 24))
}

// SendDue sends a reminder for every unsent date in the window whose days-until-event
// equals its reminderDays, and marks the date as reminded.
func (s *Service) SendDue(ctx context.Context, reminderType string) ([]Sent, error) {
	if reminderType == "" {
		reminderType = DefaultType
	}
	now := s.now()

	var upcoming []dates.ImportantDate
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Suggestions.Gift").
		Where("reminder_sent = ? AND date >= ? AND date <= ?", false, now, now.Add(s.window)).
		Order("date ASC").
		Find(&upcoming).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming dates: %w", err)
	}

	sent := []Sent{}
	for _, date := range upcoming {
		days := DaysUntil(date.Date, now)
		if days != date.ReminderDays {
			continue
		}

		reminder := dates.Reminder{
			UserID:          date.UserID,
			ImportantDateID: date.ID,
			ReminderType:    reminderType,
			DaysBeforeEvent: days,
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&reminder).Error; err != nil {
				return err
			}
			return tx.Model(&dates.ImportantDate{}).Where("id = ?", date.ID).Update("reminder_sent", true).Error
		})
		if err != nil {
			return sent, fmt.Errorf("failed to record reminder for date %s: %w", date.ID, err)
		}
		date.ReminderSent = true

		if err := s.notifier.Notify(ctx, notificationFor(reminder, date)); err != nil {
			log.Error().Err(err).Str("reminder_id", reminder.ID).Msg("failed to publish reminder")
		}
		metrics.RemindersSent.WithLabelValues(reminderType).Inc()
		sent = append(sent, Sent{Reminder: reminder, ImportantDate: date})
	}

	log.Info().Int("checked", len(upcoming)).Int("sent", len(sent)).Str("reminder_type", reminderType).Msg("reminder run finished")
	return sent, nil
}

func notificationFor(r dates.Reminder, d dates.ImportantDate) notify.Notification {
	n := notify.Notification{
		ReminderID:      r.ID,
		UserID:          d.UserID,
		ImportantDateID: d.ID,
		Title:           d.Title,
		Date:            d.Date,
		ReminderType:    r.ReminderType,
		DaysBeforeEvent: r.DaysBeforeEvent,
	}
	if d.User != nil {
		n.Email = d.User.Email
	}
	for _, s := range d.Suggestions {
		if s.Gift != nil {
			n.SuggestedGifts = append(n.SuggestedGifts, s.Gift.Name)
		}
	}
	return n
}

// ListByUser returns the user's reminders, most recent first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]dates.Reminder, error) {
	list := []dates.Reminder{}
	err := s.db.WithContext(ctx).
		Preload("ImportantDate").
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Find(&list).Error
	return list, err
}

// Run calls SendDue every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration, reminderType string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("reminder job started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reminder job stopped")
			return
		case <-ticker.C:
			if _, err := s.SendDue(ctx, reminderType); err != nil {
				log.Error().Err(err).Msg("reminder run failed")
			}
		}
	}
}
