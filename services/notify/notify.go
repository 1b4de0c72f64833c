// Package notify hands reminder notifications to a delivery channel.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Notification - напоминание о приближающейся дате.
type Notification struct {
	ReminderID      string    `json:"reminderId"`
	UserID          string    `json:"userId"`
	Email           string    `json:"email"`
	ImportantDateID string    `json:"importantDateId"`
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	ReminderType    string    `json:"reminderType"`
	DaysBeforeEvent int       `json:"daysBeforeEvent"`
	SuggestedGifts  []string  `json:"suggestedGifts,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// RoutingKey returns the broker routing key for a reminder type.
func RoutingKey(reminderType string) string {
	return "reminder." + reminderType
}

// LogNotifier only writes the notification to the log. Used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Info().
		Str("user_id", n.UserID).
		Str("email", n.Email).
		Str("title", n.Title).
		Str("reminder_type", n.ReminderType).
		Int("days_before", n.DaysBeforeEvent).
		Msg("reminder sent")
	return nil
}
