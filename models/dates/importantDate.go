package dates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gift-reminder-backend/models/gifts"
	"gift-reminder-backend/models/users"
)

const DefaultReminderDays = 7

type ImportantDate struct {
	ID           string                 `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string                 `json:"userId" gorm:"type:varchar(36);index;not null"`
	User         *users.User            `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	MemberID     *string                `json:"memberId,omitempty" gorm:"type:varchar(36)"`
	Title        string                 `json:"title" gorm:"not null"`
	Date         time.Time              `json:"date" gorm:"index;not null"`
	Type         string                 `json:"type" gorm:"not null"` // birthday, anniversary, ...
	ReminderDays int                    `json:"reminderDays" gorm:"not null;default:7"`
	Description  string                 `json:"description,omitempty"`
	ReminderSent bool                   `json:"reminderSent" gorm:"not null;default:false"`
	Suggestions  []gifts.GiftSuggestion `json:"suggestions,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

type Reminder struct {
	ID              string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID          string         `json:"userId" gorm:"type:varchar(36);index;not null"`
	ImportantDateID string         `json:"importantDateId" gorm:"type:varchar(36);index;not null"`
	ImportantDate   *ImportantDate `json:"importantDate,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	ReminderType    string         `json:"reminderType" gorm:"not null;default:email"`
	DaysBeforeEvent int            `json:"daysBeforeEvent"`
	SentAt          time.Time      `json:"sentAt" gorm:"autoCreateTime"`
}

func (d *ImportantDate) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
