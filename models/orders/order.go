package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gift-reminder-backend/models/gifts"
)

const (
	StatusPending = "pending"
	PaymentUnpaid = "unpaid"
)

type Order struct {
	ID              string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID          string          `json:"userId" gorm:"type:varchar(36);index;not null"`
	ShopID          string          `json:"shopId" gorm:"type:varchar(36);index;not null"`
	Shop            *gifts.Shop     `json:"shop,omitempty"`
	TotalPrice      decimal.Decimal `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	Status          string          `json:"status" gorm:"not null;default:pending"`
	PaymentStatus   string          `json:"paymentStatus" gorm:"not null;default:unpaid"`
	DeliveryAddress string          `json:"deliveryAddress"`
	RecipientName   string          `json:"recipientName"`
	RecipientPhone  string          `json:"recipientPhone"`
	Items           []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID       string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID  string          `json:"orderId" gorm:"type:varchar(36);index;not null"`
	GiftID   string          `json:"giftId" gorm:"type:varchar(36);index;not null"`
	Gift     *gifts.Gift     `json:"gift,omitempty"`
	Quantity int             `json:"quantity" gorm:"not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
