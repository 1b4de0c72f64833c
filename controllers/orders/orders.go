package orders

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gift-reminder-backend/controllers/authentication"
	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/models/gifts"
	"gift-reminder-backend/models/orders"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type itemRequest struct {
	GiftID   string `json:"giftId" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type createRequest struct {
	UserID          string        `json:"userId"`
	ShopID          string        `json:"shopId" validate:"required"`
	Items           []itemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string        `json:"deliveryAddress"`
	RecipientName   string        `json:"recipientName"`
	RecipientPhone  string        `json:"recipientPhone"`
}

// Create - оформление заказа. Цены берутся из каталога, заказ и позиции пишутся в одной транзакции.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	userID, err := authentication.RequestOwner(r, req.UserID)
	if err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}

	order := orders.Order{
		UserID:          userID,
		ShopID:          req.ShopID,
		Status:          orders.StatusPending,
		PaymentStatus:   orders.PaymentUnpaid,
		DeliveryAddress: req.DeliveryAddress,
		RecipientName:   req.RecipientName,
		RecipientPhone:  req.RecipientPhone,
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for _, item := range req.Items {
			var gift gifts.Gift
			err := tx.First(&gift, "id = ?", item.GiftID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httpjson.NewError(http.StatusNotFound, fmt.Sprintf("Gift %s not found", item.GiftID), nil)
			}
			if err != nil {
				return err
			}
			total = total.Add(gift.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			order.Items = append(order.Items, orders.OrderItem{
				GiftID:   gift.ID,
				Quantity: item.Quantity,
				Price:    gift.Price,
			})
		}
		order.TotalPrice = total
		return tx.Create(&order).Error
	})
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while creating the order")
		return
	}

	if err := h.db.WithContext(r.Context()).Preload("Items.Gift").First(&order, "id = ?", order.ID).Error; err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to reload order")
	}
	log.Info().Str("order_id", order.ID).Str("total", order.TotalPrice.StringFixed(2)).Msg("order created")

	httpjson.Write(w, http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   order,
	})
}

// List returns the caller's orders, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := authentication.RequestOwner(r, r.URL.Query().Get("userId"))
	if err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}

	list := []orders.Order{}
	err = h.db.WithContext(r.Context()).
		Preload("Items.Gift").
		Preload("Shop").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		httpjson.Fail(w, r, err, "An error occurred while fetching orders")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"orders": list})
}
