package shopify

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"gift-reminder-backend/controllers/httpjson"
	"gift-reminder-backend/services/shopify"
)

// Storefront - операции магазина, которые нужны контроллеру.
type Storefront interface {
	Products(ctx context.Context, first int) ([]shopify.Product, error)
	CreateCart(ctx context.Context, variantID string, quantity int) (*shopify.Cart, error)
}

type Handler struct {
	store Storefront
}

func NewHandler(store Storefront) *Handler {
	return &Handler{store: store}
}

// Products - товары витрины. Без настроенного магазина отдаёт пустой список.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.Products(r.Context(), shopify.DefaultProductsLimit)
	if errors.Is(err, shopify.ErrNotConfigured) {
		log.Warn().Msg("shopify credentials missing, returning no products")
		products = []shopify.Product{}
	} else if err != nil {
		httpjson.Fail(w, r, err, "Failed to fetch products")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"products": products})
}

type checkoutRequest struct {
	VariantID string `json:"variantId"`
}

// Checkout creates a one-line cart for the variant and returns its checkout URL.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, r, err, "")
		return
	}
	if req.VariantID == "" {
		httpjson.Error(w, http.StatusBadRequest, "Missing variantId")
		return
	}

	cart, err := h.store.CreateCart(r.Context(), req.VariantID, 1)
	if err != nil {
		httpjson.Fail(w, r, err, "Failed to initiate checkout")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"checkoutUrl": cart.CheckoutURL})
}
