package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gift-reminder-backend/services/shopify"
)

type stubStore struct {
	products []shopify.Product
	cart     *shopify.Cart
	err      error
}

func (s *stubStore) Products(context.Context, int) ([]shopify.Product, error) {
	return s.products, s.err
}

func (s *stubStore) CreateCart(context.Context, string, int) (*shopify.Cart, error) {
	return s.cart, s.err
}

func TestProducts(t *testing.T) {
	tests := []struct {
		name     string
		store    *stubStore
		wantCode int
		wantBody string
	}{
		{"ok", &stubStore{products: []shopify.Product{{Title: "Roses"}}}, http.StatusOK, `"Roses"`},
		{"not configured", &stubStore{err: shopify.ErrNotConfigured}, http.StatusOK, `{"products":[]}`},
		{"upstream error", &stubStore{err: errors.New("502")}, http.StatusInternalServerError, "Failed to fetch products"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(tt.store).Products(w, httptest.NewRequest(http.MethodGet, "/api/shopify/products", nil))
			if w.Code != tt.wantCode || !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		store    *stubStore
		wantCode int
		wantBody string
	}{
		{"missing variant", `{}`, &stubStore{}, http.StatusBadRequest, "Missing variantId"},
		{"ok", `{"variantId":"v9"}`, &stubStore{cart: &shopify.Cart{CheckoutURL: "https://shop/c/1"}}, http.StatusOK, "https://shop/c/1"},
		{"failure", `{"variantId":"v9"}`, &stubStore{err: errors.New("boom")}, http.StatusInternalServerError, "Failed to initiate checkout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(tt.store).Checkout(w, httptest.NewRequest(http.MethodPost, "/api/shopify/checkout", strings.NewReader(tt.body)))
			if w.Code != tt.wantCode || !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("got %d %s", w.Code, w.Body.String())
			}
		})
	}
}
