// Package shopify is a small Storefront GraphQL client.
package shopify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"gift-reminder-backend/metrics"
)

// DefaultProductsLimit - сколько товаров отдаёт /api/shopify/products.
const DefaultProductsLimit = 20

// ErrNotConfigured is returned when the store domain or access token is missing.
var ErrNotConfigured = errors.New("shopify: storefront credentials are not configured")

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

type Variant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            Money  `json:"price"`
}

type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Handle        string    `json:"handle"`
	Description   string    `json:"description"`
	FeaturedImage *Image    `json:"featuredImage,omitempty"`
	MinPrice      Money     `json:"minPrice"`
	Variants      []Variant `json:"variants"`
}

type Cart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
}

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
}

type Option func(*Client)

// WithEndpoint overrides the GraphQL URL built from the store domain.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for https://{domain}/api/{version}/graphql.json.
// An empty domain or token yields a client whose calls return ErrNotConfigured.
func NewClient(domain, token, apiVersion string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
	if domain != "" {
		c.endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", strings.TrimSuffix(domain, "/"), apiVersion)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "shopify-storefront",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

func (c *Client) Configured() bool {
	return c.endpoint != "" && c.token != ""
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do posts one GraphQL operation through the breaker and decodes data into dst.
func (c *Client) do(ctx context.Context, operation, query string, variables map[string]interface{}, dst interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("shopify: encode request: %w", err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("shopify: API error: %s", resp.Status)
		}
		return raw, nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.ShopifyRequests.WithLabelValues(operation, outcome).Inc()
		return err
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		metrics.ShopifyRequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("shopify: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		metrics.ShopifyRequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("shopify: %s", envelope.Errors[0].Message)
	}
	metrics.ShopifyRequests.WithLabelValues(operation, "success").Inc()

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return errors.New("shopify: empty response data")
	}
	return json.Unmarshal(envelope.Data, dst)
}

type edges[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

type productNode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	Description   string `json:"description"`
	FeaturedImage *Image `json:"featuredImage"`
	PriceRange    struct {
		MinVariantPrice Money `json:"minVariantPrice"`
	} `json:"priceRange"`
	Variants edges[Variant] `json:"variants"`
}

// Products returns the first n products of the storefront.
func (c *Client) Products(ctx context.Context, first int) ([]Product, error) {
	if first <= 0 {
		first = DefaultProductsLimit
	}
	var data struct {
		Products edges[productNode] `json:"products"`
	}
	if err := c.do(ctx, "products", productsQuery, map[string]interface{}{"first": first}, &data); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(data.Products.Edges))
	for _, e := range data.Products.Edges {
		n := e.Node
		p := Product{
			ID:            n.ID,
			Title:         n.Title,
			Handle:        n.Handle,
			Description:   n.Description,
			FeaturedImage: n.FeaturedImage,
			MinPrice:      n.PriceRange.MinVariantPrice,
			Variants:      make([]Variant, 0, len(n.Variants.Edges)),
		}
		for _, v := range n.Variants.Edges {
			p.Variants = append(p.Variants, v.Node)
		}
		products = append(products, p)
	}
	return products, nil
}

// CreateCart creates a cart holding quantity of variantID and returns it with its checkout URL.
func (c *Client) CreateCart(ctx context.Context, variantID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	variables := map[string]interface{}{
		"input": map[string]interface{}{
			"lines": []map[string]interface{}{
				{"merchandiseId": variantID, "quantity": quantity},
			},
		},
	}
	var data struct {
		CartCreate *struct {
			Cart       *Cart          `json:"cart"`
			UserErrors []graphQLError `json:"userErrors"`
		} `json:"cartCreate"`
	}
	if err := c.do(ctx, "cart_create", createCartMutation, variables, &data); err != nil {
		return nil, err
	}
	if data.CartCreate == nil {
		return nil, errors.New("shopify: failed to create cart")
	}
	if len(data.CartCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("shopify: %s", data.CartCreate.UserErrors[0].Message)
	}
	if data.CartCreate.Cart == nil || data.CartCreate.Cart.CheckoutURL == "" {
		return nil, errors.New("shopify: cart without checkout url")
	}
	return data.CartCreate.Cart, nil
}
