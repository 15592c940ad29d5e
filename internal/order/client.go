// Package order owns the tab checkout workflow and the backend order
// lifecycle client.
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// Item is one order line on the wire, matching the backend payload shape.
// swagger:model OrderItem
type Item struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Note      string          `json:"note,omitempty"`
}

// Order is the backend-owned persisted form of a tab.
// swagger:model Order
type Order struct {
	ID            int64  `json:"id"`
	TableNumber   string `json:"tableNumber"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Items         []Item `json:"items"`
	Status        string `json:"status,omitempty"`
}

// CreateOrderRequest payload for order creation.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	TableNumber   string `json:"tableNumber"`
	PaymentMethod string `json:"paymentMethod"`
	Items         []Item `json:"items"`
}

// TokenSource supplies the bearer token attached to backend calls.
type TokenSource interface {
	Token() string
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	Auth    TokenSource
}

func NewClient(baseURL string, auth TokenSource) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Auth:    auth,
	}
}

// ListOpen fetches the backend's open order list.
func (c *Client) ListOpen(ctx context.Context) ([]Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.BaseURL+"/orders", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list orders: backend returned %s", res.Status)
	}
	var orders []Order
	if err := json.NewDecoder(res.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Create submits a whole tab as one order. The backend treats order creation
// and the matching stock decrement as a single atomic operation.
func (c *Client) Create(ctx context.Context, in CreateOrderRequest) (*Order, error) {
	res, err := c.doJSON(ctx, http.MethodPost, c.BaseURL+"/orders", in)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create order: %s", backendError(res))
	}
	var created Order
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &created, nil
}

// AddItem appends an item to an already-open backend order.
func (c *Client) AddItem(ctx context.Context, orderID int64, item Item) error {
	url := fmt.Sprintf("%s/orders/%d/items", c.BaseURL, orderID)
	res, err := c.doJSON(ctx, http.MethodPost, url, item)
	if err != nil {
		return fmt.Errorf("add order item: %w", err)
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("add order item: %s", backendError(res))
	}
}

// RemoveItem deletes an item from an open backend order.
func (c *Client) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	url := fmt.Sprintf("%s/orders/%d/items/%d", c.BaseURL, orderID, itemID)
	req, err := c.newRequest(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("remove order item: %w", err)
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("remove order item: %s", backendError(res))
	}
}

// Close finalizes an open backend order with a payment method.
func (c *Client) Close(ctx context.Context, orderID int64, paymentMethod string) error {
	url := fmt.Sprintf("%s/orders/%d/close", c.BaseURL, orderID)
	res, err := c.doJSON(ctx, http.MethodPost, url, map[string]string{"paymentMethod": paymentMethod})
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("close order: %s", backendError(res))
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}
	if c.Auth != nil {
		if tok := c.Auth.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, in any) (*http.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.HTTP.Do(req)
}

// backendError extracts the backend's {error} message when present.
func backendError(res *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return "backend returned " + res.Status
}
