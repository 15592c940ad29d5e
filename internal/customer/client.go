// Package customer registers patron records with the backend.
package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrMissingFields = errors.New("name, cpf and phone are required")

// Customer is a registered patron.
// swagger:model Customer
type Customer struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
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

// Create registers a customer, echoing the created record.
func (c *Client) Create(ctx context.Context, in Customer) (*Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CPF = strings.TrimSpace(in.CPF)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.CPF == "" || in.Phone == "" {
		return nil, ErrMissingFields
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/clients", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Auth != nil {
		if tok := c.Auth.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create customer: backend returned %s", res.Status)
	}
	var created Customer
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &created, nil
}
