// Package billing fetches the revenue aggregate for a date range. Single
// request/response exchange, no local state.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrMissingPeriod = errors.New("startDate and endDate are required")

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

// Revenue returns the faturamento total between two dates (YYYY-MM-DD,
// inclusive). Both dates are validated locally before any request is fired.
func (c *Client) Revenue(ctx context.Context, startDate, endDate string) (decimal.Decimal, error) {
	if startDate == "" || endDate == "" {
		return decimal.Zero, ErrMissingPeriod
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return decimal.Zero, fmt.Errorf("invalid date %q: %w", d, ErrMissingPeriod)
		}
	}

	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/faturamento?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	if c.Auth != nil {
		if tok := c.Auth.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch faturamento: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch faturamento: backend returned %s", res.Status)
	}
	var body struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("fetch faturamento: %w", err)
	}
	return body.Total.Round(2), nil
}
