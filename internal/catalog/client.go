// Package catalog is the read-through client for the backend's category and
// product reference data. No caching: failures are surfaced and prior
// selection state is left to the caller.
package catalog

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

var (
	ErrNoCategory       = errors.New("a category must be selected first")
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEmptyName        = errors.New("name is required")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidStock     = errors.New("stock must be non-negative")
)

// Category mirrors the backend's {id, name}.
// swagger:model Category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product mirrors the backend's category-scoped product.
// swagger:model Product
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"categoryId"`
	// Stock is nil when the backend does not report stock counts.
	Stock *int `json:"stock,omitempty"`
}

// CreateProductRequest payload for product registration.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name       string          `json:"name"       example:"Cerveja Lata"`
	Price      decimal.Decimal `json:"price"      example:"8.50"`
	CategoryID int64           `json:"categoryId" example:"3"`
}

// TokenSource supplies the bearer token attached to backend calls.
// A nil source means unauthenticated requests.
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

// rawMaterial reports whether a category name is the reserved raw-material
// category, which never appears in the customer-facing selector.
func rawMaterial(name string) bool {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	return n == "matéria-prima" || n == "materia-prima"
}

// ListCategories returns the categories shown to the operator, with the
// reserved raw-material category filtered out.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	all, err := c.ListAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, cat := range all {
		if !rawMaterial(cat.Name) {
			out = append(out, cat)
		}
	}
	return out, nil
}

// ListAllCategories returns the unfiltered category list, used by the
// product-registration view.
func (c *Client) ListAllCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.getJSON(ctx, c.BaseURL+"/categories", &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// GetCategory resolves a single category by id.
func (c *Client) GetCategory(ctx context.Context, id int64) (*Category, error) {
	cats, err := c.ListAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i], nil
		}
	}
	return nil, ErrCategoryNotFound
}

// ListProducts returns the products scoped to a category. A missing category
// selection is rejected locally; no request is fired.
func (c *Client) ListProducts(ctx context.Context, categoryID int64) ([]Product, error) {
	if categoryID <= 0 {
		return nil, ErrNoCategory
	}
	var products []Product
	url := fmt.Sprintf("%s/categories/%d/products", c.BaseURL, categoryID)
	if err := c.getJSON(ctx, url, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct resolves one product within a category, the snapshot used when
// adding an item to a tab.
func (c *Client) GetProduct(ctx context.Context, categoryID, productID int64) (*Product, error) {
	products, err := c.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, ErrNotFound
}

// CreateCategory registers a category, echoing the created entity.
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	var created Category
	if err := c.postJSON(ctx, c.BaseURL+"/categories", map[string]string{"name": name}, &created); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &created, nil
}

// CreateProduct registers a product, echoing the created entity.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrEmptyName
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if req.CategoryID <= 0 {
		return nil, ErrNoCategory
	}
	var created Product
	if err := c.postJSON(ctx, c.BaseURL+"/products", req, &created); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &created, nil
}

// UpdateStock overwrites a product's stock count. The backend contract is an
// absolute value, not a delta.
func (c *Client) UpdateStock(ctx context.Context, productID int64, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	body, _ := json.Marshal(map[string]int{"stock": stock})
	url := fmt.Sprintf("%s/stock/%d", c.BaseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("update stock: %s", res.Status)
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.Auth != nil {
		if tok := c.Auth.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %s", res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return fmt.Errorf("backend returned %s", res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
