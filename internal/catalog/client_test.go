package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, requests *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		if r.Method == http.MethodPost {
			var body struct {
				Name string `json:"name"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Category{ID: 9, Name: body.Name})
			return
		}
		_ = json.NewEncoder(w).Encode([]Category{
			{ID: 1, Name: "bebida"},
			{ID: 2, Name: "Matéria-Prima"},
			{ID: 3, Name: "porção"},
		})
	})
	mux.HandleFunc("/categories/1/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		stock := 12
		_ = json.NewEncoder(w).Encode([]Product{
			{ID: 10, Name: "Cerveja", Price: decimal.RequireFromString("8.50"), CategoryID: 1, Stock: &stock},
		})
	})
	mux.HandleFunc("/stock/10", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(requests, 1)
		if r.Method != http.MethodPut {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Stock *int `json:"stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Stock == nil || *body.Stock < 0 {
			http.Error(w, `{"error":"invalid stock"}`, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestListCategories_FiltersRawMaterial(t *testing.T) {
	var requests int64
	srv := newBackend(t, &requests)
	defer srv.Close()
	c := NewClient(srv.URL, nil)

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	for _, cat := range cats {
		assert.NotEqual(t, "Matéria-Prima", cat.Name)
	}

	all, err := c.ListAllCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3, "registration view sees the reserved category")
}

func TestListProducts_RequiresCategory(t *testing.T) {
	var requests int64
	srv := newBackend(t, &requests)
	defer srv.Close()
	c := NewClient(srv.URL, nil)

	_, err := c.ListProducts(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoCategory)
	assert.Zero(t, atomic.LoadInt64(&requests), "guard must not fire a request")
}

func TestGetProduct(t *testing.T) {
	var requests int64
	srv := newBackend(t, &requests)
	defer srv.Close()
	c := NewClient(srv.URL, nil)

	p, err := c.GetProduct(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Cerveja", p.Name)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 12, *p.Stock)

	_, err = c.GetProduct(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCategory_And_Validation(t *testing.T) {
	var requests int64
	srv := newBackend(t, &requests)
	defer srv.Close()
	c := NewClient(srv.URL, nil)

	created, err := c.CreateCategory(context.Background(), " sobremesa ")
	require.NoError(t, err)
	assert.Equal(t, "sobremesa", created.Name)

	_, err = c.CreateCategory(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateProduct_Validation(t *testing.T) {
	c := NewClient("http://backend.invalid", nil)

	_, err := c.CreateProduct(context.Background(), CreateProductRequest{Name: "", Price: decimal.NewFromInt(1), CategoryID: 1})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = c.CreateProduct(context.Background(), CreateProductRequest{Name: "X", Price: decimal.Zero, CategoryID: 1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = c.CreateProduct(context.Background(), CreateProductRequest{Name: "X", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNoCategory)
}

func TestUpdateStock(t *testing.T) {
	var requests int64
	srv := newBackend(t, &requests)
	defer srv.Close()
	c := NewClient(srv.URL, nil)

	require.NoError(t, c.UpdateStock(context.Background(), 10, 7))
	assert.ErrorIs(t, c.UpdateStock(context.Background(), 10, -1), ErrInvalidStock)
}
