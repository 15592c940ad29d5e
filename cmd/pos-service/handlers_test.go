package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bjtech/dinepos/internal/billing"
	"github.com/bjtech/dinepos/internal/catalog"
	"github.com/bjtech/dinepos/internal/order"
	"github.com/bjtech/dinepos/internal/receipt"
	"github.com/bjtech/dinepos/internal/tab"
)

//
// ---------- STUBS & FAKES ----------
//

// memStorage keeps tabs in memory, standing in for the file store.
type memStorage struct {
	mu   sync.Mutex
	tabs []tab.Tab
}

func (m *memStorage) Load(context.Context) ([]tab.Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tab.Tab(nil), m.tabs...), nil
}

func (m *memStorage) Save(_ context.Context, tabs []tab.Tab) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs = append([]tab.Tab(nil), tabs...)
	return nil
}

// fakePrinter records tickets instead of reaching a broker.
type fakePrinter struct {
	mu      sync.Mutex
	kitchen []receipt.Ticket
	bills   []receipt.Ticket
}

func (f *fakePrinter) PrintKitchenTicket(_ context.Context, t receipt.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kitchen = append(f.kitchen, t)
	return nil
}

func (f *fakePrinter) PrintBill(_ context.Context, t receipt.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bills = append(f.bills, t)
	return nil
}

// dineState is what the fake backend saw and holds.
type dineState struct {
	mu           sync.Mutex
	orders       []order.CreateOrderRequest
	stock        map[int64]int
	billingQuery url.Values
}

// newDineServer serves the slice of the backend API the handlers touch:
// categories, category products, order creation, stock and billing.
func newDineServer(t *testing.T) (*httptest.Server, *dineState) {
	t.Helper()
	state := &dineState{stock: map[int64]int{10: 6, 20: 4}}
	mux := http.NewServeMux()

	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"bebida"},
			{"id":2,"name":"porção"},
			{"id":3,"name":"matéria-prima"}
		]`))
	})

	mux.HandleFunc("/categories/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/products") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		state.mu.Lock()
		defer state.mu.Unlock()
		switch strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/categories/"), "/products") {
		case "1":
			_, _ = w.Write([]byte(`[{"id":10,"name":"Brahma 600ml","price":"10.00","categoryId":1,"stock":` + strconv.Itoa(state.stock[10]) + `}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"id":20,"name":"Batata frita","price":"25.00","categoryId":2,"stock":` + strconv.Itoa(state.stock[20]) + `}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":7,"tableNumber":"mesa 1","items":[],"status":"aberto"}]`))
			return
		}
		var req order.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		state.mu.Lock()
		state.orders = append(state.orders, req)
		state.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(order.Order{
			ID:            42,
			TableNumber:   req.TableNumber,
			PaymentMethod: req.PaymentMethod,
			Items:         req.Items,
			Status:        "fechado",
		})
	})

	mux.HandleFunc("/stock/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/stock/"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Stock int `json:"stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		state.mu.Lock()
		if _, ok := state.stock[id]; !ok {
			state.mu.Unlock()
			http.NotFound(w, r)
			return
		}
		state.stock[id] = body.Stock
		state.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/faturamento", func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		state.billingQuery = r.URL.Query()
		state.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":"123.45"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, state
}

// newTestApp wires the real handlers against the fake backend.
func newTestApp(t *testing.T) (*gin.Engine, *dineState, *fakePrinter, *tab.Store) {
	t.Helper()
	srv, state := newDineServer(t)

	tabs, err := tab.NewStore(context.Background(), &memStorage{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	cat := catalog.NewClient(srv.URL, nil)
	orders := order.NewClient(srv.URL, nil)
	bill := billing.NewClient(srv.URL, nil)
	printer := &fakePrinter{}
	sub := &order.Submitter{Tabs: tabs, Backend: orders, Printer: printer, Log: zap.NewNop()}

	r := gin.New()
	r.POST("/tabs/items", addTabItemHandler(tabs, cat, sub))
	r.GET("/tabs", listTabsHandler(tabs))
	r.GET("/tabs/:label", getTabHandler(tabs))
	r.DELETE("/tabs/:label/items/:index", removeTabItemHandler(tabs))
	r.POST("/tabs/:label/checkout", checkoutHandler(tabs, sub))
	r.GET("/categories", listCategoriesHandler(cat))
	r.GET("/categories/all", listAllCategoriesHandler(cat))
	r.GET("/categories/:id/products", listProductsHandler(cat))
	r.PUT("/stock/:productId", updateStockHandler(cat))
	r.GET("/billing", billingHandler(bill))
	return r, state, printer, tabs
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestAddTabItem_MergesSameProduct(t *testing.T) {
	r, _, _, tabs := newTestApp(t)

	body := `{"tableNumber":"Mesa 5","categoryId":1,"productId":10,"quantity":2}`
	if w := doJSON(t, r, http.MethodPost, "/tabs/items", body); w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body = `{"tableNumber":"mesa 5","categoryId":1,"productId":10,"quantity":1}`
	if w := doJSON(t, r, http.MethodPost, "/tabs/items", body); w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	got, ok := tabs.Get("Mesa 5")
	if !ok {
		t.Fatalf("tab not found")
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 3 {
		t.Fatalf("items=%+v, expected one merged line with quantity 3", got.Items)
	}
	if got.Total().String() != "30.00" {
		t.Fatalf("total=%s, expected 30.00", got.Total())
	}
}

func TestAddTabItem_InsufficientStock(t *testing.T) {
	r, _, _, _ := newTestApp(t)

	// Stock for product 10 is 6; asking for 7 in one go must be refused.
	body := `{"tableNumber":"Mesa 2","categoryId":1,"productId":10,"quantity":7}`
	w := doJSON(t, r, http.MethodPost, "/tabs/items", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s (expected 409)", w.Code, w.Body.String())
	}
}

func TestAddTabItem_UnknownProduct(t *testing.T) {
	r, _, _, _ := newTestApp(t)

	body := `{"tableNumber":"Mesa 2","categoryId":1,"productId":999,"quantity":1}`
	w := doJSON(t, r, http.MethodPost, "/tabs/items", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestAddTabItem_KitchenTicketForCookedCategory(t *testing.T) {
	r, _, printer, _ := newTestApp(t)

	// bebida must not reach the kitchen printer.
	doJSON(t, r, http.MethodPost, "/tabs/items", `{"tableNumber":"Mesa 1","categoryId":1,"productId":10,"quantity":1}`)
	// porção must.
	doJSON(t, r, http.MethodPost, "/tabs/items", `{"tableNumber":"Mesa 1","categoryId":2,"productId":20,"quantity":1}`)

	printer.mu.Lock()
	defer printer.mu.Unlock()
	if len(printer.kitchen) != 1 {
		t.Fatalf("kitchen tickets=%d, expected 1", len(printer.kitchen))
	}
	if printer.kitchen[0].Header != receipt.HeaderKitchen {
		t.Fatalf("header=%q", printer.kitchen[0].Header)
	}
}

func TestRemoveTabItem_CascadesToTabRemoval(t *testing.T) {
	r, _, _, _ := newTestApp(t)

	doJSON(t, r, http.MethodPost, "/tabs/items", `{"tableNumber":"Mesa 3","categoryId":1,"productId":10,"quantity":1}`)

	if w := doJSON(t, r, http.MethodDelete, "/tabs/mesa%203/items/0", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	// Last unit removed the line, the line removed the tab.
	if w := doJSON(t, r, http.MethodGet, "/tabs/mesa%203", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestCheckout_HappyPath(t *testing.T) {
	r, state, printer, tabs := newTestApp(t)

	doJSON(t, r, http.MethodPost, "/tabs/items", `{"tableNumber":"Mesa 7","categoryId":1,"productId":10,"quantity":2}`)

	w := doJSON(t, r, http.MethodPost, "/tabs/mesa%207/checkout", `{"paymentMethod":"dinheiro"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	state.mu.Lock()
	if len(state.orders) != 1 || len(state.orders[0].Items) != 1 {
		t.Fatalf("backend orders=%+v, expected one order with one item", state.orders)
	}
	state.mu.Unlock()

	if _, ok := tabs.Get("Mesa 7"); ok {
		t.Fatalf("tab still open after checkout")
	}
	printer.mu.Lock()
	defer printer.mu.Unlock()
	if len(printer.bills) != 1 || printer.bills[0].Header != receipt.HeaderBill {
		t.Fatalf("bills=%+v, expected one bill summary", printer.bills)
	}
}

func TestCheckout_RejectsBadPaymentMethod(t *testing.T) {
	r, state, _, _ := newTestApp(t)

	doJSON(t, r, http.MethodPost, "/tabs/items", `{"tableNumber":"Mesa 8","categoryId":1,"productId":10,"quantity":1}`)

	w := doJSON(t, r, http.MethodPost, "/tabs/mesa%208/checkout", `{"paymentMethod":"cheque"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.orders) != 0 {
		t.Fatalf("validation failure must not reach the backend")
	}
}

func TestCheckout_UnknownTab(t *testing.T) {
	r, _, _, _ := newTestApp(t)

	w := doJSON(t, r, http.MethodPost, "/tabs/mesa%2099/checkout", `{"paymentMethod":"dinheiro"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestListCategories_FiltersRawMaterial(t *testing.T) {
	r, _, _, _ := newTestApp(t)

	w := doJSON(t, r, http.MethodGet, "/categories", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var cats []catalog.Category
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories=%+v, expected matéria-prima filtered out", cats)
	}

	w = doJSON(t, r, http.MethodGet, "/categories/all", "")
	var all []catalog.Category
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("categories=%+v, expected the unfiltered list", all)
	}
}

func TestUpdateStock_AbsoluteValue(t *testing.T) {
	r, state, _, _ := newTestApp(t)

	w := doJSON(t, r, http.MethodPut, "/stock/10", `{"stock":12}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.stock[10] != 12 {
		t.Fatalf("stock=%d, expected 12", state.stock[10])
	}
}

func TestUpdateStock_RejectsNegative(t *testing.T) {
	r, _, _, _ := newTestApp(t)

	w := doJSON(t, r, http.MethodPut, "/stock/10", `{"stock":-1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestBilling_RequiresPeriod(t *testing.T) {
	r, state, _, _ := newTestApp(t)

	w := doJSON(t, r, http.MethodGet, "/billing?startDate=2024-01-01", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	state.mu.Lock()
	if state.billingQuery != nil {
		state.mu.Unlock()
		t.Fatalf("incomplete period must not reach the backend")
	}
	state.mu.Unlock()

	w = doJSON(t, r, http.MethodGet, "/billing?startDate=2024-01-01&endDate=2024-01-31", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Total.StringFixed(2) != "123.45" {
		t.Fatalf("total=%s, expected 123.45", out.Total)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = new(bytes.Buffer)
}
