package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bjtech/dinepos/internal/auth"
	"github.com/bjtech/dinepos/internal/billing"
	"github.com/bjtech/dinepos/internal/catalog"
	"github.com/bjtech/dinepos/internal/customer"
	"github.com/bjtech/dinepos/internal/httpx"
	"github.com/bjtech/dinepos/internal/order"
	"github.com/bjtech/dinepos/internal/tab"
)

// addItemRequest payload for adding one product to a tab.
// swagger:model AddItemRequest
type addItemRequest struct {
	TableNumber string `json:"tableNumber" example:"Mesa 5"`
	CategoryID  int64  `json:"categoryId"  example:"1"`
	ProductID   int64  `json:"productId"   example:"10"`
	Quantity    int    `json:"quantity"    example:"2"`
	Note        string `json:"note"        example:"sem gelo"`
}

// tabView is a tab with its display total attached.
// swagger:model TabView
type tabView struct {
	tab.Tab
	Total decimal.Decimal `json:"total"`
}

func viewOf(t tab.Tab) tabView { return tabView{Tab: t, Total: t.Total()} }

// addTabItemHandler fetches the product snapshot, applies the stock guard and
// merge policy, and emits a kitchen ticket for cooked categories.
func addTabItemHandler(tabs *tab.Store, cat *catalog.Client, sub *order.Submitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		category, err := cat.GetCategory(c.Request.Context(), req.CategoryID)
		if err != nil {
			catalogError(c, err)
			return
		}
		p, err := cat.GetProduct(c.Request.Context(), req.CategoryID, req.ProductID)
		if err != nil {
			catalogError(c, err)
			return
		}

		ref := tab.ProductRef{
			ID:       p.ID,
			Name:     p.Name,
			Category: category.Name,
			Price:    p.Price,
			Stock:    p.Stock,
		}
		updated, err := tabs.AddItem(c.Request.Context(), req.TableNumber, ref, req.Quantity, req.Note)
		if err != nil {
			switch {
			case errors.Is(err, tab.ErrEmptyLabel), errors.Is(err, tab.ErrInvalidQuantity):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, tab.ErrInsufficientStock):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		httpx.TabsOpen.Set(float64(len(tabs.List())))

		// The kitchen sees what was just added, not the merged line.
		added := tab.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    category.Name,
			Price:       p.Price,
			Quantity:    req.Quantity,
			Total:       p.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
			Note:        req.Note,
		}
		sub.KitchenTicket(c.Request.Context(), updated.TableNumber, added)

		c.JSON(http.StatusCreated, viewOf(updated))
	}
}

func listTabsHandler(tabs *tab.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		all := tabs.List()
		out := make([]tabView, 0, len(all))
		for _, t := range all {
			out = append(out, viewOf(t))
		}
		c.JSON(http.StatusOK, gin.H{"tabs": out})
	}
}

func getTabHandler(tabs *tab.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := tabs.Get(c.Param("label"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": tab.ErrTabNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOf(t))
	}
}

func removeTabItemHandler(tabs *tab.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line item index"})
			return
		}
		err = tabs.RemoveOneUnit(c.Request.Context(), c.Param("label"), index)
		switch {
		case err == nil:
			httpx.TabsOpen.Set(float64(len(tabs.List())))
			c.Status(http.StatusNoContent)
		case errors.Is(err, tab.ErrTabNotFound), errors.Is(err, tab.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}

func checkoutHandler(tabs *tab.Store, sub *order.Submitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PaymentMethod string `json:"paymentMethod"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		created, err := sub.Checkout(c.Request.Context(), c.Param("label"), req.PaymentMethod)
		switch {
		case err == nil:
			httpx.CheckoutsTotal.WithLabelValues("ok").Inc()
			httpx.TabsOpen.Set(float64(len(tabs.List())))
			c.JSON(http.StatusCreated, created)
		case errors.Is(err, tab.ErrTabNotFound):
			httpx.CheckoutsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, order.ErrEmptyTab),
			errors.Is(err, order.ErrNoPaymentMethod),
			errors.Is(err, order.ErrBadPaymentMethod):
			httpx.CheckoutsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			httpx.CheckoutsTotal.WithLabelValues("failed").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
	}
}

func listOpenOrdersHandler(poller *order.Poller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"orders": poller.Open()})
	}
}

func listCategoriesHandler(cat *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := cat.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

func listAllCategoriesHandler(cat *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := cat.ListAllCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

func listProductsHandler(cat *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		products, err := cat.ListProducts(c.Request.Context(), categoryID)
		if err != nil {
			catalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func createCategoryHandler(cat *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		created, err := cat.CreateCategory(c.Request.Context(), req.Name)
		if err != nil {
			catalogError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func createProductHandler(cat *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		created, err := cat.CreateProduct(c.Request.Context(), req)
		if err != nil {
			catalogError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func createCustomerHandler(cust *customer.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customer.Customer
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		created, err := cust.Create(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, customer.ErrMissingFields) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func updateStockHandler(cat *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
			return
		}
		var req struct {
			Stock *int `json:"stock"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Stock == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock is required"})
			return
		}
		if err := cat.UpdateStock(c.Request.Context(), productID, *req.Stock); err != nil {
			catalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"productId": productID, "stock": *req.Stock})
	}
}

func billingHandler(bill *billing.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := bill.Revenue(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
		if err != nil {
			if errors.Is(err, billing.ErrMissingPeriod) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": total})
	}
}

func loginHandler(authc *auth.Client, session *auth.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		msg, err := authc.Login(c.Request.Context(), session, req.Email, req.Password)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"message": msg, "user": session.User()})
			return
		}
		if errors.Is(err, auth.ErrMissingCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// An unreachable backend still lets a previously seen operator in;
		// the session carries no token, so backend calls stay unauthenticated.
		var urlErr *url.Error
		if errors.As(err, &urlErr) && authc.LoginOffline(req.Email, req.Password) {
			c.JSON(http.StatusOK, gin.H{"message": "offline unlock", "offline": true})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	}
}

func registerHandler(authc *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		msg, err := authc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrMissingUsername) || errors.Is(err, auth.ErrMissingCredentials) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	}
}

// catalogError maps catalog client errors onto HTTP statuses.
func catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNoCategory),
		errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
