package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bjtech/dinepos/docs"
	"github.com/bjtech/dinepos/internal/auth"
	"github.com/bjtech/dinepos/internal/billing"
	"github.com/bjtech/dinepos/internal/catalog"
	"github.com/bjtech/dinepos/internal/config"
	"github.com/bjtech/dinepos/internal/customer"
	"github.com/bjtech/dinepos/internal/httpx"
	"github.com/bjtech/dinepos/internal/logger"
	"github.com/bjtech/dinepos/internal/order"
	"github.com/bjtech/dinepos/internal/receipt"
	"github.com/bjtech/dinepos/internal/tab"
)

// @title           DinePOS Terminal API
// @version         1.0
// @description     Point of sale gateway for a small bar. Keeps draft tabs
// @description     locally and talks to the dine backend for catalog, orders
// @description     and billing.
// @BasePath        /
func main() {
	cfg := config.Load()

	log, err := logger.New("pos-service")
	if err != nil {
		panic(fmt.Sprintf("logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, cleanup, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal("open tab storage", zap.String("kind", cfg.TabStore), zap.Error(err))
	}
	defer cleanup()

	tabs, err := tab.NewStore(ctx, storage)
	if err != nil {
		log.Fatal("load tabs", zap.Error(err))
	}
	httpx.TabsOpen.Set(float64(len(tabs.List())))

	session := auth.NewSession()
	authc := auth.NewClient(cfg.BackendBaseURL, auth.NewUnlockCache(cfg.OfflineUnlockPath))
	cat := catalog.NewClient(cfg.BackendBaseURL, session)
	orders := order.NewClient(cfg.BackendBaseURL, session)
	bill := billing.NewClient(cfg.BackendBaseURL, session)
	cust := customer.NewClient(cfg.BackendBaseURL, session)

	printer, closePrinter := openPrinter(cfg, log)
	defer closePrinter()

	sub := &order.Submitter{Tabs: tabs, Backend: orders, Printer: printer, Log: log}

	poller := &order.Poller{Client: orders, Interval: cfg.PollInterval, Log: log}
	go poller.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log), httpx.Metrics())

	router.POST("/login", loginHandler(authc, session))
	router.POST("/register", registerHandler(authc))

	router.POST("/tabs/items", addTabItemHandler(tabs, cat, sub))
	router.GET("/tabs", listTabsHandler(tabs))
	router.GET("/tabs/:label", getTabHandler(tabs))
	router.DELETE("/tabs/:label/items/:index", removeTabItemHandler(tabs))
	router.POST("/tabs/:label/checkout", checkoutHandler(tabs, sub))

	router.GET("/orders", listOpenOrdersHandler(poller))

	router.GET("/categories", listCategoriesHandler(cat))
	router.GET("/categories/all", listAllCategoriesHandler(cat))
	router.GET("/categories/:id/products", listProductsHandler(cat))
	router.POST("/categories", createCategoryHandler(cat))
	router.POST("/products", createProductHandler(cat))
	router.PUT("/stock/:productId", updateStockHandler(cat))

	router.POST("/clients", createCustomerHandler(cust))
	router.GET("/billing", billingHandler(bill))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		log.Info("pos-service listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// openStorage picks the tab persistence medium from config.
func openStorage(ctx context.Context, cfg config.Config) (tab.Storage, func(), error) {
	switch cfg.TabStore {
	case "file":
		return tab.NewFileStorage(cfg.TabStorePath), func() {}, nil
	case "sqlite":
		s, err := tab.NewSQLiteStorage(cfg.TabStorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		s := tab.NewPGStorage(pool)
		if err := s.Init(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown tab store %q", cfg.TabStore)
	}
}

// openPrinter connects to the receipt broker when configured, else falls back
// to the log printer.
func openPrinter(cfg config.Config, log *zap.Logger) (receipt.Printer, func()) {
	if cfg.RabbitURL == "" {
		return &receipt.LogPrinter{Log: log}, func() {}
	}
	pub, err := receipt.Dial(cfg.RabbitURL)
	if err != nil {
		log.Warn("receipt broker unavailable, printing to log", zap.Error(err))
		return &receipt.LogPrinter{Log: log}, func() {}
	}
	return pub, pub.Close
}
