package order

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bjtech/dinepos/internal/receipt"
	"github.com/bjtech/dinepos/internal/tab"
)

var (
	ErrEmptyTab         = errors.New("add items to the tab before checking out")
	ErrNoPaymentMethod  = errors.New("a payment method is required")
	ErrBadPaymentMethod = errors.New("unknown payment method")
)

// paymentMethods accepted at checkout.
var paymentMethods = map[string]bool{
	"dinheiro": true,
	"débito":   true,
	"debito":   true,
	"crédito":  true,
	"credito":  true,
}

// Submitter converts a completed tab into a persisted backend order. The
// whole tab goes out as one batched call; per-item submission is deliberately
// not mixed in.
type Submitter struct {
	Tabs    *tab.Store
	Backend *Client
	Printer receipt.Printer
	Log     *zap.Logger
}

// Checkout validates the tab, submits it, prints the bill summary and clears
// the tab from the draft store. Validation failures never reach the network;
// a backend failure leaves the tab intact and is not retried.
func (s *Submitter) Checkout(ctx context.Context, label, paymentMethod string) (*Order, error) {
	if err := ValidatePaymentMethod(paymentMethod); err != nil {
		return nil, err
	}
	t, ok := s.Tabs.Get(label)
	if !ok {
		return nil, tab.ErrTabNotFound
	}
	if len(t.Items) == 0 {
		return nil, ErrEmptyTab
	}

	req := CreateOrderRequest{
		TableNumber:   t.TableNumber,
		PaymentMethod: paymentMethod,
		Items:         make([]Item, 0, len(t.Items)),
	}
	for _, li := range t.Items {
		req.Items = append(req.Items, Item{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Total:     li.Total,
			Note:      li.Note,
		})
	}

	created, err := s.Backend.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.Tabs.Remove(ctx, label); err != nil {
		// The order is already persisted upstream; a local cleanup failure
		// must not be reported as a failed checkout.
		s.Log.Error("clear tab after checkout", zap.String("table", t.TableNumber), zap.Error(err))
	}

	if err := s.Printer.PrintBill(ctx, receipt.Bill(t)); err != nil {
		s.Log.Error("print bill", zap.String("table", t.TableNumber), zap.Error(err))
	}

	s.Log.Info("tab closed",
		zap.String("table", t.TableNumber),
		zap.Int64("order_id", created.ID),
		zap.String("payment_method", paymentMethod),
		zap.String("total", t.Total().String()))
	return created, nil
}

// KitchenTicket prints the single-item kitchen ticket for cooked categories.
// Printer trouble is logged, never surfaced to the operator.
func (s *Submitter) KitchenTicket(ctx context.Context, tableNumber string, li tab.LineItem) {
	if !receipt.IsKitchenCategory(li.Category) {
		return
	}
	if err := s.Printer.PrintKitchenTicket(ctx, receipt.KitchenTicket(tableNumber, li)); err != nil {
		s.Log.Error("print kitchen ticket",
			zap.String("table", tableNumber),
			zap.String("product", li.ProductName),
			zap.Error(err))
	}
}

// ValidatePaymentMethod is exposed for form-level validation in the handlers.
func ValidatePaymentMethod(m string) error {
	if m == "" {
		return ErrNoPaymentMethod
	}
	if !paymentMethods[m] {
		return fmt.Errorf("%w: %q", ErrBadPaymentMethod, m)
	}
	return nil
}
