// Package receipt formats kitchen tickets and bill summaries and fans them
// out to the printer queues.
package receipt

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bjtech/dinepos/internal/tab"
)

const (
	HeaderKitchen = "Pedido da Cozinha"
	HeaderBill    = "Resumo da Conta"
)

// Item is one printable line of a ticket.
type Item struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	Note        string          `json:"note,omitempty"`
}

// Ticket is the document handed to a printer.
type Ticket struct {
	Header      string          `json:"header"`
	TableNumber string          `json:"tableNumber"`
	Items       []Item          `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PrintedAt   time.Time       `json:"printedAt"`
}

// Printer delivers tickets to wherever paper comes out. Failures must not
// block the order flow; callers log and move on.
type Printer interface {
	PrintKitchenTicket(ctx context.Context, t Ticket) error
	PrintBill(ctx context.Context, t Ticket) error
}

// kitchenCategories are the categories whose items are cooked, not poured.
var kitchenCategories = map[string]bool{
	"porção": true,
	"porcao": true,
	"lanche": true,
}

// IsKitchenCategory reports whether adding an item of this category should
// emit a kitchen ticket.
func IsKitchenCategory(name string) bool {
	return kitchenCategories[strings.ToLower(strings.TrimSpace(name))]
}

// KitchenTicket builds the single-item ticket printed when a kitchen item is
// added to a tab.
func KitchenTicket(tableNumber string, li tab.LineItem) Ticket {
	return Ticket{
		Header:      HeaderKitchen,
		TableNumber: tableNumber,
		Items: []Item{{
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			Price:       li.Price,
			Total:       li.Total,
			Note:        li.Note,
		}},
		Total:     li.Total.Round(2),
		PrintedAt: time.Now().UTC(),
	}
}

// Bill builds the final account summary printed at checkout.
func Bill(t tab.Tab) Ticket {
	items := make([]Item, 0, len(t.Items))
	for _, li := range t.Items {
		items = append(items, Item{
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			Price:       li.Price,
			Total:       li.Total,
			Note:        li.Note,
		})
	}
	return Ticket{
		Header:      HeaderBill,
		TableNumber: t.TableNumber,
		Items:       items,
		Total:       t.Total(),
		PrintedAt:   time.Now().UTC(),
	}
}
