package tab

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry within a tab. Name and price are snapshots
// captured when the item is added; they are never re-fetched.
type LineItem struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	Note        string          `json:"note,omitempty"`
}

// recalc keeps the total = price × quantity invariant.
func (li *LineItem) recalc() {
	li.Total = li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Tab is an open comanda keyed by a table number or customer name.
type Tab struct {
	TableNumber string     `json:"tableNumber"`
	Items       []LineItem `json:"items"`
}

// Total sums every line total, rounded to two decimal places for display.
func (t Tab) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range t.Items {
		sum = sum.Add(li.Total)
	}
	return sum.Round(2)
}

func (t Tab) clone() Tab {
	cp := t
	cp.Items = append([]LineItem(nil), t.Items...)
	return cp
}

// Key returns the canonical identity of a tab label: trimmed and
// case-insensitive. The first-seen spelling is kept for display.
func Key(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
