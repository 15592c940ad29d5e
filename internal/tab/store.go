package tab

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyLabel        = errors.New("table number or customer name is required")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTabNotFound       = errors.New("tab not found")
	ErrItemNotFound      = errors.New("line item not found")
)

// ProductRef is the catalog snapshot taken when an item is added.
type ProductRef struct {
	ID       int64
	Name     string
	Category string
	Price    decimal.Decimal
	// Stock is nil when the backend does not report a stock count.
	Stock *int
}

// Storage persists the whole tab collection as an ordered sequence.
type Storage interface {
	Load(ctx context.Context) ([]Tab, error)
	Save(ctx context.Context, tabs []Tab) error
}

// Store maintains the open tabs of one terminal. It is constructed once per
// session and passed into every handler; safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	tabs    []Tab
	storage Storage
}

func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	tabs, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tabs: %w", err)
	}
	return &Store{tabs: tabs, storage: storage}, nil
}

// AddItem adds quantity units of a product to the labeled tab, creating the
// tab on first use. A line for the same product is merged (quantity
// incremented, total recomputed) rather than duplicated.
func (s *Store) AddItem(ctx context.Context, label string, p ProductRef, quantity int, note string) (Tab, error) {
	display := strings.TrimSpace(label)
	if display == "" {
		return Tab{}, ErrEmptyLabel
	}
	if quantity <= 0 {
		return Tab{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(label)
	ti := s.indexOf(key)

	// Stock guard counts units already on the tab for the same product.
	if p.Stock != nil {
		onTab := 0
		if ti >= 0 {
			for _, li := range s.tabs[ti].Items {
				if li.ProductID == p.ID {
					onTab += li.Quantity
				}
			}
		}
		if onTab+quantity > *p.Stock {
			return Tab{}, ErrInsufficientStock
		}
	}

	if ti < 0 {
		s.tabs = append(s.tabs, Tab{TableNumber: display})
		ti = len(s.tabs) - 1
	}

	t := &s.tabs[ti]
	merged := false
	for i := range t.Items {
		if t.Items[i].ProductID == p.ID {
			t.Items[i].Quantity += quantity
			t.Items[i].recalc()
			if note != "" {
				t.Items[i].Note = note
			}
			merged = true
			break
		}
	}
	if !merged {
		li := LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			Price:       p.Price,
			Quantity:    quantity,
			Note:        note,
		}
		li.recalc()
		t.Items = append(t.Items, li)
	}

	if err := s.persist(ctx); err != nil {
		return Tab{}, err
	}
	return t.clone(), nil
}

// RemoveOneUnit decrements the indexed line by one unit. A line reaching zero
// is removed; a tab left without lines is removed.
func (s *Store) RemoveOneUnit(ctx context.Context, label string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ti := s.indexOf(Key(label))
	if ti < 0 {
		return ErrTabNotFound
	}
	t := &s.tabs[ti]
	if index < 0 || index >= len(t.Items) {
		return ErrItemNotFound
	}

	li := &t.Items[index]
	if li.Quantity > 1 {
		li.Quantity--
		li.recalc()
	} else {
		t.Items = append(t.Items[:index], t.Items[index+1:]...)
	}
	if len(t.Items) == 0 {
		s.tabs = append(s.tabs[:ti], s.tabs[ti+1:]...)
	}
	return s.persist(ctx)
}

// Get returns a copy of the labeled tab; pure read, no mutation.
func (s *Store) Get(label string) (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ti := s.indexOf(Key(label)); ti >= 0 {
		return s.tabs[ti].clone(), true
	}
	return Tab{}, false
}

// List returns a copy of every open tab, in insertion order.
func (s *Store) List() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		out = append(out, t.clone())
	}
	return out
}

// Remove deletes the labeled tab, typically after a successful checkout.
func (s *Store) Remove(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ti := s.indexOf(Key(label))
	if ti < 0 {
		return ErrTabNotFound
	}
	s.tabs = append(s.tabs[:ti], s.tabs[ti+1:]...)
	return s.persist(ctx)
}

func (s *Store) indexOf(key string) int {
	for i := range s.tabs {
		if Key(s.tabs[i].TableNumber) == key {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.storage.Save(ctx, s.tabs); err != nil {
		return fmt.Errorf("persist tabs: %w", err)
	}
	return nil
}
