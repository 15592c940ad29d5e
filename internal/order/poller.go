package order

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Poller re-fetches the backend's open order list on a fixed interval so the
// comandas view stays fresh. Overlapping fetches are collapsed: a tick that
// fires while a request is still in flight joins it instead of stacking a
// second one.
type Poller struct {
	Client   *Client
	Interval time.Duration
	Log      *zap.Logger

	group singleflight.Group

	mu   sync.RWMutex
	open []Order
}

// Run polls until the context is canceled. A failed fetch keeps the previous
// snapshot; there is no retry beyond the next tick.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches the open order list once, de-duplicated across callers.
func (p *Poller) Refresh(ctx context.Context) {
	_, err, _ := p.group.Do("open-orders", func() (any, error) {
		orders, err := p.Client.ListOpen(ctx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.open = orders
		p.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		p.Log.Error("refresh open orders", zap.Error(err))
	}
}

// Open returns the latest snapshot of the backend's open orders.
func (p *Poller) Open() []Order {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Order(nil), p.open...)
}
