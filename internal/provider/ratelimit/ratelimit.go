package ratelimit

import (
	"context"
	"sync"
	"time"

	"portfoliotracker/internal/provider"
)

// MinInterval wraps a stock provider and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	P        provider.StockProvider
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	if err := m.gate(ctx); err != nil { return provider.Quote{}, err }
	defer m.mark()
	return m.P.Quote(ctx, symbol)
}

func (m *MinInterval) Search(ctx context.Context, keyword string) ([]provider.SymbolMatch, error) {
	if err := m.gate(ctx); err != nil { return nil, err }
	defer m.mark()
	return m.P.Search(ctx, keyword)
}

func (m *MinInterval) gate(ctx context.Context) error {
	if m.Interval <= 0 { return nil }
	m.mu.Lock()
	wait := time.Until(m.last.Add(m.Interval))
	m.mu.Unlock()
	if wait <= 0 { return nil }
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MinInterval) mark() {
	if m.Interval <= 0 { return }
	m.mu.Lock()
	m.last = time.Now()
	m.mu.Unlock()
}
