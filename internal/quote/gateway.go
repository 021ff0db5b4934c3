// Package quote is the provider gateway: every quote, search and crypto
// price request goes through the cache and a chain of real providers, and
// falls back to synthetic data when the chain is exhausted.
package quote

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/cache"
	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
)

//go:generate mockgen -package=quote_test -destination=mock_provider_test.go portfoliotracker/internal/provider StockProvider,CryptoProvider

type Config struct {
	TTL            time.Duration // stock quote TTL, default 5m
	BatchLimit     int           // max symbols per batch, default 20
	MaxConcurrency int           // concurrent provider calls per batch, default 4
	Timeout        time.Duration // budget of one provider chain run, default httpx.DefaultTimeout
}

// Gateway serves stock quotes and symbol search.
type Gateway struct {
	cfg       Config
	providers []provider.StockProvider
	fallback  provider.StockProvider
	cache     cache.Cache
	log       *logger.Logger
}

// NewGateway returns a gateway trying providers in order, then fallback.
// fallback must never fail.
func NewGateway(cfg Config, c cache.Cache, fallback provider.StockProvider, log *logger.Logger, providers ...provider.StockProvider) *Gateway {
	if cfg.TTL == 0 { cfg.TTL = 5 * time.Minute }
	if cfg.BatchLimit <= 0 { cfg.BatchLimit = 20 }
	if cfg.MaxConcurrency <= 0 { cfg.MaxConcurrency = 4 }
	if cfg.Timeout <= 0 { cfg.Timeout = httpx.DefaultTimeout }
	return &Gateway{cfg: cfg, providers: providers, fallback: fallback, cache: c, log: log}
}

// Normalize trims and upper-cases a ticker.
func Normalize(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// Quote returns the quote for symbol. Provider failures are absorbed; the
// only errors are an empty symbol and a broken cache.
func (g *Gateway) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return provider.Quote{}, apperr.Invalid("symbol is required")
	}
	return cache.Fetch(ctx, g.cache, "quote_"+symbol, g.cfg.TTL, func(ctx context.Context) (provider.Quote, error) {
		// the result is shared through the cache, so it must not depend on
		// the first caller staying connected
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.Timeout)
		defer cancel()
		return g.fetch(ctx, symbol)
	})
}

func (g *Gateway) fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	for _, p := range g.providers {
		q, err := p.Quote(ctx, symbol)
		if err == nil {
			g.log.Debug("quote %s from %s", symbol, p.Name())
			return q, nil
		}
		g.log.Warning("quote %s from %s failed: %v", symbol, p.Name(), err)
	}
	q, err := g.fallback.Quote(ctx, symbol)
	if err != nil {
		return provider.Quote{}, apperr.Internal(err)
	}
	return q, nil
}

// Quotes fetches up to BatchLimit distinct symbols concurrently and returns
// them keyed by normalized symbol, along with the symbols in request order.
func (g *Gateway) Quotes(ctx context.Context, symbols []string) (map[string]provider.Quote, []string, error) {
	order := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s = Normalize(s)
		if s == "" { continue }
		if _, dup := seen[s]; dup { continue }
		seen[s] = struct{}{}
		order = append(order, s)
		if len(order) == g.cfg.BatchLimit { break }
	}

	var mu sync.Mutex
	out := make(map[string]provider.Quote, len(order))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.MaxConcurrency)
	for _, s := range order {
		eg.Go(func() error {
			q, err := g.Quote(ctx, s)
			if err != nil { return err }
			mu.Lock()
			out[s] = q
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return out, order, nil
}

// Search returns the answer of the first provider that does not fail, even
// an empty one, else the fallback's.
func (g *Gateway) Search(ctx context.Context, keyword string) ([]provider.SymbolMatch, error) {
	keyword = strings.TrimSpace(keyword)
	for _, p := range g.providers {
		m, err := p.Search(ctx, keyword)
		if err == nil {
			if m == nil { m = []provider.SymbolMatch{} }
			return m, nil
		}
		g.log.Warning("search %q from %s failed: %v", keyword, p.Name(), err)
	}
	return g.fallback.Search(ctx, keyword)
}
