// Package alert evaluates price alerts against current prices.
package alert

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
)

type Quoter interface {
	Quote(ctx context.Context, symbol string) (provider.Quote, error)
}

type PriceSource interface {
	Prices(ctx context.Context, ids []string) map[string]provider.CoinPrice
}

// Recorder persists the transition of an alert to triggered.
type Recorder interface {
	MarkTriggered(ctx context.Context, id string, price float64, at time.Time) error
}

// Result partitions the checked alerts. Active alerts carry the fetched
// price when one was available; Unpriced counts those without one.
type Result struct {
	Triggered []domain.PriceAlert `json:"triggered"`
	Active    []domain.PriceAlert `json:"active"`
	Unpriced  int                 `json:"unpriced"`
}

type Evaluator struct {
	Quotes         Quoter
	Prices         PriceSource
	Recorder       Recorder
	Now            func() time.Time
	MaxConcurrency int
	Log            *logger.Logger
}

// Check evaluates un-triggered alerts. Prices are fetched once per distinct
// stock symbol and in one batch for all coin ids. An alert without a price
// stays active and is not evaluated.
func (e *Evaluator) Check(ctx context.Context, alerts []domain.PriceAlert) (Result, error) {
	res := Result{Triggered: []domain.PriceAlert{}, Active: []domain.PriceAlert{}}
	pending := make([]domain.PriceAlert, 0, len(alerts))
	for _, a := range alerts {
		if !a.Triggered { pending = append(pending, a) }
	}
	if len(pending) == 0 {
		return res, nil
	}

	prices, err := e.prices(ctx, pending)
	if err != nil {
		return Result{}, err
	}
	now := time.Now
	if e.Now != nil { now = e.Now }

	for _, a := range pending {
		price, ok := prices[priceKey(a)]
		if !ok {
			e.Log.Warning("alert %s: no price for %s, left unresolved", a.ID, a.Key())
			res.Unpriced++
			res.Active = append(res.Active, a)
			continue
		}
		p := price
		a.CurrentPrice = &p
		if !a.Crossed(price) {
			res.Active = append(res.Active, a)
			continue
		}
		at := now().UTC()
		if err := e.Recorder.MarkTriggered(ctx, a.ID, price, at); err != nil {
			return Result{}, err
		}
		a.Triggered = true
		a.TriggeredAt = &at
		e.Log.Info("alert %s triggered: %s %s %v at %v", a.ID, a.Key(), a.Condition, a.TargetPrice, price)
		res.Triggered = append(res.Triggered, a)
	}
	return res, nil
}

func priceKey(a domain.PriceAlert) string {
	if a.AssetType == domain.AssetCrypto { return "crypto:" + strings.ToLower(a.CoinID) }
	return "stock:" + strings.ToUpper(a.Symbol)
}

// prices returns the price of every alert's asset keyed by priceKey.
func (e *Evaluator) prices(ctx context.Context, alerts []domain.PriceAlert) (map[string]float64, error) {
	var symbols, coins []string
	seen := make(map[string]struct{}, len(alerts))
	for _, a := range alerts {
		k := priceKey(a)
		if _, dup := seen[k]; dup { continue }
		seen[k] = struct{}{}
		if a.AssetType == domain.AssetCrypto {
			coins = append(coins, strings.ToLower(a.CoinID))
		} else {
			symbols = append(symbols, strings.ToUpper(a.Symbol))
		}
	}

	out := make(map[string]float64, len(seen))
	var mu sync.Mutex
	limit := e.MaxConcurrency
	if limit <= 0 { limit = 4 }
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for _, s := range symbols {
		eg.Go(func() error {
			q, err := e.Quotes.Quote(gctx, s)
			if err != nil {
				e.Log.Warning("alert price for %s: %v", s, err)
				return nil
			}
			mu.Lock()
			out["stock:"+s] = q.Price
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(coins) > 0 && e.Prices != nil {
		for id, p := range e.Prices.Prices(ctx, coins) {
			out["crypto:"+id] = p.USD
		}
	}
	return out, nil
}
