// Package valuation computes cost basis, market value and gain/loss of
// holdings. Amounts are accumulated unrounded and rounded to cents only in
// the returned summaries.
package valuation

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
)

type Quoter interface {
	Quote(ctx context.Context, symbol string) (provider.Quote, error)
}

type RateSource interface {
	Rates(ctx context.Context, base string) currency.Table
}

type PriceSource interface {
	Prices(ctx context.Context, ids []string) map[string]provider.CoinPrice
}

type HoldingValue struct {
	domain.Holding
	CurrentPrice      float64 `json:"current_price"`
	DayChange         float64 `json:"day_change"`
	DayChangePercent  float64 `json:"day_change_percent"`
	OriginalCurrency  string  `json:"original_currency"`
	MarketValue       float64 `json:"market_value"`
	CostBasis         float64 `json:"cost_basis"`
	GainLoss          float64 `json:"gain_loss"`
	GainLossPercent   float64 `json:"gain_loss_percent"`
	MarketValueNative float64 `json:"market_value_native"`
	CostBasisNative   float64 `json:"cost_basis_native"`
	IsMock            bool    `json:"is_mock"`
}

type Summary struct {
	DisplayCurrency      string         `json:"display_currency"`
	TotalValue           float64        `json:"total_value"`
	TotalCost            float64        `json:"total_cost"`
	TotalGainLoss        float64        `json:"total_gain_loss"`
	TotalGainLossPercent float64        `json:"total_gain_loss_percent"`
	HoldingsCount        int            `json:"holdings_count"`
	Holdings             []HoldingValue `json:"holdings"`
}

type Valuator struct {
	Quotes         Quoter
	Rates          RateSource
	Prices         PriceSource
	MaxConcurrency int
	Log            *logger.Logger
}

// Percent returns (current-base)/base*100, or 0 when base is not positive.
func Percent(current, base float64) float64 {
	if base <= 0 { return 0 }
	return (current - base) / base * 100
}

// Summarize values stock holdings in display. An empty display means USD.
func (v *Valuator) Summarize(ctx context.Context, holdings []domain.Holding, display string) (Summary, error) {
	display = strings.ToUpper(strings.TrimSpace(display))
	if display == "" { display = currency.Base }
	s := Summary{DisplayCurrency: display, Holdings: []HoldingValue{}}
	if len(holdings) == 0 {
		return s, nil
	}

	quotes, err := v.quotes(ctx, holdings)
	if err != nil {
		return Summary{}, err
	}
	usd := v.Rates.Rates(ctx, currency.Base)
	convert := func(amount float64, native string) float64 {
		out, ok := usd.Cross(amount, native, display)
		if !ok { v.Log.Warning("missing rate converting %s to %s, assuming parity", native, display) }
		return out
	}

	var totalValue, totalCost float64
	for _, h := range holdings {
		q := quotes[strings.ToUpper(h.Symbol)]
		native := q.Currency
		if native == "" { native = currency.CurrencyOf(h.Symbol) }

		mvNative := q.Price * h.Shares
		cbNative := h.BuyPrice * h.Shares
		mv := convert(mvNative, native)
		cb := convert(cbNative, native)
		totalValue += mv
		totalCost += cb

		s.Holdings = append(s.Holdings, HoldingValue{
			Holding:           h,
			CurrentPrice:      currency.Round2(q.Price),
			DayChange:         currency.Round2(q.Change),
			DayChangePercent:  currency.Round2(q.ChangePercent),
			OriginalCurrency:  native,
			MarketValue:       currency.Round2(mv),
			CostBasis:         currency.Round2(cb),
			GainLoss:          currency.Round2(mv - cb),
			GainLossPercent:   currency.Round2(Percent(q.Price, h.BuyPrice)),
			MarketValueNative: currency.Round2(mvNative),
			CostBasisNative:   currency.Round2(cbNative),
			IsMock:            q.IsMock,
		})
	}
	s.HoldingsCount = len(s.Holdings)
	s.TotalValue = currency.Round2(totalValue)
	s.TotalCost = currency.Round2(totalCost)
	s.TotalGainLoss = currency.Round2(totalValue - totalCost)
	s.TotalGainLossPercent = currency.Round2(Percent(totalValue, totalCost))
	return s, nil
}

// quotes fetches one quote per distinct symbol, concurrently.
func (v *Valuator) quotes(ctx context.Context, holdings []domain.Holding) (map[string]provider.Quote, error) {
	limit := v.MaxConcurrency
	if limit <= 0 { limit = 4 }
	var mu sync.Mutex
	out := make(map[string]provider.Quote, len(holdings))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		sym := strings.ToUpper(h.Symbol)
		if _, dup := seen[sym]; dup { continue }
		seen[sym] = struct{}{}
		eg.Go(func() error {
			q, err := v.Quotes.Quote(ctx, sym)
			if err != nil { return err }
			mu.Lock()
			out[sym] = q
			mu.Unlock()
			return nil
		})
	}
	return out, eg.Wait()
}
