// Package synthetic is the fallback data strategy used when real providers
// are unavailable: seeded mock quotes, a static popular-stock list, a static
// coin list and an approximate USD-relative rate table.
package synthetic

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/provider"
)

// Name is the source tag of every synthetic record.
const Name = "synthetic"

// basePrices covers major US and European tickers, in native currency.
var basePrices = map[string]float64{
	"AAPL": 178.50, "GOOGL": 141.80, "MSFT": 378.90, "AMZN": 178.25,
	"TSLA": 248.50, "META": 505.75, "NVDA": 875.30, "JPM": 195.40,
	"V": 275.60, "WMT": 165.80, "MSTR": 1520.00,
	"BMW.DEX": 98.50, "SAP.DEX": 178.40, "SIE.DEX": 172.10, "VOW3.DEX": 114.30,
	"MC.PAR": 812.60, "OR.PAR": 436.20, "TTE.PAR": 61.40,
	"ASML.AMS": 905.20, "SHEL.LON": 26.15, "HSBA.LON": 6.42, "BP.LON": 4.95,
	"NESN.SWX": 97.80, "NOVN.SWX": 91.30, "NOVO-B.CPH": 842.00,
	"VOLV-B.STO": 281.40, "EQNR.OSL": 291.50, "ENI.MIL": 14.62,
	"SAN.MAD": 4.21, "ABI.BRU": 57.90,
}

// usdRates is the approximate fallback table, relative to USD.
var usdRates = map[string]float64{
	"USD": 1.0, "EUR": 0.92, "GBP": 0.79, "CHF": 0.88, "DKK": 6.87,
	"SEK": 10.45, "NOK": 10.55, "JPY": 149.50, "CAD": 1.36, "AUD": 1.53,
}

// Source generates deterministic-per-seed synthetic data.
// It satisfies provider.StockProvider and provider.RateProvider.
type Source struct {
	Now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	return &Source{Now: time.Now, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Source) Name() string { return Name }

func (s *Source) now() time.Time {
	if s.Now == nil { return time.Now() }
	return s.Now()
}

func (s *Source) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Source) intRange(lo, hi int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Int64N(hi-lo)
}

// BasePrice returns the static base price of symbol, if any.
func BasePrice(symbol string) (float64, bool) {
	p, ok := basePrices[strings.ToUpper(symbol)]
	return p, ok
}

// Quote synthesizes a quote: a base price from the static table (or
// 100 + random*200), moved by a random change of at most 2.5% either way.
// It never fails.
func (s *Source) Quote(_ context.Context, symbol string) (provider.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	base, ok := BasePrice(symbol)
	if !ok {
		base = 100 + s.float()*200
	}
	change := (s.float() - 0.5) * 0.05 * base
	now := s.now().UTC()
	return provider.Quote{
		Symbol:           symbol,
		Price:            currency.Round2(base + change),
		Change:           currency.Round2(change),
		ChangePercent:    currency.Round2(change / base * 100),
		Volume:           s.intRange(1_000_000, 50_000_000),
		LatestTradingDay: now.Format(time.DateOnly),
		PreviousClose:    currency.Round2(base),
		Currency:         currency.CurrencyOf(symbol),
		IsMock:           true,
		Source:           Name,
		ReceivedAt:       now,
	}, nil
}

// Search filters the popular stock list.
func (s *Source) Search(_ context.Context, keyword string) ([]provider.SymbolMatch, error) {
	return PopularStocks(keyword), nil
}

// Rates derives the fallback table for base from the USD table.
func (s *Source) Rates(_ context.Context, base string) (map[string]float64, error) {
	return currency.DeriveFromUSD(usdRates, base), nil
}
