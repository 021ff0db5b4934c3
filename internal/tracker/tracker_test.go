package tracker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/store/memory"
	"portfoliotracker/internal/tracker"
)

type stubQuotes struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (s *stubQuotes) set(symbol string, price float64) {
	s.mu.Lock()
	s.prices[symbol] = price
	s.mu.Unlock()
}

func (s *stubQuotes) Quote(_ context.Context, symbol string) (provider.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return provider.Quote{Symbol: symbol, Price: s.prices[symbol], Currency: currency.CurrencyOf(symbol)}, nil
}

type stubRates struct{}

func (stubRates) Rates(_ context.Context, base string) currency.Table {
	return currency.Table{Base: base, Rates: map[string]float64{"USD": 1, "EUR": 0.5}}
}

type stubCrypto map[string]provider.CoinPrice

func (c stubCrypto) Prices(_ context.Context, ids []string) map[string]provider.CoinPrice {
	out := map[string]provider.CoinPrice{}
	for _, id := range ids {
		if p, ok := c[id]; ok { out[id] = p }
	}
	return out
}

var now = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*tracker.Service, *stubQuotes) {
	t.Helper()
	q := &stubQuotes{prices: map[string]float64{"AAPL": 160, "BMW.DEX": 100}}
	s := tracker.New(memory.New(), tracker.Deps{
		Quotes: q,
		Rates:  stubRates{},
		Crypto: stubCrypto{"bitcoin": {USD: 60000}},
		Now:    func() time.Time { return now },
		Log:    logger.Discard(),
	})
	return s, q
}

func TestPortfolios_DefaultCreatedOnceAndProtected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	ps, err := s.ListPortfolios(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.Equal(t, "Main Portfolio", ps[0].Name)
	require.True(t, ps[0].IsDefault)

	ps, err = s.ListPortfolios(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ps, 1, "default is created only once")

	err = s.DeletePortfolio(ctx, "alice", ps[0].ID)
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.CreatePortfolio(ctx, "alice", tracker.PortfolioInput{Name: "  "})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestPortfolios_DeleteCascadesToHoldings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	p, err := s.CreatePortfolio(ctx, "alice", tracker.PortfolioInput{Name: "Growth"})
	require.NoError(t, err)
	_, err = s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "AAPL", Shares: 1, BuyPrice: 100, PortfolioID: p.ID})
	require.NoError(t, err)
	_, err = s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "MSFT", Shares: 1, BuyPrice: 100})
	require.NoError(t, err)

	require.NoError(t, s.DeletePortfolio(ctx, "alice", p.ID))
	left, err := s.ListHoldings(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, "MSFT", left[0].Symbol)

	require.ErrorIs(t, s.DeletePortfolio(ctx, "alice", p.ID), apperr.ErrNotFound)
}

func TestHoldings_CreateDefaultsAndValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	h, err := s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: " aapl", Shares: 10, BuyPrice: 150})
	require.NoError(t, err)
	require.Equal(t, "AAPL", h.Symbol)
	require.Equal(t, "2025-03-04", h.BuyDate)
	require.NotEmpty(t, h.PortfolioID)

	ps, err := s.ListPortfolios(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, ps[0].ID, h.PortfolioID, "holding lands in the default portfolio")

	for _, in := range []tracker.HoldingInput{
		{Symbol: "", Shares: 1},
		{Symbol: "AAPL", Shares: 0},
		{Symbol: "AAPL", Shares: 1, BuyPrice: -1},
		{Symbol: "AAPL", Shares: 1, BuyDate: "04/03/2025"},
	} {
		_, err := s.CreateHolding(ctx, "alice", in)
		require.ErrorIs(t, err, apperr.ErrInvalid, "%+v", in)
	}
	_, err = s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "AAPL", Shares: 1, PortfolioID: "nope"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.CreateHolding(ctx, "", tracker.HoldingInput{Symbol: "AAPL", Shares: 1})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestHoldings_PartialUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	h, err := s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "AAPL", Shares: 10, BuyPrice: 150, BuyDate: "2024-01-15"})
	require.NoError(t, err)

	shares := 12.0
	got, err := s.UpdateHolding(ctx, "alice", h.ID, tracker.HoldingUpdate{Shares: &shares})
	require.NoError(t, err)
	require.Equal(t, 12.0, got.Shares)
	require.Equal(t, 150.0, got.BuyPrice)
	require.Equal(t, "2024-01-15", got.BuyDate)

	_, err = s.UpdateHolding(ctx, "bob", h.ID, tracker.HoldingUpdate{Shares: &shares})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	zero := 0.0
	_, err = s.UpdateHolding(ctx, "alice", h.ID, tracker.HoldingUpdate{Shares: &zero})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestHoldings_DeleteForeignOrMissingIsNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	h, err := s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "AAPL", Shares: 1, BuyPrice: 1})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteHolding(ctx, "bob", h.ID), apperr.ErrNotFound)
	require.ErrorIs(t, s.DeleteHolding(ctx, "alice", "missing"), apperr.ErrNotFound)

	left, err := s.ListHoldings(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, left, 1)

	require.NoError(t, s.DeleteHolding(ctx, "alice", h.ID))
}

func TestWatchlist_DuplicateIsConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	_, err := s.Watch(ctx, "alice", "aapl")
	require.NoError(t, err)
	_, err = s.Watch(ctx, "alice", "AAPL")
	require.ErrorIs(t, err, apperr.ErrConflict)

	list, err := s.Watchlist(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// other owners are independent
	_, err = s.Watch(ctx, "bob", "AAPL")
	require.NoError(t, err)

	require.NoError(t, s.Unwatch(ctx, "alice", "aapl"))
	require.ErrorIs(t, s.Unwatch(ctx, "alice", "AAPL"), apperr.ErrNotFound)

	_, err = s.WatchCrypto(ctx, "alice", tracker.CryptoWatchInput{CoinID: "Bitcoin"})
	require.NoError(t, err)
	_, err = s.WatchCrypto(ctx, "alice", tracker.CryptoWatchInput{CoinID: "bitcoin"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	cl, err := s.CryptoWatchlist(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cl, 1)
	require.Equal(t, "BITCOIN", cl[0].Symbol)
	require.NoError(t, s.UnwatchCrypto(ctx, "alice", "bitcoin"))
}

func TestAlerts_CheckResetRecheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, q := newService(t)

	a, err := s.CreateAlert(ctx, "alice", tracker.AlertInput{Symbol: "AAPL", Condition: domain.Above, TargetPrice: 160})
	require.NoError(t, err)
	_, err = s.CreateAlert(ctx, "alice", tracker.AlertInput{AssetType: domain.AssetCrypto, CoinID: "bitcoin", Condition: domain.Below, TargetPrice: 50000})
	require.NoError(t, err)

	res, err := s.CheckAlerts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)
	require.Equal(t, a.ID, res.Triggered[0].ID)
	require.Len(t, res.Active, 1)
	require.Equal(t, 60000.0, *res.Active[0].CurrentPrice)

	all, err := s.ListAlerts(ctx, "alice")
	require.NoError(t, err)
	require.True(t, all[0].Triggered)
	require.True(t, now.Equal(*all[0].TriggeredAt))
	require.Equal(t, 160.0, *all[0].CurrentPrice)
	require.Nil(t, all[1].CurrentPrice, "active alert prices are not persisted")

	// reset while the price still satisfies the condition: re-triggers
	reset, err := s.ResetAlert(ctx, "alice", a.ID)
	require.NoError(t, err)
	require.False(t, reset.Triggered)
	require.Nil(t, reset.TriggeredAt)
	res, err = s.CheckAlerts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, res.Triggered, 1)

	// reset after the price moved away: stays active
	_, err = s.ResetAlert(ctx, "alice", a.ID)
	require.NoError(t, err)
	q.set("AAPL", 150)
	res, err = s.CheckAlerts(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, res.Triggered)
	require.Len(t, res.Active, 2)

	_, err = s.ResetAlert(ctx, "bob", a.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, s.DeleteAlert(ctx, "bob", a.ID), apperr.ErrNotFound)
	require.NoError(t, s.DeleteAlert(ctx, "alice", a.ID))

	_, err = s.CreateAlert(ctx, "alice", tracker.AlertInput{Symbol: "AAPL", Condition: "sideways", TargetPrice: 1})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSummaries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newService(t)

	p, err := s.CreatePortfolio(ctx, "alice", tracker.PortfolioInput{Name: "Europe"})
	require.NoError(t, err)
	_, err = s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "AAPL", Shares: 10, BuyPrice: 150})
	require.NoError(t, err)
	_, err = s.CreateHolding(ctx, "alice", tracker.HoldingInput{Symbol: "BMW.DEX", Shares: 2, BuyPrice: 90, PortfolioID: p.ID})
	require.NoError(t, err)

	all, err := s.StockSummary(ctx, "alice", "", "")
	require.NoError(t, err)
	require.Equal(t, "USD", all.DisplayCurrency)
	require.Equal(t, 2, all.HoldingsCount)
	// 1600 USD + 200 EUR at 0.5 EUR/USD
	require.Equal(t, 2000.0, all.TotalValue)

	eu, err := s.PortfolioSummary(ctx, "alice", p.ID, "eur")
	require.NoError(t, err)
	require.Equal(t, "Europe", eu.Portfolio.Name)
	require.Equal(t, 1, eu.HoldingsCount)
	require.Equal(t, 200.0, eu.TotalValue)
	require.Equal(t, 180.0, eu.TotalCost)

	_, err = s.StockSummary(ctx, "alice", "XYZ", "")
	require.ErrorIs(t, err, apperr.ErrInvalid)
	_, err = s.PortfolioSummary(ctx, "bob", p.ID, "USD")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.CreateCryptoHolding(ctx, "alice", tracker.CryptoHoldingInput{CoinID: "bitcoin", Amount: 0.5, BuyPrice: 40000})
	require.NoError(t, err)
	cs, err := s.CryptoSummary(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, 30000.0, cs.TotalValue)
	require.Equal(t, 50.0, cs.TotalGainLossPercent)
}
