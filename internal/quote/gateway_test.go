package quote_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/cache"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/provider/synthetic"
	"portfoliotracker/internal/quote"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCache() (*cache.TTL, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)}
	c := cache.New()
	c.Now = clock.Now
	return c, clock
}

func TestQuote_OneProviderCallPerCacheWindow(t *testing.T) {
	t.Parallel()

	// Arrange: a provider that must be called once per window
	ctrl := gomock.NewController(t)
	p := NewMockStockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().
		Quote(gomock.Any(), "AAPL").
		Return(provider.Quote{Symbol: "AAPL", Price: 160, Currency: "USD", Source: "mock"}, nil).
		Times(2)

	c, clock := newCache()
	g := quote.NewGateway(quote.Config{TTL: 5 * time.Minute}, c, synthetic.New(1), logger.Discard(), p)

	// Act: repeated fetches inside the window hit the cache
	for i := 0; i < 5; i++ {
		q, err := g.Quote(t.Context(), " aapl ")
		require.NoError(t, err)
		require.Equal(t, 160.0, q.Price)
	}

	// Act: after expiry the provider is called again
	clock.Advance(5 * time.Minute)
	_, err := g.Quote(t.Context(), "AAPL")
	require.NoError(t, err)
}

func TestQuote_FallsThroughChainThenSynthetic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	first := NewMockStockProvider(ctrl)
	second := NewMockStockProvider(ctrl)
	first.EXPECT().Name().Return("first").AnyTimes()
	second.EXPECT().Name().Return("second").AnyTimes()

	// Arrange: the first provider is rate limited, the second answers
	gomock.InOrder(
		first.EXPECT().Quote(gomock.Any(), "MSFT").Return(provider.Quote{}, provider.ErrRateLimited),
		second.EXPECT().Quote(gomock.Any(), "MSFT").Return(provider.Quote{Symbol: "MSFT", Price: 400, Source: "second"}, nil),
	)
	// Arrange: both fail for BMW.DEX
	first.EXPECT().Quote(gomock.Any(), "BMW.DEX").Return(provider.Quote{}, provider.ErrNoData)
	second.EXPECT().Quote(gomock.Any(), "BMW.DEX").Return(provider.Quote{}, errors.New("timeout"))

	c, _ := newCache()
	g := quote.NewGateway(quote.Config{}, c, synthetic.New(1), logger.Discard(), first, second)

	q, err := g.Quote(t.Context(), "MSFT")
	require.NoError(t, err)
	require.Equal(t, "second", q.Source)
	require.False(t, q.IsMock)

	// Assert: synthetic quote is flagged and carries the native currency
	q, err = g.Quote(t.Context(), "BMW.DEX")
	require.NoError(t, err)
	require.True(t, q.IsMock)
	require.Equal(t, "EUR", q.Currency)
	require.InDelta(t, 98.50, q.Price, 98.50*0.025+0.01)

	// Assert: the synthetic quote is cached too
	again, err := g.Quote(t.Context(), "BMW.DEX")
	require.NoError(t, err)
	require.Equal(t, q, again)
}

func TestQuote_CanceledCallerDoesNotPoisonCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := NewMockStockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().
		Quote(gomock.Any(), "AAPL").
		DoAndReturn(func(ctx context.Context, symbol string) (provider.Quote, error) {
			if err := ctx.Err(); err != nil {
				return provider.Quote{}, err
			}
			return provider.Quote{Symbol: symbol, Price: 160, Currency: "USD", Source: "mock"}, nil
		}).
		Times(1)

	c, _ := newCache()
	g := quote.NewGateway(quote.Config{}, c, synthetic.New(1), logger.Discard(), p)

	canceled, cancel := context.WithCancel(t.Context())
	cancel()
	q, err := g.Quote(canceled, "AAPL")
	require.NoError(t, err)
	require.False(t, q.IsMock)

	q, err = g.Quote(t.Context(), "AAPL")
	require.NoError(t, err)
	require.False(t, q.IsMock)
	require.Equal(t, 160.0, q.Price)
}

func TestQuote_EmptySymbolIsInvalid(t *testing.T) {
	t.Parallel()

	c, _ := newCache()
	g := quote.NewGateway(quote.Config{}, c, synthetic.New(1), logger.Discard())
	_, err := g.Quote(t.Context(), "  ")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestQuotes_DedupesAndCaps(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := NewMockStockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s string) (provider.Quote, error) {
			return provider.Quote{Symbol: s, Price: 1}, nil
		}).
		Times(3)

	c, _ := newCache()
	g := quote.NewGateway(quote.Config{BatchLimit: 3, MaxConcurrency: 2}, c, synthetic.New(1), logger.Discard(), p)

	got, order, err := g.Quotes(t.Context(), []string{"aapl", "AAPL", "", "msft", "tsla", "nvda"})
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, order)
	require.Len(t, got, 3)
	require.Equal(t, "TSLA", got["TSLA"].Symbol)
}

func TestSearch_FallsBackToPopularStocks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := NewMockStockProvider(ctrl)
	p.EXPECT().Name().Return("mock").AnyTimes()
	gomock.InOrder(
		p.EXPECT().Search(gomock.Any(), "apple").Return([]provider.SymbolMatch{{Symbol: "AAPL", Name: "Apple"}}, nil),
		p.EXPECT().Search(gomock.Any(), "nestle").Return(nil, provider.ErrRateLimited),
		p.EXPECT().Search(gomock.Any(), "zzzz").Return([]provider.SymbolMatch{}, nil),
	)

	c, _ := newCache()
	g := quote.NewGateway(quote.Config{}, c, synthetic.New(1), logger.Discard(), p)

	got, err := g.Search(t.Context(), "apple")
	require.NoError(t, err)
	require.Equal(t, "Apple", got[0].Name)

	got, err = g.Search(t.Context(), "nestle")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "NESN.SWX", got[0].Symbol)

	got, err = g.Search(t.Context(), "zzzz")
	require.NoError(t, err)
	require.Empty(t, got)
}
