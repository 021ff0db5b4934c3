package finnhub

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/provider"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p := New(Config{URL: srv.URL, APIKey: "k", SearchLimit: 2}, httpx.New(time.Second))
	p.now = func() time.Time { return time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC) }
	return p
}

func TestQuote_Normalizes(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/quote" || r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("X-Finnhub-Token") != "k" { t.Errorf("missing token header") }
		w.Write([]byte(`{"c":160.5,"d":2.5,"dp":1.58,"h":161,"l":157,"o":158,"pc":158,"t":1735830000}`))
	})

	q, err := p.Quote(t.Context(), "aapl")
	if err != nil { t.Fatalf("quote: %v", err) }
	if q.Symbol != "AAPL" || q.Price != 160.5 || q.Change != 2.5 || q.ChangePercent != 1.58 || q.PreviousClose != 158 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Currency != "USD" || q.Source != "finnhub" || q.IsMock { t.Fatalf("unexpected meta: %+v", q) }
	if q.LatestTradingDay != "2025-01-02" { t.Fatalf("trading day=%s", q.LatestTradingDay) }
}

func TestQuote_ZeroPriceIsNoData(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":null,"dp":null,"pc":0,"t":0}`))
	})
	_, err := p.Quote(t.Context(), "NOPE")
	if !errors.Is(err, provider.ErrNoData) { t.Fatalf("want ErrNoData, got %v", err) }
}

func TestQuote_TooManyRequests(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := p.Quote(t.Context(), "AAPL")
	if !errors.Is(err, provider.ErrRateLimited) { t.Fatalf("want ErrRateLimited, got %v", err) }
}

func TestQuote_ForeignListingSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })
	_, err := p.Quote(t.Context(), "BMW.DEX")
	if !errors.Is(err, provider.ErrNoData) { t.Fatalf("want ErrNoData, got %v", err) }
	if calls.Load() != 0 { t.Fatalf("expected no upstream call") }
}

func TestSearch_Limit(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "apple" { t.Errorf("q=%s", r.URL.Query().Get("q")) }
		w.Write([]byte(`{"count":3,"result":[
			{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"},
			{"description":"APPLE HOSPITALITY","displaySymbol":"APLE","symbol":"APLE","type":"REIT"},
			{"description":"APPLIED MATERIALS","displaySymbol":"AMAT","symbol":"AMAT","type":"Common Stock"}]}`))
	})
	got, err := p.Search(t.Context(), "apple")
	if err != nil { t.Fatalf("search: %v", err) }
	if len(got) != 2 || got[0].Symbol != "AAPL" || got[0].Name != "APPLE INC" { t.Fatalf("got %+v", got) }
}
