package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfoliotracker/internal/config"
	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/store/memory"
)

func offlineConfig() config.Config {
	cfg := config.Default()
	cfg.AlphaVantage.Enabled = false
	cfg.Finnhub.Enabled = false
	cfg.CoinGecko.Enabled = false
	cfg.ExchangeRate.Enabled = false
	return cfg
}

func TestNewAPI_OfflineServesSyntheticQuotes(t *testing.T) {
	h := newAPI(offlineConfig(), memory.New(), logger.Discard()).Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stocks/quote/aapl", nil))
	if rr.Code != http.StatusOK { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
	var q provider.Quote
	if err := json.Unmarshal(rr.Body.Bytes(), &q); err != nil { t.Fatalf("decode: %v", err) }
	if q.Symbol != "AAPL" || !q.IsMock || q.Price <= 0 || q.Currency != "USD" {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestNewAPI_OfflineRatesAreFallback(t *testing.T) {
	h := newAPI(offlineConfig(), memory.New(), logger.Discard()).Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/currency/rates?base=EUR", nil))
	if rr.Code != http.StatusOK { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
	var resp struct {
		Base     string             `json:"base"`
		Rates    map[string]float64 `json:"rates"`
		Fallback bool               `json:"fallback"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
	if resp.Base != "EUR" || !resp.Fallback || resp.Rates["EUR"] != 1 { t.Fatalf("unexpected: %+v", resp) }
}

func TestStockProviders_FinnhubNeedsKey(t *testing.T) {
	cfg := offlineConfig()
	cfg.Finnhub.Enabled = true
	if got := stockProviders(cfg, httpx.New(0), logger.Discard()); len(got) != 0 {
		t.Fatalf("finnhub without key should be skipped, got %d providers", len(got))
	}
	cfg.Finnhub.APIKey = "k"
	cfg.AlphaVantage.Enabled = true
	got := stockProviders(cfg, httpx.New(0), logger.Discard())
	if len(got) != 2 || got[0].Name() != "AlphaVantage" || got[1].Name() != "finnhub" {
		t.Fatalf("unexpected providers: %d", len(got))
	}
}
