package provider

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRateLimited signals quota exhaustion at the upstream provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrNoData signals an empty or malformed payload.
	ErrNoData = errors.New("no data")
)

// Quote is the normalized stock quote shape returned by all stock providers.
// Monetary fields are in the symbol's native currency.
type Quote struct {
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	Change           float64   `json:"change"`
	ChangePercent    float64   `json:"change_percent"`
	Volume           int64     `json:"volume"`
	LatestTradingDay string    `json:"latest_trading_day"`
	PreviousClose    float64   `json:"previous_close"`
	Currency         string    `json:"currency"`
	IsMock           bool      `json:"is_mock"`
	Source           string    `json:"source,omitempty"`
	ReceivedAt       time.Time `json:"received_at"`
}

// SymbolMatch is one stock search result.
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Region   string `json:"region"`
	Currency string `json:"currency"`
}

// CoinPrice is the USD price snapshot of one coin.
type CoinPrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
}

// Coin describes a coin in search results and market rankings.
type Coin struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Rank      int     `json:"market_cap_rank,omitempty"`
	Price     float64 `json:"current_price,omitempty"`
	Change24h float64 `json:"price_change_percentage_24h,omitempty"`
	MarketCap float64 `json:"market_cap,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// StockProvider fetches stock quotes and symbol matches.
type StockProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (Quote, error)
	Search(ctx context.Context, keyword string) ([]SymbolMatch, error)
}

// CryptoProvider fetches coin prices, searches coins and ranks them by market cap.
type CryptoProvider interface {
	Name() string
	Prices(ctx context.Context, ids []string) (map[string]CoinPrice, error)
	Search(ctx context.Context, keyword string) ([]Coin, error)
	Top(ctx context.Context, n int) ([]Coin, error)
}

// RateProvider returns exchange rates relative to base.
type RateProvider interface {
	Name() string
	Rates(ctx context.Context, base string) (map[string]float64, error)
}
