// Package domain holds the persisted records of the tracker. Every monetary
// field is in the native currency of its asset.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"portfoliotracker/internal/apperr"
)

// Collection names.
const (
	Portfolios      = "portfolios"
	Holdings        = "holdings"
	CryptoHoldings  = "crypto_holdings"
	Watchlist       = "watchlist"
	CryptoWatchlist = "crypto_watchlist"
	PriceAlerts     = "price_alerts"
)

// DefaultPortfolioName is the name of the portfolio created on first use.
const DefaultPortfolioName = "Main Portfolio"

// NewID returns a fresh record id.
func NewID() string { return uuid.NewString() }

type Portfolio struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

type Holding struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	PortfolioID string    `json:"portfolio_id"`
	Symbol      string    `json:"symbol"`
	Shares      float64   `json:"shares"`
	BuyPrice    float64   `json:"buy_price"`
	BuyDate     string    `json:"buy_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type CryptoHolding struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	PortfolioID string    `json:"portfolio_id"`
	CoinID      string    `json:"coin_id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	BuyPrice    float64   `json:"buy_price"`
	BuyDate     string    `json:"buy_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type WatchlistEntry struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"added_at"`
}

type CryptoWatchlistEntry struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	CoinID  string    `json:"coin_id"`
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

type Condition string

const (
	Above Condition = "above"
	Below Condition = "below"
)

// PriceAlert fires once when the price of its asset crosses TargetPrice in
// the direction of Condition. Ties count as crossed. CurrentPrice is persisted
// on trigger and only attached on read otherwise.
type PriceAlert struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	AssetType    AssetType  `json:"asset_type"`
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name,omitempty"`
	CoinID       string     `json:"coin_id,omitempty"`
	TargetPrice  float64    `json:"target_price"`
	Condition    Condition  `json:"condition"`
	CurrentPrice *float64   `json:"current_price"`
	Triggered    bool       `json:"triggered"`
	TriggeredAt  *time.Time `json:"triggered_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Key is the symbol the alert is priced by: the coin id for crypto alerts.
func (a PriceAlert) Key() string {
	if a.AssetType == AssetCrypto { return a.CoinID }
	return a.Symbol
}

// Crossed reports whether price satisfies the alert condition.
func (a PriceAlert) Crossed(price float64) bool {
	switch a.Condition {
	case Above:
		return price >= a.TargetPrice
	case Below:
		return price <= a.TargetPrice
	}
	return false
}

// Validate normalizes a new alert and checks its fields.
func (a *PriceAlert) Validate() error {
	a.AssetType = AssetType(strings.ToLower(strings.TrimSpace(string(a.AssetType))))
	if a.AssetType == "" { a.AssetType = AssetStock }
	a.Condition = Condition(strings.ToLower(strings.TrimSpace(string(a.Condition))))
	switch a.AssetType {
	case AssetStock:
		a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
		if a.Symbol == "" { return apperr.Invalid("symbol is required") }
	case AssetCrypto:
		a.CoinID = strings.ToLower(strings.TrimSpace(a.CoinID))
		if a.CoinID == "" { return apperr.Invalid("coin_id is required for crypto alerts") }
		a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
		if a.Symbol == "" { a.Symbol = strings.ToUpper(a.CoinID) }
	default:
		return apperr.Invalid("asset_type must be stock or crypto, got %q", a.AssetType)
	}
	if a.Condition != Above && a.Condition != Below {
		return apperr.Invalid("condition must be above or below, got %q", a.Condition)
	}
	if a.TargetPrice <= 0 {
		return apperr.Invalid("target_price must be greater than 0")
	}
	return nil
}
