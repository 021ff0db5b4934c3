package valuation

import (
	"context"
	"strings"

	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/domain"
)

// CryptoHoldingValue is one valued crypto holding. PriceMissing marks a
// holding valued at its buy price because no current price was available.
type CryptoHoldingValue struct {
	domain.CryptoHolding
	CurrentPrice    float64 `json:"current_price"`
	Change24h       float64 `json:"change_24h"`
	MarketValue     float64 `json:"market_value"`
	CostBasis       float64 `json:"cost_basis"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
	PriceMissing    bool    `json:"price_missing"`
}

type CryptoSummary struct {
	Currency             string               `json:"currency"`
	TotalValue           float64              `json:"total_value"`
	TotalCost            float64              `json:"total_cost"`
	TotalGainLoss        float64              `json:"total_gain_loss"`
	TotalGainLossPercent float64              `json:"total_gain_loss_percent"`
	HoldingsCount        int                  `json:"holdings_count"`
	Holdings             []CryptoHoldingValue `json:"holdings"`
}

// SummarizeCrypto values crypto holdings in USD with one batch price lookup.
func (v *Valuator) SummarizeCrypto(ctx context.Context, holdings []domain.CryptoHolding) CryptoSummary {
	s := CryptoSummary{Currency: currency.Base, Holdings: []CryptoHoldingValue{}}
	if len(holdings) == 0 {
		return s
	}
	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.CoinID)
	}
	prices := v.Prices.Prices(ctx, ids)

	var totalValue, totalCost float64
	for _, h := range holdings {
		hv := CryptoHoldingValue{CryptoHolding: h}
		price := h.BuyPrice
		if p, ok := prices[strings.ToLower(h.CoinID)]; ok {
			price = p.USD
			hv.Change24h = currency.Round2(p.USD24hChange)
		} else {
			hv.PriceMissing = true
		}
		mv := price * h.Amount
		cb := h.BuyPrice * h.Amount
		totalValue += mv
		totalCost += cb

		// sub-cent coins keep their precision
		hv.CurrentPrice = price
		hv.MarketValue = currency.Round2(mv)
		hv.CostBasis = currency.Round2(cb)
		hv.GainLoss = currency.Round2(mv - cb)
		hv.GainLossPercent = currency.Round2(Percent(price, h.BuyPrice))
		s.Holdings = append(s.Holdings, hv)
	}
	s.HoldingsCount = len(s.Holdings)
	s.TotalValue = currency.Round2(totalValue)
	s.TotalCost = currency.Round2(totalCost)
	s.TotalGainLoss = currency.Round2(totalValue - totalCost)
	s.TotalGainLossPercent = currency.Round2(Percent(totalValue, totalCost))
	return s
}
