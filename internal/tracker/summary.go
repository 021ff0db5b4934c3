package tracker

import (
	"context"
	"strings"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/valuation"
)

// StockSummary values the owner's stock holdings in display, optionally
// restricted to one portfolio.
func (s *Service) StockSummary(ctx context.Context, owner, display, portfolioID string) (valuation.Summary, error) {
	if err := requireOwner(owner); err != nil { return valuation.Summary{}, err }
	display = strings.ToUpper(strings.TrimSpace(display))
	if display == "" { display = currency.Base }
	if err := currency.Validate(display); err != nil {
		return valuation.Summary{}, apperr.Invalid("%v", err)
	}
	if portfolioID != "" {
		if _, err := s.getPortfolio(ctx, owner, portfolioID); err != nil { return valuation.Summary{}, err }
	}
	holdings, err := s.ListHoldings(ctx, owner, portfolioID)
	if err != nil { return valuation.Summary{}, err }
	sum, err := s.valuator.Summarize(ctx, holdings, display)
	if err != nil { return valuation.Summary{}, apperr.Internal(err) }
	return sum, nil
}

// CryptoSummary values the owner's crypto holdings in USD.
func (s *Service) CryptoSummary(ctx context.Context, owner, portfolioID string) (valuation.CryptoSummary, error) {
	if err := requireOwner(owner); err != nil { return valuation.CryptoSummary{}, err }
	if portfolioID != "" {
		if _, err := s.getPortfolio(ctx, owner, portfolioID); err != nil { return valuation.CryptoSummary{}, err }
	}
	holdings, err := s.ListCryptoHoldings(ctx, owner, portfolioID)
	if err != nil { return valuation.CryptoSummary{}, err }
	return s.valuator.SummarizeCrypto(ctx, holdings), nil
}
