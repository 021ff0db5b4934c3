package tracker

import (
	"context"
	"errors"
	"strings"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/store"
	"portfoliotracker/internal/valuation"
)

type PortfolioInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PortfolioSummary struct {
	Portfolio domain.Portfolio `json:"portfolio"`
	valuation.Summary
}

// ListPortfolios returns the owner's portfolios, creating the default one
// on first use.
func (s *Service) ListPortfolios(ctx context.Context, owner string) ([]domain.Portfolio, error) {
	if err := requireOwner(owner); err != nil { return nil, err }
	if _, err := s.defaultPortfolio(ctx, owner); err != nil { return nil, err }
	out, err := s.portfolios.Find(ctx, store.Filter{"owner_id": owner})
	return out, storeErr(err, "portfolio")
}

func (s *Service) defaultPortfolio(ctx context.Context, owner string) (domain.Portfolio, error) {
	s.defaultMu.Lock()
	defer s.defaultMu.Unlock()
	p, err := s.portfolios.FindOne(ctx, store.Filter{"owner_id": owner, "is_default": true})
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Portfolio{}, storeErr(err, "portfolio")
	}
	p = domain.Portfolio{
		ID:        domain.NewID(),
		OwnerID:   owner,
		Name:      domain.DefaultPortfolioName,
		IsDefault: true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.portfolios.Insert(ctx, p); err != nil {
		return domain.Portfolio{}, storeErr(err, "portfolio")
	}
	s.log.Info("created default portfolio %s for %s", p.ID, owner)
	return p, nil
}

func (s *Service) getPortfolio(ctx context.Context, owner, id string) (domain.Portfolio, error) {
	p, err := s.portfolios.FindOne(ctx, store.Filter{"owner_id": owner, "id": id})
	return p, storeErr(err, "portfolio")
}

func (s *Service) CreatePortfolio(ctx context.Context, owner string, in PortfolioInput) (domain.Portfolio, error) {
	if err := requireOwner(owner); err != nil { return domain.Portfolio{}, err }
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Portfolio{}, apperr.Invalid("name is required")
	}
	// make sure the default exists before any other portfolio
	if _, err := s.defaultPortfolio(ctx, owner); err != nil { return domain.Portfolio{}, err }
	p := domain.Portfolio{
		ID:          domain.NewID(),
		OwnerID:     owner,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.portfolios.Insert(ctx, p); err != nil {
		return domain.Portfolio{}, storeErr(err, "portfolio")
	}
	return p, nil
}

// DeletePortfolio removes a non-default portfolio and every holding in it.
func (s *Service) DeletePortfolio(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil { return err }
	p, err := s.getPortfolio(ctx, owner, id)
	if err != nil { return err }
	if p.IsDefault {
		return apperr.Conflict("the default portfolio cannot be deleted")
	}
	f := store.Filter{"owner_id": owner, "portfolio_id": id}
	if _, err := s.holdings.Delete(ctx, f); err != nil { return storeErr(err, "holding") }
	if _, err := s.cryptoHoldings.Delete(ctx, f); err != nil { return storeErr(err, "crypto holding") }
	_, err = s.portfolios.Delete(ctx, store.Filter{"owner_id": owner, "id": id})
	return storeErr(err, "portfolio")
}

// PortfolioSummary values the stock holdings of one portfolio.
func (s *Service) PortfolioSummary(ctx context.Context, owner, id, display string) (PortfolioSummary, error) {
	if err := requireOwner(owner); err != nil { return PortfolioSummary{}, err }
	p, err := s.getPortfolio(ctx, owner, id)
	if err != nil { return PortfolioSummary{}, err }
	sum, err := s.StockSummary(ctx, owner, display, id)
	if err != nil { return PortfolioSummary{}, err }
	return PortfolioSummary{Portfolio: p, Summary: sum}, nil
}
