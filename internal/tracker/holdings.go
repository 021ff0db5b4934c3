package tracker

import (
	"context"
	"strings"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/store"
)

type HoldingInput struct {
	Symbol      string  `json:"symbol"`
	Shares      float64 `json:"shares"`
	BuyPrice    float64 `json:"buy_price"`
	BuyDate     string  `json:"buy_date"`
	PortfolioID string  `json:"portfolio_id"`
}

// HoldingUpdate carries a partial update; nil fields are left unchanged.
type HoldingUpdate struct {
	Shares      *float64 `json:"shares"`
	BuyPrice    *float64 `json:"buy_price"`
	BuyDate     *string  `json:"buy_date"`
	PortfolioID *string  `json:"portfolio_id"`
}

type CryptoHoldingInput struct {
	CoinID      string  `json:"coin_id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	BuyPrice    float64 `json:"buy_price"`
	BuyDate     string  `json:"buy_date"`
	PortfolioID string  `json:"portfolio_id"`
}

type CryptoHoldingUpdate struct {
	Amount      *float64 `json:"amount"`
	BuyPrice    *float64 `json:"buy_price"`
	BuyDate     *string  `json:"buy_date"`
	PortfolioID *string  `json:"portfolio_id"`
}

// ownerFilter scopes f to owner, optionally to one portfolio.
func ownerFilter(owner, portfolioID string) store.Filter {
	f := store.Filter{"owner_id": owner}
	if portfolioID != "" { f["portfolio_id"] = portfolioID }
	return f
}

// resolvePortfolio returns id when it names one of the owner's portfolios,
// or the default portfolio id when id is empty.
func (s *Service) resolvePortfolio(ctx context.Context, owner, id string) (string, error) {
	if id == "" {
		p, err := s.defaultPortfolio(ctx, owner)
		return p.ID, err
	}
	if _, err := s.getPortfolio(ctx, owner, id); err != nil { return "", err }
	return id, nil
}

func (s *Service) ListHoldings(ctx context.Context, owner, portfolioID string) ([]domain.Holding, error) {
	if err := requireOwner(owner); err != nil { return nil, err }
	out, err := s.holdings.Find(ctx, ownerFilter(owner, portfolioID))
	return out, storeErr(err, "holding")
}

func (s *Service) CreateHolding(ctx context.Context, owner string, in HoldingInput) (domain.Holding, error) {
	if err := requireOwner(owner); err != nil { return domain.Holding{}, err }
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" { return domain.Holding{}, apperr.Invalid("symbol is required") }
	if err := checkAmounts("shares", in.Shares, in.BuyPrice); err != nil { return domain.Holding{}, err }
	date := strings.TrimSpace(in.BuyDate)
	if date == "" { date = s.today() }
	if err := checkDate(date); err != nil { return domain.Holding{}, err }
	pid, err := s.resolvePortfolio(ctx, owner, strings.TrimSpace(in.PortfolioID))
	if err != nil { return domain.Holding{}, err }

	h := domain.Holding{
		ID:          domain.NewID(),
		OwnerID:     owner,
		PortfolioID: pid,
		Symbol:      symbol,
		Shares:      in.Shares,
		BuyPrice:    in.BuyPrice,
		BuyDate:     date,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.holdings.Insert(ctx, h); err != nil { return domain.Holding{}, storeErr(err, "holding") }
	return h, nil
}

func (s *Service) UpdateHolding(ctx context.Context, owner, id string, in HoldingUpdate) (domain.Holding, error) {
	if err := requireOwner(owner); err != nil { return domain.Holding{}, err }
	set, err := s.updateFields(ctx, owner, "shares", in.Shares, in.BuyPrice, in.BuyDate, in.PortfolioID)
	if err != nil { return domain.Holding{}, err }
	f := store.Filter{"owner_id": owner, "id": id}
	if err := s.holdings.Update(ctx, f, set); err != nil { return domain.Holding{}, storeErr(err, "holding") }
	h, err := s.holdings.FindOne(ctx, f)
	return h, storeErr(err, "holding")
}

func (s *Service) DeleteHolding(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil { return err }
	n, err := s.holdings.Delete(ctx, store.Filter{"owner_id": owner, "id": id})
	if err != nil { return storeErr(err, "holding") }
	if n == 0 { return apperr.NotFound("holding not found") }
	return nil
}

func (s *Service) ListCryptoHoldings(ctx context.Context, owner, portfolioID string) ([]domain.CryptoHolding, error) {
	if err := requireOwner(owner); err != nil { return nil, err }
	out, err := s.cryptoHoldings.Find(ctx, ownerFilter(owner, portfolioID))
	return out, storeErr(err, "crypto holding")
}

func (s *Service) CreateCryptoHolding(ctx context.Context, owner string, in CryptoHoldingInput) (domain.CryptoHolding, error) {
	if err := requireOwner(owner); err != nil { return domain.CryptoHolding{}, err }
	coin := strings.ToLower(strings.TrimSpace(in.CoinID))
	if coin == "" { return domain.CryptoHolding{}, apperr.Invalid("coin_id is required") }
	if err := checkAmounts("amount", in.Amount, in.BuyPrice); err != nil { return domain.CryptoHolding{}, err }
	date := strings.TrimSpace(in.BuyDate)
	if date == "" { date = s.today() }
	if err := checkDate(date); err != nil { return domain.CryptoHolding{}, err }
	pid, err := s.resolvePortfolio(ctx, owner, strings.TrimSpace(in.PortfolioID))
	if err != nil { return domain.CryptoHolding{}, err }

	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" { symbol = strings.ToUpper(coin) }
	name := strings.TrimSpace(in.Name)
	if name == "" { name = coin }
	h := domain.CryptoHolding{
		ID:          domain.NewID(),
		OwnerID:     owner,
		PortfolioID: pid,
		CoinID:      coin,
		Symbol:      symbol,
		Name:        name,
		Amount:      in.Amount,
		BuyPrice:    in.BuyPrice,
		BuyDate:     date,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.cryptoHoldings.Insert(ctx, h); err != nil { return domain.CryptoHolding{}, storeErr(err, "crypto holding") }
	return h, nil
}

func (s *Service) UpdateCryptoHolding(ctx context.Context, owner, id string, in CryptoHoldingUpdate) (domain.CryptoHolding, error) {
	if err := requireOwner(owner); err != nil { return domain.CryptoHolding{}, err }
	set, err := s.updateFields(ctx, owner, "amount", in.Amount, in.BuyPrice, in.BuyDate, in.PortfolioID)
	if err != nil { return domain.CryptoHolding{}, err }
	f := store.Filter{"owner_id": owner, "id": id}
	if err := s.cryptoHoldings.Update(ctx, f, set); err != nil { return domain.CryptoHolding{}, storeErr(err, "crypto holding") }
	h, err := s.cryptoHoldings.FindOne(ctx, f)
	return h, storeErr(err, "crypto holding")
}

func (s *Service) DeleteCryptoHolding(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil { return err }
	n, err := s.cryptoHoldings.Delete(ctx, store.Filter{"owner_id": owner, "id": id})
	if err != nil { return storeErr(err, "crypto holding") }
	if n == 0 { return apperr.NotFound("crypto holding not found") }
	return nil
}

func checkAmounts(qtyField string, qty, buyPrice float64) error {
	if qty <= 0 { return apperr.Invalid("%s must be greater than 0", qtyField) }
	if buyPrice < 0 { return apperr.Invalid("buy_price cannot be negative") }
	return nil
}

// updateFields validates a partial update and renders it as a field set.
func (s *Service) updateFields(ctx context.Context, owner, qtyField string, qty, buyPrice *float64, buyDate, portfolioID *string) (map[string]any, error) {
	set := map[string]any{}
	if qty != nil {
		if *qty <= 0 { return nil, apperr.Invalid("%s must be greater than 0", qtyField) }
		set[qtyField] = *qty
	}
	if buyPrice != nil {
		if *buyPrice < 0 { return nil, apperr.Invalid("buy_price cannot be negative") }
		set["buy_price"] = *buyPrice
	}
	if buyDate != nil {
		if err := checkDate(*buyDate); err != nil { return nil, err }
		set["buy_date"] = *buyDate
	}
	if portfolioID != nil {
		pid, err := s.resolvePortfolio(ctx, owner, strings.TrimSpace(*portfolioID))
		if err != nil { return nil, err }
		set["portfolio_id"] = pid
	}
	return set, nil
}
