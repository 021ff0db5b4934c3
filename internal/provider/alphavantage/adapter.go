package alphavantage

import (
	"context"
	"strings"
	"time"

	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/provider"
)

type Config struct {
	Name        string // display name, default: AlphaVantage
	SearchLimit int    // maximum search matches returned, default 10
}

// Adapter exposes the API client as a provider.StockProvider.
type Adapter struct {
	cfg    Config
	client *AlphaVantageAPIClient
	now    func() time.Time
}

func New(cfg Config, client *AlphaVantageAPIClient) *Adapter {
	if cfg.Name == "" { cfg.Name = "AlphaVantage" }
	if cfg.SearchLimit <= 0 { cfg.SearchLimit = 10 }
	return &Adapter{cfg: cfg, client: client, now: time.Now}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	gq, err := a.client.GlobalQuote(ctx, symbol)
	if err != nil {
		return provider.Quote{}, err
	}
	return provider.Quote{
		Symbol:           strings.ToUpper(gq.Symbol),
		Price:            gq.Price,
		Change:           gq.Change,
		ChangePercent:    gq.ChangePercent,
		Volume:           gq.Volume,
		LatestTradingDay: gq.LatestTradingDay,
		PreviousClose:    gq.PreviousClose,
		Currency:         currency.CurrencyOf(symbol),
		Source:           a.cfg.Name,
		ReceivedAt:       a.now().UTC(),
	}, nil
}

func (a *Adapter) Search(ctx context.Context, keyword string) ([]provider.SymbolMatch, error) {
	matches, err := a.client.SymbolSearch(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(matches) > a.cfg.SearchLimit {
		matches = matches[:a.cfg.SearchLimit]
	}
	out := make([]provider.SymbolMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, provider.SymbolMatch{
			Symbol: m.Symbol, Name: m.Name, Type: m.Type, Region: m.Region, Currency: m.Currency,
		})
	}
	return out, nil
}
