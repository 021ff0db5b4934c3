// Package finnhub is a stock provider backed by the Finnhub REST API.
// The free tier only covers US listings, so symbols carrying an exchange
// suffix are refused without a request.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/provider"
)

type Config struct {
	Name        string // default: finnhub
	URL         string // default: https://finnhub.io
	APIKey      string // sent as X-Finnhub-Token
	SearchLimit int    // default 10
}

type Provider struct {
	cfg    Config
	client *httpx.Client
	now    func() time.Time
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "finnhub" }
	if cfg.URL == "" { cfg.URL = "https://finnhub.io" }
	if cfg.SearchLimit <= 0 { cfg.SearchLimit = 10 }
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Provider{cfg: cfg, client: hc, now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

type quoteResponse struct {
	C  json.Number `json:"c"`  // current price
	D  json.Number `json:"d"`  // change
	DP json.Number `json:"dp"` // change percent
	PC json.Number `json:"pc"` // previous close
	T  int64       `json:"t"`  // unix seconds
}

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

func (p *Provider) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ".") {
		return provider.Quote{}, fmt.Errorf("finnhub: %s: %w", symbol, provider.ErrNoData)
	}
	var body quoteResponse
	if err := p.get(ctx, "/api/v1/quote", url.Values{"symbol": {symbol}}, &body); err != nil {
		return provider.Quote{}, err
	}
	price := num(body.C)
	if price <= 0 {
		return provider.Quote{}, fmt.Errorf("finnhub: %s: %w", symbol, provider.ErrNoData)
	}
	q := provider.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        num(body.D),
		ChangePercent: num(body.DP),
		PreviousClose: num(body.PC),
		Currency:      currency.CurrencyOf(symbol),
		Source:        p.cfg.Name,
		ReceivedAt:    p.now().UTC(),
	}
	if body.T > 0 {
		q.LatestTradingDay = time.Unix(body.T, 0).UTC().Format(time.DateOnly)
	}
	return q, nil
}

func (p *Provider) Search(ctx context.Context, keyword string) ([]provider.SymbolMatch, error) {
	var body searchResponse
	if err := p.get(ctx, "/api/v1/search", url.Values{"q": {keyword}}, &body); err != nil {
		return nil, err
	}
	out := make([]provider.SymbolMatch, 0, min(len(body.Result), p.cfg.SearchLimit))
	for _, r := range body.Result {
		if len(out) == p.cfg.SearchLimit { break }
		out = append(out, provider.SymbolMatch{
			Symbol:   r.Symbol,
			Name:     r.Description,
			Type:     r.Type,
			Region:   "United States",
			Currency: currency.CurrencyOf(r.Symbol),
		})
	}
	return out, nil
}

func (p *Provider) get(ctx context.Context, path string, q url.Values, out any) error {
	u := p.cfg.URL + path + "?" + q.Encode()
	var headers map[string]string
	if p.cfg.APIKey != "" { headers = map[string]string{"X-Finnhub-Token": p.cfg.APIKey} }
	err := p.client.GetJSON(ctx, u, headers, out)
	var se *httpx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return fmt.Errorf("finnhub: %w", provider.ErrRateLimited)
	}
	return err
}

func num(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil { return 0 }
	return f
}
