// Package coingecko is a crypto provider backed by the CoinGecko v3 API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/provider"
)

type Config struct {
	Name        string // default: coingecko
	URL         string // default: https://api.coingecko.com/api/v3
	APIKey      string // optional demo key, sent as x-cg-demo-api-key
	SearchLimit int    // default 10
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "coingecko" }
	if cfg.URL == "" { cfg.URL = "https://api.coingecko.com/api/v3" }
	if cfg.SearchLimit <= 0 { cfg.SearchLimit = 10 }
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Prices returns USD prices keyed by coin id. Ids unknown to CoinGecko are
// absent from the result.
func (p *Provider) Prices(ctx context.Context, ids []string) (map[string]provider.CoinPrice, error) {
	if len(ids) == 0 {
		return map[string]provider.CoinPrice{}, nil
	}
	q := url.Values{
		"ids":                 {strings.Join(ids, ",")},
		"vs_currencies":       {"usd"},
		"include_market_cap":  {"true"},
		"include_24hr_vol":    {"true"},
		"include_24hr_change": {"true"},
	}
	// {"bitcoin":{"usd":67187.34,"usd_market_cap":1.3e12,"usd_24h_vol":2.1e10,"usd_24h_change":1.2}}
	var body map[string]map[string]json.Number
	if err := p.get(ctx, "/simple/price", q, &body); err != nil {
		return nil, err
	}
	out := make(map[string]provider.CoinPrice, len(body))
	for id, fields := range body {
		out[id] = provider.CoinPrice{
			USD:          num(fields["usd"]),
			USD24hChange: num(fields["usd_24h_change"]),
			USDMarketCap: num(fields["usd_market_cap"]),
			USD24hVol:    num(fields["usd_24h_vol"]),
		}
	}
	return out, nil
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank int    `json:"market_cap_rank"`
		Thumb         string `json:"thumb"`
		Large         string `json:"large"`
	} `json:"coins"`
}

func (p *Provider) Search(ctx context.Context, keyword string) ([]provider.Coin, error) {
	var body searchResponse
	if err := p.get(ctx, "/search", url.Values{"query": {keyword}}, &body); err != nil {
		return nil, err
	}
	out := make([]provider.Coin, 0, min(len(body.Coins), p.cfg.SearchLimit))
	for _, c := range body.Coins {
		if len(out) == p.cfg.SearchLimit { break }
		img := c.Large
		if img == "" { img = c.Thumb }
		out = append(out, provider.Coin{ID: c.ID, Symbol: strings.ToUpper(c.Symbol), Name: c.Name, Rank: c.MarketCapRank, Image: img})
	}
	return out, nil
}

type market struct {
	ID                       string      `json:"id"`
	Symbol                   string      `json:"symbol"`
	Name                     string      `json:"name"`
	Image                    string      `json:"image"`
	CurrentPrice             json.Number `json:"current_price"`
	MarketCap                json.Number `json:"market_cap"`
	MarketCapRank            int         `json:"market_cap_rank"`
	PriceChangePercentage24h json.Number `json:"price_change_percentage_24h"`
}

// Top returns the n largest coins by market cap.
func (p *Provider) Top(ctx context.Context, n int) ([]provider.Coin, error) {
	if n <= 0 { n = 10 }
	q := url.Values{
		"vs_currency": {"usd"},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(n)},
		"page":        {"1"},
		"sparkline":   {"false"},
	}
	var body []market
	if err := p.get(ctx, "/coins/markets", q, &body); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("coingecko: markets: %w", provider.ErrNoData)
	}
	out := make([]provider.Coin, 0, len(body))
	for _, m := range body {
		out = append(out, provider.Coin{
			ID:        m.ID,
			Symbol:    strings.ToUpper(m.Symbol),
			Name:      m.Name,
			Rank:      m.MarketCapRank,
			Price:     num(m.CurrentPrice),
			Change24h: num(m.PriceChangePercentage24h),
			MarketCap: num(m.MarketCap),
			Image:     m.Image,
		})
	}
	return out, nil
}

func (p *Provider) get(ctx context.Context, path string, q url.Values, out any) error {
	u := p.cfg.URL + path + "?" + q.Encode()
	var headers map[string]string
	if p.cfg.APIKey != "" { headers = map[string]string{"x-cg-demo-api-key": p.cfg.APIKey} }
	err := p.client.GetJSON(ctx, u, headers, out)
	var se *httpx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return fmt.Errorf("coingecko: %w", provider.ErrRateLimited)
	}
	return err
}

func num(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil { return 0 }
	return f
}
