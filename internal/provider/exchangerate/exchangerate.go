// Package exchangerate is a rate provider for the open ExchangeRate-API
// endpoint (GET {endpoint}/{BASE}).
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/provider"
)

type Config struct {
	Name string // default: exchangerate
	URL  string // default: https://open.er-api.com/v6/latest
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "exchangerate" }
	if cfg.URL == "" { cfg.URL = "https://open.er-api.com/v6/latest" }
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type apiResponse struct {
	Result    string                 `json:"result"`
	BaseCode  string                 `json:"base_code"`
	ErrorType string                 `json:"error-type"`
	Rates     map[string]json.Number `json:"rates"`
}

// Rates returns rates relative to base, keyed by upper-case currency code.
func (p *Provider) Rates(ctx context.Context, base string) (map[string]float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	var body apiResponse
	if err := p.client.GetJSON(ctx, p.cfg.URL+"/"+base, nil, &body); err != nil {
		return nil, err
	}
	if body.Result != "success" {
		return nil, fmt.Errorf("exchangerate: result=%q error=%q", body.Result, body.ErrorType)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("exchangerate: %w", provider.ErrNoData)
	}
	out := make(map[string]float64, len(body.Rates))
	for code, n := range body.Rates {
		f, err := n.Float64()
		if err != nil || f <= 0 { continue }
		out[strings.ToUpper(code)] = f
	}
	return out, nil
}
