// Command quote queries the configured market data providers directly,
// bypassing the cache, and prints what each one returns. Useful to check API
// keys and quotas.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"portfoliotracker/internal/config"
	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/provider/alphavantage"
	"portfoliotracker/internal/provider/coingecko"
	"portfoliotracker/internal/provider/exchangerate"
	"portfoliotracker/internal/provider/finnhub"
	"portfoliotracker/internal/provider/synthetic"
)

type report struct {
	Quotes map[string][]provider.Quote   `json:"quotes,omitempty"`
	Errors map[string][]string           `json:"errors,omitempty"`
	Coins  map[string]provider.CoinPrice `json:"coins,omitempty"`
	Rates  map[string]map[string]float64 `json:"rates,omitempty"`
}

func main() {
	var symbolsCSV, coinsCSV, ratesBase, configPath string
	var timeout int
	var synth bool

	flag.StringVar(&symbolsCSV, "symbols", getenv("SYMBOLS", "AAPL"), "comma-separated stock symbols")
	flag.StringVar(&coinsCSV, "coins", getenv("COINS", ""), "comma-separated CoinGecko coin ids")
	flag.StringVar(&ratesBase, "rates", getenv("RATES_BASE", ""), "print the exchange rate table for this base currency")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "overall timeout in seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml or config.json (optional)")
	flag.BoolVar(&synth, "synthetic", false, "include the synthetic provider")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.New("quote", logger.LevelInfo).Fatal("config: %v", err)
	}
	log := logger.New("quote", logger.ParseLevel(cfg.LogLevel))
	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	var out report
	if symbols := config.SplitCSV(symbolsCSV); len(symbols) > 0 {
		providers := stockProviders(cfg, hc, log)
		if synth { providers = append(providers, synthetic.New(cfg.Synthetic.Seed)) }
		if len(providers) == 0 { log.Fatal("no stock providers configured; set API keys or pass -synthetic") }
		out.Quotes, out.Errors = fetchAll(ctx, providers, symbols)
	}
	if coins := config.SplitCSV(coinsCSV); len(coins) > 0 {
		cg := coingecko.New(coingecko.Config{URL: cfg.CoinGecko.Endpoint, APIKey: cfg.CoinGecko.APIKey}, hc)
		out.Coins, err = cg.Prices(ctx, coins)
		if err != nil { log.Error("%s: %v", cg.Name(), err) }
	}
	if ratesBase != "" {
		base := strings.ToUpper(ratesBase)
		er := exchangerate.New(exchangerate.Config{URL: cfg.ExchangeRate.Endpoint}, hc)
		rates, err := er.Rates(ctx, base)
		if err != nil {
			log.Error("%s: %v", er.Name(), err)
		} else {
			out.Rates = map[string]map[string]float64{base: rates}
		}
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

// fetchAll asks every provider for every symbol concurrently and groups the
// answers by provider name.
func fetchAll(ctx context.Context, providers []provider.StockProvider, symbols []string) (map[string][]provider.Quote, map[string][]string) {
	type result struct {
		name string
		q    provider.Quote
		err  error
	}
	ch := make(chan result, len(providers)*len(symbols))
	for _, p := range providers {
		go func() {
			// one provider at a time per symbol keeps free-tier quotas intact
			for _, s := range symbols {
				q, err := p.Quote(ctx, s)
				ch <- result{name: p.Name(), q: q, err: err}
			}
		}()
	}

	quotes := map[string][]provider.Quote{}
	errs := map[string][]string{}
	for i := 0; i < len(providers)*len(symbols); i++ {
		r := <-ch
		if r.err != nil {
			errs[r.name] = append(errs[r.name], r.err.Error())
			continue
		}
		quotes[r.name] = append(quotes[r.name], r.q)
	}
	return quotes, errs
}

func stockProviders(cfg config.Config, hc *httpx.Client, log *logger.Logger) []provider.StockProvider {
	var out []provider.StockProvider
	if cfg.AlphaVantage.Enabled && cfg.AlphaVantage.APIKey != "" {
		client, err := alphavantage.NewAlphaVantageAPIClient(
			cfg.AlphaVantage.APIKey,
			alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
			alphavantage.WithHTTPClient(hc.HTTP),
		)
		if err != nil { log.Fatal("alphavantage client: %v", err) }
		out = append(out, alphavantage.New(alphavantage.Config{}, client))
	}
	if cfg.Finnhub.Enabled && cfg.Finnhub.APIKey != "" {
		out = append(out, finnhub.New(finnhub.Config{URL: cfg.Finnhub.Endpoint, APIKey: cfg.Finnhub.APIKey}, hc))
	}
	return out
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 { return x }
	}
	return def
}
