package quote

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"portfoliotracker/internal/cache"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/provider/synthetic"
)

type CryptoConfig struct {
	TTL      time.Duration // default 60s
	TopLimit int           // cap for Top, default 20
}

// CryptoGateway serves coin prices, coin search and market-cap rankings.
// Provider may be nil, in which case only the static coin list is served
// and prices are unavailable.
type CryptoGateway struct {
	cfg      CryptoConfig
	provider provider.CryptoProvider
	cache    cache.Cache
	log      *logger.Logger
}

func NewCryptoGateway(cfg CryptoConfig, c cache.Cache, p provider.CryptoProvider, log *logger.Logger) *CryptoGateway {
	if cfg.TTL == 0 { cfg.TTL = time.Minute }
	if cfg.TopLimit <= 0 { cfg.TopLimit = 20 }
	return &CryptoGateway{cfg: cfg, provider: p, cache: c, log: log}
}

// NormalizeIDs lower-cases, de-duplicates and sorts coin ids.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" { out = append(out, id) }
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Prices returns USD prices for ids in one provider call. Coins the provider
// does not know are absent. On failure the result is empty and nothing is
// cached, so the next call retries.
func (g *CryptoGateway) Prices(ctx context.Context, ids []string) map[string]provider.CoinPrice {
	ids = NormalizeIDs(ids)
	if len(ids) == 0 || g.provider == nil {
		return map[string]provider.CoinPrice{}
	}
	key := "crypto_prices_" + strings.Join(ids, ",")
	prices, err := cache.Fetch(ctx, g.cache, key, g.cfg.TTL, func(ctx context.Context) (map[string]provider.CoinPrice, error) {
		return g.provider.Prices(ctx, ids)
	})
	if err != nil {
		g.log.Warning("crypto prices %v from %s failed: %v", ids, g.provider.Name(), err)
		return map[string]provider.CoinPrice{}
	}
	return prices
}

// Price returns the USD price of one coin.
func (g *CryptoGateway) Price(ctx context.Context, id string) (provider.CoinPrice, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	p, ok := g.Prices(ctx, []string{id})[id]
	return p, ok
}

// Search returns provider matches, else the static coin list filtered by keyword.
func (g *CryptoGateway) Search(ctx context.Context, keyword string) []provider.Coin {
	keyword = strings.TrimSpace(keyword)
	if g.provider != nil {
		coins, err := g.provider.Search(ctx, keyword)
		if err == nil && len(coins) > 0 {
			return coins
		}
		if err != nil {
			g.log.Warning("crypto search %q from %s failed: %v", keyword, g.provider.Name(), err)
		}
	}
	return synthetic.SearchCoins(keyword)
}

// Top returns the n largest coins by market cap, n capped at TopLimit.
func (g *CryptoGateway) Top(ctx context.Context, n int) []provider.Coin {
	if n <= 0 || n > g.cfg.TopLimit { n = g.cfg.TopLimit }
	if g.provider != nil {
		coins, err := cache.Fetch(ctx, g.cache, "crypto_top_"+strconv.Itoa(n), g.cfg.TTL, func(ctx context.Context) ([]provider.Coin, error) {
			return g.provider.Top(ctx, n)
		})
		if err == nil {
			return coins
		}
		g.log.Warning("top coins from %s failed: %v", g.provider.Name(), err)
	}
	return synthetic.TopCoins(n)
}
