package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"portfoliotracker/internal/api"
	"portfoliotracker/internal/cache"
	"portfoliotracker/internal/config"
	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/provider/alphavantage"
	"portfoliotracker/internal/provider/coingecko"
	"portfoliotracker/internal/provider/exchangerate"
	"portfoliotracker/internal/provider/finnhub"
	"portfoliotracker/internal/provider/ratelimit"
	"portfoliotracker/internal/provider/synthetic"
	"portfoliotracker/internal/quote"
	"portfoliotracker/internal/store"
	"portfoliotracker/internal/store/memory"
	"portfoliotracker/internal/store/sqlite"
	"portfoliotracker/internal/tracker"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.New("server", logger.LevelInfo).Fatal("config: %v", err)
	}
	log := logger.New("server", logger.ParseLevel(cfg.LogLevel))
	if cfg.LogLevel != "DEBUG" { gin.SetMode(gin.ReleaseMode) }

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg.Store, log)
	if err != nil { log.Fatal("store: %v", err) }
	defer db.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newAPI(cfg, db, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info("server listening on :%s (store=%s)", cfg.Server.Port, cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server: %v", err)
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil { log.Error("shutdown: %v", err) }
}

func openStore(ctx context.Context, cfg config.Store, log *logger.Logger) (store.Backend, error) {
	if cfg.Driver == "sqlite" {
		return sqlite.Open(ctx, cfg.Path, log.Named("sqlite"))
	}
	return memory.New(), nil
}

// newAPI wires providers, caches and the tracker service behind the HTTP API.
func newAPI(cfg config.Config, db store.Backend, log *logger.Logger) *api.Server {
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	hc := httpx.New(timeout)
	cc := cache.New()
	cc.MaxItems = cfg.Cache.MaxItems
	fallback := synthetic.New(cfg.Synthetic.Seed)

	stocks := quote.NewGateway(quote.Config{
		TTL:            time.Duration(cfg.Cache.StockTTLSeconds) * time.Second,
		BatchLimit:     cfg.Quotes.BatchLimit,
		MaxConcurrency: cfg.Quotes.MaxConcurrency,
	}, cc, fallback, log.Named("quotes"), stockProviders(cfg, hc, log)...)

	var cp provider.CryptoProvider
	if cfg.CoinGecko.Enabled {
		cp = coingecko.New(coingecko.Config{
			URL:         cfg.CoinGecko.Endpoint,
			APIKey:      cfg.CoinGecko.APIKey,
			SearchLimit: cfg.Quotes.SearchLimit,
		}, hc)
	}
	coins := quote.NewCryptoGateway(quote.CryptoConfig{
		TTL:      time.Duration(cfg.Cache.CryptoTTLSeconds) * time.Second,
		TopLimit: cfg.Quotes.TopCoinsLimit,
	}, cc, cp, log.Named("crypto"))

	rates := &currency.Converter{
		Fallback: fallback,
		Cache:    cc,
		TTL:      time.Duration(cfg.Cache.RateTTLSeconds) * time.Second,
		Log:      log.Named("currency"),
	}
	if cfg.ExchangeRate.Enabled {
		rates.Primary = exchangerate.New(exchangerate.Config{URL: cfg.ExchangeRate.Endpoint}, hc)
	}

	svc := tracker.New(db, tracker.Deps{
		Quotes:         stocks,
		Rates:          rates,
		Crypto:         coins,
		MaxConcurrency: cfg.Quotes.MaxConcurrency,
		Log:            log.Named("tracker"),
	})
	return api.New(api.Deps{
		Stocks:         stocks,
		Coins:          coins,
		Rates:          rates,
		Tracker:        svc,
		RequestTimeout: 2 * timeout,
		Log:            log.Named("api"),
	})
}

// stockProviders returns the enabled stock providers in priority order,
// each wrapped in its rate limiter.
func stockProviders(cfg config.Config, hc *httpx.Client, log *logger.Logger) []provider.StockProvider {
	var out []provider.StockProvider
	if cfg.AlphaVantage.Enabled {
		client, err := alphavantage.NewAlphaVantageAPIClient(
			cfg.AlphaVantage.APIKey,
			alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
			alphavantage.WithHTTPClient(hc.HTTP),
			alphavantage.WithHeader(http.Header{"User-Agent": []string{hc.UserAgent}}),
		)
		if err != nil {
			log.Error("alphavantage client: %v", err)
		} else {
			var p provider.StockProvider = alphavantage.New(alphavantage.Config{SearchLimit: cfg.Quotes.SearchLimit}, client)
			// the free tier allows a handful of calls per minute; fail fast
			// instead of queueing so the gateway can move on
			if cfg.AlphaVantage.MaxRequestsPerMinute > 0 {
				p = &ratelimit.TokenBucketProvider{
					P:      p,
					TB:     ratelimit.PerMinute(cfg.AlphaVantage.MaxRequestsPerMinute, cfg.AlphaVantage.Burst),
					NoWait: true,
				}
			}
			out = append(out, p)
		}
	}
	if cfg.Finnhub.Enabled {
		if cfg.Finnhub.APIKey == "" {
			log.Warning("finnhub.enabled=true but FINNHUB_API_KEY not set; skipping")
		} else {
			var p provider.StockProvider = finnhub.New(finnhub.Config{
				URL:         cfg.Finnhub.Endpoint,
				APIKey:      cfg.Finnhub.APIKey,
				SearchLimit: cfg.Quotes.SearchLimit,
			}, hc)
			// prefer token bucket with burst if RPM is set, otherwise use min-interval
			if cfg.Finnhub.MaxRequestsPerMinute > 0 {
				p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.PerMinute(cfg.Finnhub.MaxRequestsPerMinute, cfg.Finnhub.Burst), NoWait: true}
			} else if cfg.Finnhub.MinRequestIntervalSec > 0 {
				p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.Finnhub.MinRequestIntervalSec) * time.Second}
			}
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		log.Warning("no stock provider enabled; serving synthetic quotes only")
	}
	return out
}
