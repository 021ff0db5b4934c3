// Package tracker is the application service behind the API. Every lookup
// is scoped by owner, so records of other owners read as not found.
package tracker

import (
	"errors"
	"strings"
	"sync"
	"time"

	"portfoliotracker/internal/alert"
	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/store"
	"portfoliotracker/internal/valuation"
)

type Deps struct {
	Quotes         valuation.Quoter
	Rates          valuation.RateSource
	Crypto         valuation.PriceSource
	MaxConcurrency int
	Now            func() time.Time
	Log            *logger.Logger
}

type Service struct {
	portfolios      *store.Collection[domain.Portfolio]
	holdings        *store.Collection[domain.Holding]
	cryptoHoldings  *store.Collection[domain.CryptoHolding]
	watchlist       *store.Collection[domain.WatchlistEntry]
	cryptoWatchlist *store.Collection[domain.CryptoWatchlistEntry]
	alerts          *store.Collection[domain.PriceAlert]

	valuator  *valuation.Valuator
	evaluator alert.Evaluator
	now       func() time.Time
	log       *logger.Logger

	// serializes lazy creation of default portfolios
	defaultMu sync.Mutex
}

func New(b store.Backend, d Deps) *Service {
	if d.Now == nil { d.Now = time.Now }
	return &Service{
		portfolios:      store.NewCollection(b, domain.Portfolios, func(p domain.Portfolio) string { return p.ID }),
		holdings:        store.NewCollection(b, domain.Holdings, func(h domain.Holding) string { return h.ID }),
		cryptoHoldings:  store.NewCollection(b, domain.CryptoHoldings, func(h domain.CryptoHolding) string { return h.ID }),
		watchlist:       store.NewCollection(b, domain.Watchlist, func(w domain.WatchlistEntry) string { return w.ID }),
		cryptoWatchlist: store.NewCollection(b, domain.CryptoWatchlist, func(w domain.CryptoWatchlistEntry) string { return w.ID }),
		alerts:          store.NewCollection(b, domain.PriceAlerts, func(a domain.PriceAlert) string { return a.ID }),
		valuator: &valuation.Valuator{
			Quotes:         d.Quotes,
			Rates:          d.Rates,
			Prices:         d.Crypto,
			MaxConcurrency: d.MaxConcurrency,
			Log:            d.Log.Named("valuation"),
		},
		evaluator: alert.Evaluator{
			Quotes:         d.Quotes,
			Prices:         d.Crypto,
			Now:            d.Now,
			MaxConcurrency: d.MaxConcurrency,
			Log:            d.Log.Named("alerts"),
		},
		now: d.Now,
		log: d.Log,
	}
}

// storeErr maps storage failures onto the error taxonomy.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("%s not found", what)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("%s already exists", what)
	default:
		return apperr.Internal(err)
	}
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperr.Unauthenticated("missing user identity")
	}
	return nil
}

func (s *Service) today() string { return s.now().UTC().Format(time.DateOnly) }

func checkDate(d string) error {
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return apperr.Invalid("buy_date must be YYYY-MM-DD, got %q", d)
	}
	return nil
}
