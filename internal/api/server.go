// Package api exposes the tracker over HTTP with gin. Market data routes are
// public; everything under a user's portfolio needs the X-User-ID header.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
	"portfoliotracker/internal/tracker"
)

// UserHeader carries the caller's identity, set by the session layer in front
// of this service.
const UserHeader = "X-User-ID"

const ownerKey = "owner"

// Stocks is the stock side of the provider gateway.
type Stocks interface {
	Quote(ctx context.Context, symbol string) (provider.Quote, error)
	Quotes(ctx context.Context, symbols []string) (map[string]provider.Quote, []string, error)
	Search(ctx context.Context, keyword string) ([]provider.SymbolMatch, error)
}

// Coins is the crypto side of the provider gateway.
type Coins interface {
	Price(ctx context.Context, id string) (provider.CoinPrice, bool)
	Search(ctx context.Context, keyword string) []provider.Coin
	Top(ctx context.Context, n int) []provider.Coin
}

type Rates interface {
	Rates(ctx context.Context, base string) currency.Table
}

type Deps struct {
	Stocks         Stocks
	Coins          Coins
	Rates          Rates
	Tracker        *tracker.Service
	RequestTimeout time.Duration
	Log            *logger.Logger
	Now            func() time.Time
}

type Server struct {
	d      Deps
	engine *gin.Engine
}

// New builds the gin engine with all routes registered.
func New(d Deps) *Server {
	if d.Now == nil { d.Now = time.Now }
	if d.RequestTimeout <= 0 { d.RequestTimeout = 15 * time.Second }
	s := &Server{d: d, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.requestLog(), cors(), limitBody(), gzipJSON())
	s.routes()
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.health)

	api.GET("/stocks/quote/:symbol", s.stockQuote)
	api.GET("/stocks/quotes", s.stockQuotes)
	api.GET("/stocks/search", s.stockSearch)
	api.GET("/currency/rates", s.currencyRates)
	api.GET("/currency/supported", s.currencySupported)
	api.GET("/crypto/top", s.cryptoTop)
	api.GET("/crypto/search", s.cryptoSearch)
	api.GET("/crypto/price/:coin_id", s.cryptoPrice)

	user := api.Group("", requireUser())
	user.GET("/portfolios", s.listPortfolios)
	user.POST("/portfolios", s.createPortfolio)
	user.DELETE("/portfolios/:id", s.deletePortfolio)
	user.GET("/portfolios/:id/summary", s.portfolioSummary)

	user.GET("/holdings", s.listHoldings)
	user.POST("/holdings", s.createHolding)
	user.PUT("/holdings/:id", s.updateHolding)
	user.DELETE("/holdings/:id", s.deleteHolding)
	user.GET("/portfolio/summary", s.stockSummary)

	user.GET("/crypto/holdings", s.listCryptoHoldings)
	user.POST("/crypto/holdings", s.createCryptoHolding)
	user.PUT("/crypto/holdings/:id", s.updateCryptoHolding)
	user.DELETE("/crypto/holdings/:id", s.deleteCryptoHolding)
	user.GET("/crypto/portfolio/summary", s.cryptoSummary)

	user.GET("/watchlist", s.watchlist)
	user.POST("/watchlist", s.watch)
	user.DELETE("/watchlist/:symbol", s.unwatch)
	user.GET("/crypto/watchlist", s.cryptoWatchlist)
	user.POST("/crypto/watchlist", s.watchCrypto)
	user.DELETE("/crypto/watchlist/:coin_id", s.unwatchCrypto)

	user.GET("/alerts", s.listAlerts)
	user.POST("/alerts", s.createAlert)
	user.DELETE("/alerts/:id", s.deleteAlert)
	user.GET("/alerts/check", s.checkAlerts)
	user.POST("/alerts/:id/reset", s.resetAlert)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": s.d.Now().UTC()})
}

// ctx bounds a handler's upstream work by the request timeout.
func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.d.RequestTimeout)
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(UserHeader))
		if owner == "" {
			abort(c, apperr.Unauthenticated("missing %s header", UserHeader))
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func owner(c *gin.Context) string { return c.GetString(ownerKey) }

// StatusOf maps an error kind to its HTTP status.
func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	k := apperr.KindOf(err)
	c.AbortWithStatusJSON(StatusOf(k), gin.H{"error": k, "message": apperr.Message(err)})
}

// fail logs internal errors and writes the error body.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperr.Internal(err)
	}
	if apperr.KindOf(err) == apperr.KindInternal {
		s.d.Log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	abort(c, err)
}

// bind decodes the JSON body into v, reporting decode errors as Invalid.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperr.Invalid("invalid JSON body: %v", err)
	}
	return nil
}
