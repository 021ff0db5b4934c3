package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/config"
	"portfoliotracker/internal/currency"
	"portfoliotracker/internal/provider"
)

func (s *Server) stockQuote(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()
	q, err := s.d.Stocks.Quote(ctx, c.Param("symbol"))
	if err != nil { s.fail(c, err); return }
	c.JSON(http.StatusOK, q)
}

type quotesResponse struct {
	Quotes []provider.Quote `json:"quotes"`
}

func (s *Server) stockQuotes(c *gin.Context) {
	symbols := config.SplitCSV(c.Query("symbols"))
	if len(symbols) == 0 {
		s.fail(c, apperr.Invalid("missing symbols query param"))
		return
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	bySymbol, order, err := s.d.Stocks.Quotes(ctx, symbols)
	if err != nil { s.fail(c, err); return }
	resp := quotesResponse{Quotes: make([]provider.Quote, 0, len(order))}
	for _, sym := range order {
		resp.Quotes = append(resp.Quotes, bySymbol[sym])
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) stockSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		s.fail(c, apperr.Invalid("missing query param"))
		return
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	m, err := s.d.Stocks.Search(ctx, query)
	if err != nil { s.fail(c, err); return }
	if m == nil { m = []provider.SymbolMatch{} }
	c.JSON(http.StatusOK, gin.H{"results": m})
}

func (s *Server) currencyRates(c *gin.Context) {
	base := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("base", currency.Base)))
	if err := currency.Validate(base); err != nil {
		s.fail(c, apperr.Invalid("%v", err))
		return
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	t := s.d.Rates.Rates(ctx, base)
	c.JSON(http.StatusOK, gin.H{"base": t.Base, "rates": t.Rates, "fallback": t.Fallback})
}

func (s *Server) currencySupported(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": currency.Supported()})
}

func (s *Server) cryptoTop(c *gin.Context) {
	n := 0
	if v := c.Query("limit"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil || x <= 0 {
			s.fail(c, apperr.Invalid("limit must be a positive integer"))
			return
		}
		n = x
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{"coins": s.d.Coins.Top(ctx, n)})
}

func (s *Server) cryptoSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		s.fail(c, apperr.Invalid("missing query param"))
		return
	}
	ctx, cancel := s.ctx(c)
	defer cancel()
	coins := s.d.Coins.Search(ctx, query)
	if coins == nil { coins = []provider.Coin{} }
	c.JSON(http.StatusOK, gin.H{"results": coins})
}

func (s *Server) cryptoPrice(c *gin.Context) {
	id := strings.ToLower(strings.TrimSpace(c.Param("coin_id")))
	ctx, cancel := s.ctx(c)
	defer cancel()
	p, ok := s.d.Coins.Price(ctx, id)
	if !ok {
		s.fail(c, apperr.NotFound("no price for %s", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"coin_id": id, "price": p})
}
