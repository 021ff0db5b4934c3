package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfoliotracker/internal/tracker"
)

// reply writes v with status, or the error body when err is set.
func (s *Server) reply(c *gin.Context, status int, v any, err error) {
	if err != nil { s.fail(c, err); return }
	if v == nil {
		c.Status(status)
		return
	}
	c.JSON(status, v)
}

func (s *Server) listPortfolios(c *gin.Context) {
	out, err := s.d.Tracker.ListPortfolios(c.Request.Context(), owner(c))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) createPortfolio(c *gin.Context) {
	var in tracker.PortfolioInput
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.CreatePortfolio(c.Request.Context(), owner(c), in)
	s.reply(c, http.StatusCreated, out, err)
}

func (s *Server) deletePortfolio(c *gin.Context) {
	err := s.d.Tracker.DeletePortfolio(c.Request.Context(), owner(c), c.Param("id"))
	s.reply(c, http.StatusNoContent, nil, err)
}

func (s *Server) portfolioSummary(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()
	out, err := s.d.Tracker.PortfolioSummary(ctx, owner(c), c.Param("id"), c.Query("display_currency"))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) listHoldings(c *gin.Context) {
	out, err := s.d.Tracker.ListHoldings(c.Request.Context(), owner(c), c.Query("portfolio_id"))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) createHolding(c *gin.Context) {
	var in tracker.HoldingInput
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.CreateHolding(c.Request.Context(), owner(c), in)
	s.reply(c, http.StatusCreated, out, err)
}

func (s *Server) updateHolding(c *gin.Context) {
	var in tracker.HoldingUpdate
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.UpdateHolding(c.Request.Context(), owner(c), c.Param("id"), in)
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) deleteHolding(c *gin.Context) {
	err := s.d.Tracker.DeleteHolding(c.Request.Context(), owner(c), c.Param("id"))
	s.reply(c, http.StatusNoContent, nil, err)
}

func (s *Server) stockSummary(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()
	out, err := s.d.Tracker.StockSummary(ctx, owner(c), c.Query("display_currency"), c.Query("portfolio_id"))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) listCryptoHoldings(c *gin.Context) {
	out, err := s.d.Tracker.ListCryptoHoldings(c.Request.Context(), owner(c), c.Query("portfolio_id"))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) createCryptoHolding(c *gin.Context) {
	var in tracker.CryptoHoldingInput
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.CreateCryptoHolding(c.Request.Context(), owner(c), in)
	s.reply(c, http.StatusCreated, out, err)
}

func (s *Server) updateCryptoHolding(c *gin.Context) {
	var in tracker.CryptoHoldingUpdate
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.UpdateCryptoHolding(c.Request.Context(), owner(c), c.Param("id"), in)
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) deleteCryptoHolding(c *gin.Context) {
	err := s.d.Tracker.DeleteCryptoHolding(c.Request.Context(), owner(c), c.Param("id"))
	s.reply(c, http.StatusNoContent, nil, err)
}

func (s *Server) cryptoSummary(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()
	out, err := s.d.Tracker.CryptoSummary(ctx, owner(c), c.Query("portfolio_id"))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) watchlist(c *gin.Context) {
	out, err := s.d.Tracker.Watchlist(c.Request.Context(), owner(c))
	s.reply(c, http.StatusOK, out, err)
}

type watchInput struct {
	Symbol string `json:"symbol"`
}

func (s *Server) watch(c *gin.Context) {
	var in watchInput
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.Watch(c.Request.Context(), owner(c), in.Symbol)
	s.reply(c, http.StatusCreated, out, err)
}

func (s *Server) unwatch(c *gin.Context) {
	err := s.d.Tracker.Unwatch(c.Request.Context(), owner(c), c.Param("symbol"))
	s.reply(c, http.StatusNoContent, nil, err)
}

func (s *Server) cryptoWatchlist(c *gin.Context) {
	out, err := s.d.Tracker.CryptoWatchlist(c.Request.Context(), owner(c))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) watchCrypto(c *gin.Context) {
	var in tracker.CryptoWatchInput
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.WatchCrypto(c.Request.Context(), owner(c), in)
	s.reply(c, http.StatusCreated, out, err)
}

func (s *Server) unwatchCrypto(c *gin.Context) {
	err := s.d.Tracker.UnwatchCrypto(c.Request.Context(), owner(c), c.Param("coin_id"))
	s.reply(c, http.StatusNoContent, nil, err)
}

func (s *Server) listAlerts(c *gin.Context) {
	out, err := s.d.Tracker.ListAlerts(c.Request.Context(), owner(c))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) createAlert(c *gin.Context) {
	var in tracker.AlertInput
	if err := bind(c, &in); err != nil { s.fail(c, err); return }
	out, err := s.d.Tracker.CreateAlert(c.Request.Context(), owner(c), in)
	s.reply(c, http.StatusCreated, out, err)
}

func (s *Server) deleteAlert(c *gin.Context) {
	err := s.d.Tracker.DeleteAlert(c.Request.Context(), owner(c), c.Param("id"))
	s.reply(c, http.StatusNoContent, nil, err)
}

func (s *Server) checkAlerts(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()
	out, err := s.d.Tracker.CheckAlerts(ctx, owner(c))
	s.reply(c, http.StatusOK, out, err)
}

func (s *Server) resetAlert(c *gin.Context) {
	out, err := s.d.Tracker.ResetAlert(c.Request.Context(), owner(c), c.Param("id"))
	s.reply(c, http.StatusOK, out, err)
}
