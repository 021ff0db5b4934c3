package tracker

import (
	"context"
	"strings"

	"portfoliotracker/internal/apperr"
	"portfoliotracker/internal/domain"
	"portfoliotracker/internal/store"
)

type CryptoWatchInput struct {
	CoinID string `json:"coin_id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (s *Service) Watchlist(ctx context.Context, owner string) ([]domain.WatchlistEntry, error) {
	if err := requireOwner(owner); err != nil { return nil, err }
	out, err := s.watchlist.Find(ctx, store.Filter{"owner_id": owner})
	return out, storeErr(err, "watchlist entry")
}

// Watch adds symbol to the owner's watchlist; a symbol already present is a Conflict.
func (s *Service) Watch(ctx context.Context, owner, symbol string) (domain.WatchlistEntry, error) {
	if err := requireOwner(owner); err != nil { return domain.WatchlistEntry{}, err }
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" { return domain.WatchlistEntry{}, apperr.Invalid("symbol is required") }
	n, err := s.watchlist.Count(ctx, store.Filter{"owner_id": owner, "symbol": symbol})
	if err != nil { return domain.WatchlistEntry{}, storeErr(err, "watchlist entry") }
	if n > 0 { return domain.WatchlistEntry{}, apperr.Conflict("%s is already in the watchlist", symbol) }

	w := domain.WatchlistEntry{ID: domain.NewID(), OwnerID: owner, Symbol: symbol, AddedAt: s.now().UTC()}
	if err := s.watchlist.Insert(ctx, w); err != nil { return domain.WatchlistEntry{}, storeErr(err, "watchlist entry") }
	return w, nil
}

func (s *Service) Unwatch(ctx context.Context, owner, symbol string) error {
	if err := requireOwner(owner); err != nil { return err }
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	n, err := s.watchlist.Delete(ctx, store.Filter{"owner_id": owner, "symbol": symbol})
	if err != nil { return storeErr(err, "watchlist entry") }
	if n == 0 { return apperr.NotFound("%s is not in the watchlist", symbol) }
	return nil
}

func (s *Service) CryptoWatchlist(ctx context.Context, owner string) ([]domain.CryptoWatchlistEntry, error) {
	if err := requireOwner(owner); err != nil { return nil, err }
	out, err := s.cryptoWatchlist.Find(ctx, store.Filter{"owner_id": owner})
	return out, storeErr(err, "crypto watchlist entry")
}

func (s *Service) WatchCrypto(ctx context.Context, owner string, in CryptoWatchInput) (domain.CryptoWatchlistEntry, error) {
	if err := requireOwner(owner); err != nil { return domain.CryptoWatchlistEntry{}, err }
	coin := strings.ToLower(strings.TrimSpace(in.CoinID))
	if coin == "" { return domain.CryptoWatchlistEntry{}, apperr.Invalid("coin_id is required") }
	n, err := s.cryptoWatchlist.Count(ctx, store.Filter{"owner_id": owner, "coin_id": coin})
	if err != nil { return domain.CryptoWatchlistEntry{}, storeErr(err, "crypto watchlist entry") }
	if n > 0 { return domain.CryptoWatchlistEntry{}, apperr.Conflict("%s is already in the crypto watchlist", coin) }

	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" { symbol = strings.ToUpper(coin) }
	w := domain.CryptoWatchlistEntry{
		ID:      domain.NewID(),
		OwnerID: owner,
		CoinID:  coin,
		Symbol:  symbol,
		Name:    strings.TrimSpace(in.Name),
		AddedAt: s.now().UTC(),
	}
	if err := s.cryptoWatchlist.Insert(ctx, w); err != nil { return domain.CryptoWatchlistEntry{}, storeErr(err, "crypto watchlist entry") }
	return w, nil
}

func (s *Service) UnwatchCrypto(ctx context.Context, owner, coinID string) error {
	if err := requireOwner(owner); err != nil { return err }
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	n, err := s.cryptoWatchlist.Delete(ctx, store.Filter{"owner_id": owner, "coin_id": coinID})
	if err != nil { return storeErr(err, "crypto watchlist entry") }
	if n == 0 { return apperr.NotFound("%s is not in the crypto watchlist", coinID) }
	return nil
}
