package synthetic

import (
	"strings"

	"portfoliotracker/internal/provider"
)

var popularStocks = []provider.SymbolMatch{
	{Symbol: "AAPL", Name: "Apple Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "GOOGL", Name: "Alphabet Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "AMZN", Name: "Amazon.com Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "TSLA", Name: "Tesla Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "META", Name: "Meta Platforms Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "V", Name: "Visa Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "WMT", Name: "Walmart Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "MSTR", Name: "MicroStrategy Inc", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "BMW.DEX", Name: "Bayerische Motoren Werke AG", Type: "Equity", Region: "XETRA", Currency: "EUR"},
	{Symbol: "SAP.DEX", Name: "SAP SE", Type: "Equity", Region: "XETRA", Currency: "EUR"},
	{Symbol: "SIE.DEX", Name: "Siemens AG", Type: "Equity", Region: "XETRA", Currency: "EUR"},
	{Symbol: "MC.PAR", Name: "LVMH Moet Hennessy Louis Vuitton", Type: "Equity", Region: "Paris", Currency: "EUR"},
	{Symbol: "ASML.AMS", Name: "ASML Holding NV", Type: "Equity", Region: "Amsterdam", Currency: "EUR"},
	{Symbol: "SHEL.LON", Name: "Shell plc", Type: "Equity", Region: "United Kingdom", Currency: "GBP"},
	{Symbol: "HSBA.LON", Name: "HSBC Holdings plc", Type: "Equity", Region: "United Kingdom", Currency: "GBP"},
	{Symbol: "NESN.SWX", Name: "Nestle SA", Type: "Equity", Region: "Switzerland", Currency: "CHF"},
	{Symbol: "NOVO-B.CPH", Name: "Novo Nordisk A/S", Type: "Equity", Region: "Copenhagen", Currency: "DKK"},
	{Symbol: "VOLV-B.STO", Name: "Volvo AB", Type: "Equity", Region: "Stockholm", Currency: "SEK"},
	{Symbol: "EQNR.OSL", Name: "Equinor ASA", Type: "Equity", Region: "Oslo", Currency: "NOK"},
}

// PopularStocks returns the popular stocks whose symbol or name contains
// query, case-insensitively. An empty query returns all of them.
func PopularStocks(query string) []provider.SymbolMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]provider.SymbolMatch, 0, len(popularStocks))
	for _, s := range popularStocks {
		if q == "" || strings.Contains(strings.ToLower(s.Symbol), q) || strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

var topCoins = []provider.Coin{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Rank: 1},
	{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", Rank: 2},
	{ID: "tether", Symbol: "USDT", Name: "Tether", Rank: 3},
	{ID: "binancecoin", Symbol: "BNB", Name: "BNB", Rank: 4},
	{ID: "solana", Symbol: "SOL", Name: "Solana", Rank: 5},
	{ID: "ripple", Symbol: "XRP", Name: "XRP", Rank: 6},
	{ID: "usd-coin", Symbol: "USDC", Name: "USDC", Rank: 7},
	{ID: "cardano", Symbol: "ADA", Name: "Cardano", Rank: 8},
	{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin", Rank: 9},
	{ID: "polkadot", Symbol: "DOT", Name: "Polkadot", Rank: 10},
}

// TopCoins returns at most n coins of the static ranking.
func TopCoins(n int) []provider.Coin {
	if n <= 0 || n > len(topCoins) {
		n = len(topCoins)
	}
	out := make([]provider.Coin, n)
	copy(out, topCoins[:n])
	return out
}

// SearchCoins filters the static coin list by id, symbol or name.
func SearchCoins(query string) []provider.Coin {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []provider.Coin
	for _, c := range topCoins {
		if q == "" || strings.Contains(c.ID, q) || strings.Contains(strings.ToLower(c.Symbol), q) || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
