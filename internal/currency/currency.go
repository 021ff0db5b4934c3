// Package currency resolves native currencies, caches exchange-rate tables and
// converts amounts between currencies.
package currency

import (
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Base is the currency every rate table is fetched against for portfolio-wide conversion.
const Base = "USD"

// suffixCurrency maps exchange suffixes to the currency the exchange quotes in.
var suffixCurrency = map[string]string{
	".LON": "GBP",
	".DEX": "EUR",
	".PAR": "EUR",
	".AMS": "EUR",
	".MIL": "EUR",
	".MAD": "EUR",
	".BRU": "EUR",
	".SWX": "CHF",
	".CPH": "DKK",
	".STO": "SEK",
	".OSL": "NOK",
}

// CurrencyOf returns the native currency of symbol, derived from its exchange
// suffix. Symbols without a known suffix are priced in USD.
func CurrencyOf(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndex(s, "."); i >= 0 {
		if c, ok := suffixCurrency[s[i:]]; ok {
			return c
		}
	}
	return Base
}

// supported lists the display currencies offered to users.
var supported = []struct{ code, name string }{
	{"USD", "US Dollar"},
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"CHF", "Swiss Franc"},
	{"DKK", "Danish Krone"},
	{"SEK", "Swedish Krona"},
	{"NOK", "Norwegian Krone"},
	{"JPY", "Japanese Yen"},
	{"CAD", "Canadian Dollar"},
	{"AUD", "Australian Dollar"},
}

// Info describes one supported currency.
type Info struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Fraction int    `json:"fraction"`
}

// Supported returns the supported display currencies sorted by code.
func Supported() []Info {
	out := make([]Info, 0, len(supported))
	for _, s := range supported {
		info := Info{Code: s.code, Name: s.name, Symbol: s.code, Fraction: 2}
		if c := money.GetCurrency(s.code); c != nil {
			info.Symbol = c.Grapheme
			info.Fraction = c.Fraction
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// IsSupported reports whether code is an offered display currency.
func IsSupported(code string) bool {
	code = strings.ToUpper(code)
	for _, s := range supported {
		if s.code == code {
			return true
		}
	}
	return false
}

// Round2 rounds a monetary value half away from zero to 2 decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
