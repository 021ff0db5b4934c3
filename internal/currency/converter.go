package currency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfoliotracker/internal/cache"
	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/logger"
	"portfoliotracker/internal/provider"
)

// Table is a rate table relative to Base: one unit of Base buys Rates[code] of code.
type Table struct {
	Base     string             `json:"base"`
	Rates    map[string]float64 `json:"rates"`
	Fallback bool               `json:"is_fallback"`
}

// Rate returns the rate of code relative to the table base.
func (t Table) Rate(code string) (float64, bool) {
	r, ok := t.Rates[strings.ToUpper(code)]
	if !ok || r <= 0 {
		return 0, false
	}
	return r, true
}

// Cross converts amount from one currency to another by routing through the
// table base: from -> base (divide) -> to (multiply). Missing rates count as 1.0
// and are reported through ok=false.
func (t Table) Cross(amount float64, from, to string) (v float64, ok bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, true
	}
	ok = true
	rf, found := t.Rate(from)
	if !found {
		rf, ok = 1, false
	}
	rt, found := t.Rate(to)
	if !found {
		rt, ok = 1, false
	}
	return amount / rf * rt, ok
}

// DeriveFromUSD rebases a USD-relative table onto base. The result always
// contains base: 1.0. An unknown base leaves the USD rates unchanged.
func DeriveFromUSD(usd map[string]float64, base string) map[string]float64 {
	base = strings.ToUpper(base)
	div := 1.0
	if r, ok := usd[base]; ok && r > 0 {
		div = r
	}
	out := make(map[string]float64, len(usd)+1)
	for code, r := range usd {
		out[code] = r / div
	}
	out[base] = 1.0
	return out
}

// Converter fetches rate tables through the cache and converts amounts.
// Primary may be nil; Fallback must always answer.
type Converter struct {
	Primary  provider.RateProvider
	Fallback provider.RateProvider
	Cache    cache.Cache
	TTL      time.Duration
	Log      *logger.Logger
}

// Rates returns the rate table relative to base. It never fails: when the
// primary provider is unreachable the fallback table is returned.
func (c *Converter) Rates(ctx context.Context, base string) Table {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = Base
	}
	t, err := cache.Fetch(ctx, c.Cache, "rates_"+base, c.TTL, func(ctx context.Context) (Table, error) {
		// a fallback table is cached too, so the fetch outlives its caller
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpx.DefaultTimeout)
		defer cancel()
		return c.fetch(ctx, base), nil
	})
	if err != nil {
		// only a foreign value under our key gets here
		c.Log.Error("rates cache for %s: %v", base, err)
		return c.fetch(ctx, base)
	}
	return t
}

func (c *Converter) fetch(ctx context.Context, base string) Table {
	if c.Primary != nil {
		rates, err := c.Primary.Rates(ctx, base)
		if err == nil && len(rates) > 0 {
			out := make(map[string]float64, len(rates)+1)
			for k, v := range rates {
				out[strings.ToUpper(k)] = v
			}
			out[base] = 1.0
			return Table{Base: base, Rates: out}
		}
		if err == nil {
			err = provider.ErrNoData
		}
		c.Log.Warning("exchange rates for %s from %s unavailable, using fallback: %v", base, c.Primary.Name(), err)
	}
	if c.Fallback == nil {
		return Table{Base: base, Rates: map[string]float64{base: 1.0}, Fallback: true}
	}
	rates, err := c.Fallback.Rates(ctx, base)
	if err != nil {
		c.Log.Error("fallback rates for %s: %v", base, err)
		rates = map[string]float64{base: 1.0}
	}
	return Table{Base: base, Rates: rates, Fallback: true}
}

// Convert converts amount between currencies using a table based on from.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) float64 {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount
	}
	t := c.Rates(ctx, from)
	r, ok := t.Rate(to)
	if !ok {
		c.Log.Warning("no %s rate in %s table, assuming parity", to, from)
		r = 1.0
	}
	return amount * r
}

// ToDisplay converts a native amount to the display currency through a
// USD-based table.
func (c *Converter) ToDisplay(usd Table, amount float64, native, display string) float64 {
	v, ok := usd.Cross(amount, native, display)
	if !ok {
		c.Log.Warning("missing rate converting %s to %s, assuming parity", native, display)
	}
	return v
}

// Validate checks that code is a supported display currency.
func Validate(code string) error {
	if !IsSupported(code) {
		return fmt.Errorf("unsupported currency %q", code)
	}
	return nil
}
