package exchangerate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfoliotracker/internal/httpx"
	"portfoliotracker/internal/provider"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{URL: srv.URL + "/v6/latest/"}, httpx.New(time.Second))
}

func TestRates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/latest/EUR" { t.Errorf("path=%s", r.URL.Path) }
		w.Write([]byte(`{"result":"success","base_code":"EUR","rates":{"EUR":1,"USD":1.087,"GBP":0.858,"BAD":0}}`))
	})
	got, err := p.Rates(t.Context(), "eur")
	if err != nil { t.Fatalf("rates: %v", err) }
	if got["USD"] != 1.087 || got["GBP"] != 0.858 || got["EUR"] != 1 { t.Fatalf("got %v", got) }
	if _, ok := got["BAD"]; ok { t.Fatalf("non-positive rate should be dropped") }
}

func TestRates_ErrorResult(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	})
	if _, err := p.Rates(t.Context(), "XXX"); err == nil { t.Fatalf("expected error") }
}

func TestRates_EmptyAndStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"result":"success","rates":{}}`)) })
	if _, err := p.Rates(t.Context(), "USD"); !errors.Is(err, provider.ErrNoData) { t.Fatalf("want ErrNoData, got %v", err) }

	p = newTestProvider(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	_, err := p.Rates(t.Context(), "USD")
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway { t.Fatalf("want StatusError 502, got %v", err) }
}
