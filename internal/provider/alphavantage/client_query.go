package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"portfoliotracker/internal/provider"
)

// GlobalQuote is the GLOBAL_QUOTE payload with numeric fields parsed.
type GlobalQuote struct {
	Symbol           string
	Open             float64
	High             float64
	Low              float64
	Price            float64
	Volume           int64
	LatestTradingDay string
	PreviousClose    float64
	Change           float64
	ChangePercent    float64
}

// Match is one SYMBOL_SEARCH result.
type Match struct {
	Symbol   string
	Name     string
	Type     string
	Region   string
	Currency string
}

// get performs GET /query for function with params, returning the decoded body.
// Rate-limit notes in the body are reported as provider.ErrRateLimited.
func (c *AlphaVantageAPIClient) get(ctx context.Context, function string, params map[string]string, opts []AlphaVantageAPIClientOption) (map[string]json.RawMessage, error) {
	override := c.override(opts)

	query := maps.Clone(override.query)
	query.Set("function", function)
	for k, v := range params {
		query.Set(k, v)
	}

	url := fmt.Sprintf("%s/query?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusForbidden, http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, provider.ErrRateLimited

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", function, err)
	}

	// The API answers 200 with a "Note" or "Information" once the quota is spent.
	for _, key := range []string{"Note", "Information"} {
		if raw, ok := body[key]; ok {
			var note string
			_ = json.Unmarshal(raw, &note)
			return nil, fmt.Errorf("%w: %s", provider.ErrRateLimited, note)
		}
	}
	if raw, ok := body["Error Message"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return nil, fmt.Errorf("%w: %s", provider.ErrNoData, msg)
	}
	return body, nil
}

// GlobalQuote retrieves the latest quote for symbol.
func (c *AlphaVantageAPIClient) GlobalQuote(ctx context.Context, symbol string, opts ...AlphaVantageAPIClientOption) (*GlobalQuote, error) {
	body, err := c.get(ctx, "GLOBAL_QUOTE", map[string]string{"symbol": symbol}, opts)
	if err != nil {
		return nil, err
	}

	// {
	//   "Global Quote": {
	//     "01. symbol": "IBM",
	//     "05. price": "184.2100",
	//     "06. volume": "3170937",
	//     "07. latest trading day": "2024-05-03",
	//     "08. previous close": "181.4700",
	//     "09. change": "2.7400",
	//     "10. change percent": "1.5099%"
	//   }
	// }
	raw, ok := body["Global Quote"]
	if !ok {
		return nil, provider.ErrNoData
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding global quote: %w", err)
	}
	if len(fields) == 0 {
		return nil, provider.ErrNoData
	}

	q := &GlobalQuote{
		Symbol:           fields["01. symbol"],
		LatestTradingDay: fields["07. latest trading day"],
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"02. open", &q.Open},
		{"03. high", &q.High},
		{"04. low", &q.Low},
		{"05. price", &q.Price},
		{"08. previous close", &q.PreviousClose},
		{"09. change", &q.Change},
	} {
		v, err := parseFloat(fields[f.key])
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.key, err)
		}
		*f.dst = v
	}
	pct, err := parseFloat(strings.TrimSuffix(strings.TrimSpace(fields["10. change percent"]), "%"))
	if err != nil {
		return nil, fmt.Errorf("decoding change percent: %w", err)
	}
	q.ChangePercent = pct
	if v := strings.TrimSpace(fields["06. volume"]); v != "" {
		vol, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding volume: %w", err)
		}
		q.Volume = vol
	}
	if q.Price <= 0 {
		return nil, provider.ErrNoData
	}
	return q, nil
}

// SymbolSearch retrieves symbols matching keywords.
func (c *AlphaVantageAPIClient) SymbolSearch(ctx context.Context, keywords string, opts ...AlphaVantageAPIClientOption) ([]Match, error) {
	body, err := c.get(ctx, "SYMBOL_SEARCH", map[string]string{"keywords": keywords}, opts)
	if err != nil {
		return nil, err
	}
	raw, ok := body["bestMatches"]
	if !ok {
		return nil, provider.ErrNoData
	}
	var matches []map[string]string
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, fmt.Errorf("decoding best matches: %w", err)
	}
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		cur := m["8. currency"]
		if cur == "" {
			cur = "USD"
		}
		out = append(out, Match{
			Symbol:   m["1. symbol"],
			Name:     m["2. name"],
			Type:     m["3. type"],
			Region:   m["4. region"],
			Currency: cur,
		})
	}
	return out, nil
}

// parseFloat treats an empty string as zero.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
