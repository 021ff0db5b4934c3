package alphavantage

import (
	"net/http"
	"net/url"
)

const baseURL = "https://www.alphavantage.co"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AlphaVantageAPIClient is a client for the Alpha Vantage API.
type AlphaVantageAPIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// AlphaVantageAPIClientOption is a configuration option for the Alpha Vantage API client.
type AlphaVantageAPIClientOption func(*AlphaVantageAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) AlphaVantageAPIClientOption {
	return func(c *AlphaVantageAPIClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) AlphaVantageAPIClientOption {
	return func(c *AlphaVantageAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) AlphaVantageAPIClientOption {
	return func(c *AlphaVantageAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewAlphaVantageAPIClient creates a new Alpha Vantage API client.
func NewAlphaVantageAPIClient(key string, options ...AlphaVantageAPIClientOption) (*AlphaVantageAPIClient, error) {
	var client = &AlphaVantageAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		// Alpha Vantage authenticates with a query parameter.
		// https://www.alphavantage.co/documentation/
		client.query.Add("apikey", key)
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// override returns a copy of c with per-call options applied.
func (c *AlphaVantageAPIClient) override(opts []AlphaVantageAPIClientOption) *AlphaVantageAPIClient {
	var o = &AlphaVantageAPIClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
