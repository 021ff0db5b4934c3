package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `json:"port" yaml:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type Store struct {
	// Driver is "memory" or "sqlite".
	Driver string `json:"driver" yaml:"driver"`
	Path   string `json:"path" yaml:"path"`
}

// Cache holds the TTL of each data class.
type Cache struct {
	StockTTLSeconds  int `json:"stock_ttl_sec" yaml:"stock_ttl_sec"`
	CryptoTTLSeconds int `json:"crypto_ttl_sec" yaml:"crypto_ttl_sec"`
	RateTTLSeconds   int `json:"rate_ttl_sec" yaml:"rate_ttl_sec"`
	MaxItems         int `json:"max_items" yaml:"max_items"`
}

type AlphaVantage struct {
	Enabled              bool   `json:"enabled" yaml:"enabled"`
	APIKey               string `json:"api_key" yaml:"api_key"`
	Endpoint             string `json:"endpoint" yaml:"endpoint"`
	MaxRequestsPerMinute int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	Burst                int    `json:"burst" yaml:"burst"`
}

type Finnhub struct {
	Enabled               bool   `json:"enabled" yaml:"enabled"`
	APIKey                string `json:"api_key" yaml:"api_key"`
	Endpoint              string `json:"endpoint" yaml:"endpoint"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
	Burst                 int    `json:"burst" yaml:"burst"`
}

type CoinGecko struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	APIKey   string `json:"api_key" yaml:"api_key"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

type ExchangeRate struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// Quotes bounds the fan-out of batch operations.
type Quotes struct {
	BatchLimit     int `json:"batch_limit" yaml:"batch_limit"`
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
	SearchLimit    int `json:"search_limit" yaml:"search_limit"`
	TopCoinsLimit  int `json:"top_coins_limit" yaml:"top_coins_limit"`
}

type Synthetic struct {
	Seed uint64 `json:"seed" yaml:"seed"`
}

type Config struct {
	LogLevel     string       `json:"log_level" yaml:"log_level"`
	Server       Server       `json:"server" yaml:"server"`
	Store        Store        `json:"store" yaml:"store"`
	Cache        Cache        `json:"cache" yaml:"cache"`
	AlphaVantage AlphaVantage `json:"alphavantage" yaml:"alphavantage"`
	Finnhub      Finnhub      `json:"finnhub" yaml:"finnhub"`
	CoinGecko    CoinGecko    `json:"coingecko" yaml:"coingecko"`
	ExchangeRate ExchangeRate `json:"exchangerate" yaml:"exchangerate"`
	Quotes       Quotes       `json:"quotes" yaml:"quotes"`
	Synthetic    Synthetic    `json:"synthetic" yaml:"synthetic"`
}

func Default() Config {
	return Config{
		LogLevel: "INFO",
		Server:   Server{Port: "8080", RequestTimeoutSec: 10},
		Store:    Store{Driver: "memory", Path: "portfolio.db"},
		Cache: Cache{
			StockTTLSeconds:  300,
			CryptoTTLSeconds: 60,
			RateTTLSeconds:   3600,
		},
		AlphaVantage: AlphaVantage{
			Enabled:              true,
			APIKey:               "demo",
			Endpoint:             "https://www.alphavantage.co",
			MaxRequestsPerMinute: 5,
			Burst:                1,
		},
		Finnhub: Finnhub{
			Enabled:              false,
			Endpoint:             "https://finnhub.io",
			MaxRequestsPerMinute: 60,
			Burst:                5,
		},
		CoinGecko: CoinGecko{
			Enabled:  true,
			Endpoint: "https://api.coingecko.com/api/v3",
		},
		ExchangeRate: ExchangeRate{
			Enabled:  true,
			Endpoint: "https://open.er-api.com/v6/latest",
		},
		Quotes: Quotes{
			BatchLimit:     20,
			MaxConcurrency: 4,
			SearchLimit:    10,
			TopCoinsLimit:  20,
		},
		Synthetic: Synthetic{Seed: 1},
	}
}

// Load reads config from path. YAML is used for .yaml/.yml files, JSON otherwise.
// If path is empty or the file does not exist, defaults are used.
// Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, p := range []string{"config.yaml", "config.yml", "config.json"} {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate performs basic configuration validation.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store path cannot be empty for sqlite")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Cache.StockTTLSeconds < 0 || c.Cache.CryptoTTLSeconds < 0 || c.Cache.RateTTLSeconds < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	if c.Quotes.BatchLimit <= 0 {
		return fmt.Errorf("quotes batch limit must be greater than 0")
	}
	if c.Quotes.MaxConcurrency <= 0 {
		return fmt.Errorf("quotes max concurrency must be greater than 0")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
	if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.LogLevel = strings.ToUpper(v) }
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" { cfg.Store.Driver = strings.ToLower(v) }
	if v := os.Getenv("STORE_PATH"); v != "" { cfg.Store.Path = v }

	if v := os.Getenv("STOCK_CACHE_TTL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Cache.StockTTLSeconds = x }
	}
	if v := os.Getenv("CRYPTO_CACHE_TTL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Cache.CryptoTTLSeconds = x }
	}
	if v := os.Getenv("RATE_CACHE_TTL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Cache.RateTTLSeconds = x }
	}

	if v := os.Getenv("ALPHA_VANTAGE_KEY"); v != "" { cfg.AlphaVantage.APIKey = v }
	if v := os.Getenv("ALPHA_VANTAGE_ENABLED"); v != "" { cfg.AlphaVantage.Enabled = parseBool(v, cfg.AlphaVantage.Enabled) }
	if v := os.Getenv("ALPHA_VANTAGE_MAX_RPM"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.AlphaVantage.MaxRequestsPerMinute = x }
	}

	// Finnhub is switched on as soon as a key is present.
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" { cfg.Finnhub.APIKey = v; cfg.Finnhub.Enabled = true }
	if v := os.Getenv("FINNHUB_ENABLED"); v != "" { cfg.Finnhub.Enabled = parseBool(v, cfg.Finnhub.Enabled) }
	if v := os.Getenv("FINNHUB_MIN_INTERVAL_SEC"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Finnhub.MinRequestIntervalSec = x }
	}

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" { cfg.CoinGecko.APIKey = v }
	if v := os.Getenv("COINGECKO_ENABLED"); v != "" { cfg.CoinGecko.Enabled = parseBool(v, cfg.CoinGecko.Enabled) }
	if v := os.Getenv("EXCHANGE_RATE_ENDPOINT"); v != "" { cfg.ExchangeRate.Endpoint = v }
	if v := os.Getenv("EXCHANGE_RATE_ENABLED"); v != "" { cfg.ExchangeRate.Enabled = parseBool(v, cfg.ExchangeRate.Enabled) }

	if v := os.Getenv("QUOTES_MAX_CONCURRENCY"); v != "" {
		var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Quotes.MaxConcurrency = x }
	}
	if v := os.Getenv("SYNTHETIC_SEED"); v != "" {
		var x uint64; fmt.Sscanf(v, "%d", &x); cfg.Synthetic.Seed = x
	}
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return def
}

// SplitCSV splits a comma-separated list, dropping blanks.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" { out = append(out, p) }
	}
	return out
}
