// Package config defines the top-level configuration for the terminal and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kitebird-capital/terminal/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by KITEBIRD_* environment
// variables.
type Config struct {
	Refresh    RefreshConfig    `toml:"refresh"`
	Funding    FundingConfig    `toml:"funding"`
	Arbitrage  ArbitrageConfig  `toml:"arbitrage"`
	Volatility VolatilityConfig `toml:"volatility"`
	Binance    BinanceConfig    `toml:"binance"`
	Bybit      BybitConfig      `toml:"bybit"`
	GateIO     GateIOConfig     `toml:"gateio"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Yahoo      YahooConfig      `toml:"yahoo"`
	Server     ServerConfig     `toml:"server"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// RefreshConfig holds the refresh loop parameters.
type RefreshConfig struct {
	Interval       duration `toml:"interval"`
	FundingTimeout duration `toml:"funding_timeout"`
	MarketTimeout  duration `toml:"market_timeout"`
}

// FundingConfig holds funding leaderboard parameters.
type FundingConfig struct {
	// Priority lists funding venues from most to least preferred. When the
	// same instrument trades on several venues, the earlier venue's rate
	// wins.
	Priority []string `toml:"priority"`
	TopN     int      `toml:"top_n"`
}

// ArbitrageConfig holds cross-venue arbitrage scan parameters.
type ArbitrageConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MinSpreadPct        float64 `toml:"min_spread_pct"`
	MaxOpportunities    int     `toml:"max_opportunities"`
	MarketLimit         int     `toml:"market_limit"`
	AlertMinSpreadPct   float64 `toml:"alert_min_spread_pct"`
}

// VolatilityConfig holds the symbols fetched for the volatility signal.
type VolatilityConfig struct {
	PrimarySymbol string `toml:"primary_symbol"`
	TermSymbol    string `toml:"term_symbol"`
}

// BinanceConfig holds the Binance futures API endpoint.
type BinanceConfig struct {
	BaseURL string `toml:"base_url"`
}

// BybitConfig holds the Bybit API endpoint.
type BybitConfig struct {
	BaseURL string `toml:"base_url"`
}

// GateIOConfig holds the Gate.io API endpoint.
type GateIOConfig struct {
	BaseURL string `toml:"base_url"`
}

// PolymarketConfig holds the Polymarket Gamma API endpoint.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
}

// KalshiConfig holds the Kalshi exchange API endpoint.
type KalshiConfig struct {
	BaseURL string `toml:"base_url"`
}

// YahooConfig holds the Yahoo Finance API endpoint.
type YahooConfig struct {
	BaseURL string `toml:"base_url"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// PostgresConfig holds PostgreSQL connection parameters for the snapshot
// history store.
type PostgresConfig struct {
	Enabled      bool   `toml:"enabled"`
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// RedisConfig holds Redis connection parameters for the snapshot mirror.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	TTL        duration `toml:"ttl"`
}

// S3Config holds S3-compatible object storage parameters for the snapshot
// archiver.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder
// can parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Refresh: RefreshConfig{
			Interval:       duration{5 * time.Minute},
			FundingTimeout: duration{20 * time.Second},
			MarketTimeout:  duration{20 * time.Second},
		},
		Funding: FundingConfig{
			Priority: []string{"Binance", "Bybit", "Gate.io"},
			TopN:     10,
		},
		Arbitrage: ArbitrageConfig{
			SimilarityThreshold: 0.55,
			MinSpreadPct:        3.0,
			MaxOpportunities:    20,
			MarketLimit:         100,
			AlertMinSpreadPct:   10.0,
		},
		Volatility: VolatilityConfig{
			PrimarySymbol: "^VIX",
			TermSymbol:    "^VIX3M",
		},
		Binance: BinanceConfig{
			BaseURL: "https://fapi.binance.com",
		},
		Bybit: BybitConfig{
			BaseURL: "https://api.bybit.com",
		},
		GateIO: GateIOConfig{
			BaseURL: "https://api.gateio.ws",
		},
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		Yahoo: YahooConfig{
			BaseURL: "https://query1.finance.yahoo.com",
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Postgres: PostgresConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "kitebird",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
			TTL:        duration{15 * time.Minute},
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "kitebird-data",
			ForcePathStyle: true,
			Prefix:         "snapshots",
		},
		Notify: NotifyConfig{
			Events: []string{"arb_detected", "venue_error"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Refresh
	if c.Refresh.Interval.Duration <= 0 {
		errs = append(errs, "refresh: interval must be > 0")
	}
	if c.Refresh.FundingTimeout.Duration <= 0 {
		errs = append(errs, "refresh: funding_timeout must be > 0")
	}
	if c.Refresh.MarketTimeout.Duration <= 0 {
		errs = append(errs, "refresh: market_timeout must be > 0")
	}

	// Funding
	if len(c.Funding.Priority) == 0 {
		errs = append(errs, "funding: priority must list at least one venue")
	}
	seen := make(map[string]bool, len(c.Funding.Priority))
	for _, name := range c.Funding.Priority {
		v := domain.Venue(name)
		if !domain.FundingVenues[v] {
			errs = append(errs, fmt.Sprintf("funding: unknown venue %q in priority (valid: Binance, Bybit, Gate.io)", name))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("funding: venue %q listed twice in priority", name))
		}
		seen[name] = true
	}
	if c.Funding.TopN < 1 {
		errs = append(errs, "funding: top_n must be >= 1")
	}

	// Arbitrage
	if c.Arbitrage.SimilarityThreshold <= 0 || c.Arbitrage.SimilarityThreshold > 1 {
		errs = append(errs, "arbitrage: similarity_threshold must be in (0, 1]")
	}
	if c.Arbitrage.MinSpreadPct < 0 {
		errs = append(errs, "arbitrage: min_spread_pct must be >= 0")
	}
	if c.Arbitrage.MaxOpportunities < 1 {
		errs = append(errs, "arbitrage: max_opportunities must be >= 1")
	}
	if c.Arbitrage.MarketLimit < 1 {
		errs = append(errs, "arbitrage: market_limit must be >= 1")
	}

	// Volatility
	if c.Volatility.PrimarySymbol == "" {
		errs = append(errs, "volatility: primary_symbol must not be empty")
	}

	// Venue endpoints
	if c.Binance.BaseURL == "" {
		errs = append(errs, "binance: base_url must not be empty")
	}
	if c.Bybit.BaseURL == "" {
		errs = append(errs, "bybit: base_url must not be empty")
	}
	if c.GateIO.BaseURL == "" {
		errs = append(errs, "gateio: base_url must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Yahoo.BaseURL == "" {
		errs = append(errs, "yahoo: base_url must not be empty")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Notify: Telegram credentials must be set together.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must both be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// FundingPriority returns the configured priority list as domain venues.
func (c *Config) FundingPriority() []domain.Venue {
	venues := make([]domain.Venue, 0, len(c.Funding.Priority))
	for _, name := range c.Funding.Priority {
		venues = append(venues, domain.Venue(name))
	}
	return venues
}
