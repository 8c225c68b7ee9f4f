package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies KITEBIRD_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known KITEBIRD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Refresh ──
	setDuration(&cfg.Refresh.Interval, "KITEBIRD_REFRESH_INTERVAL")
	setDuration(&cfg.Refresh.FundingTimeout, "KITEBIRD_REFRESH_FUNDING_TIMEOUT")
	setDuration(&cfg.Refresh.MarketTimeout, "KITEBIRD_REFRESH_MARKET_TIMEOUT")

	// ── Funding ──
	setStringSlice(&cfg.Funding.Priority, "KITEBIRD_FUNDING_PRIORITY")
	setInt(&cfg.Funding.TopN, "KITEBIRD_FUNDING_TOP_N")

	// ── Arbitrage ──
	setFloat64(&cfg.Arbitrage.SimilarityThreshold, "KITEBIRD_ARBITRAGE_SIMILARITY_THRESHOLD")
	setFloat64(&cfg.Arbitrage.MinSpreadPct, "KITEBIRD_ARBITRAGE_MIN_SPREAD_PCT")
	setInt(&cfg.Arbitrage.MaxOpportunities, "KITEBIRD_ARBITRAGE_MAX_OPPORTUNITIES")
	setInt(&cfg.Arbitrage.MarketLimit, "KITEBIRD_ARBITRAGE_MARKET_LIMIT")
	setFloat64(&cfg.Arbitrage.AlertMinSpreadPct, "KITEBIRD_ARBITRAGE_ALERT_MIN_SPREAD_PCT")

	// ── Volatility ──
	setStr(&cfg.Volatility.PrimarySymbol, "KITEBIRD_VOLATILITY_PRIMARY_SYMBOL")
	setStr(&cfg.Volatility.TermSymbol, "KITEBIRD_VOLATILITY_TERM_SYMBOL")

	// ── Venue endpoints ──
	setStr(&cfg.Binance.BaseURL, "KITEBIRD_BINANCE_BASE_URL")
	setStr(&cfg.Bybit.BaseURL, "KITEBIRD_BYBIT_BASE_URL")
	setStr(&cfg.GateIO.BaseURL, "KITEBIRD_GATEIO_BASE_URL")
	setStr(&cfg.Polymarket.GammaHost, "KITEBIRD_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Kalshi.BaseURL, "KITEBIRD_KALSHI_BASE_URL")
	setStr(&cfg.Yahoo.BaseURL, "KITEBIRD_YAHOO_BASE_URL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "KITEBIRD_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "KITEBIRD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "KITEBIRD_SERVER_CORS_ORIGINS")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "KITEBIRD_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "KITEBIRD_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "KITEBIRD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "KITEBIRD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "KITEBIRD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "KITEBIRD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "KITEBIRD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "KITEBIRD_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "KITEBIRD_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "KITEBIRD_POSTGRES_POOL_MIN_CONNS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "KITEBIRD_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "KITEBIRD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "KITEBIRD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "KITEBIRD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "KITEBIRD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "KITEBIRD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "KITEBIRD_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.TTL, "KITEBIRD_REDIS_TTL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "KITEBIRD_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "KITEBIRD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "KITEBIRD_S3_REGION")
	setStr(&cfg.S3.Bucket, "KITEBIRD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "KITEBIRD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "KITEBIRD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "KITEBIRD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "KITEBIRD_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "KITEBIRD_S3_PREFIX")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "KITEBIRD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "KITEBIRD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "KITEBIRD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "KITEBIRD_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "KITEBIRD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
