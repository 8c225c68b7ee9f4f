package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/kitebird-capital/terminal/internal/blob/s3"
	"github.com/kitebird-capital/terminal/internal/cache/redis"
	"github.com/kitebird-capital/terminal/internal/config"
	"github.com/kitebird-capital/terminal/internal/domain"
	"github.com/kitebird-capital/terminal/internal/notify"
	"github.com/kitebird-capital/terminal/internal/platform/binance"
	"github.com/kitebird-capital/terminal/internal/platform/bybit"
	"github.com/kitebird-capital/terminal/internal/platform/gateio"
	"github.com/kitebird-capital/terminal/internal/platform/kalshi"
	"github.com/kitebird-capital/terminal/internal/platform/polymarket"
	"github.com/kitebird-capital/terminal/internal/platform/yahoo"
	"github.com/kitebird-capital/terminal/internal/refresh"
	"github.com/kitebird-capital/terminal/internal/server/handler"
	"github.com/kitebird-capital/terminal/internal/server/ws"
	"github.com/kitebird-capital/terminal/internal/store/postgres"
)

// Dependencies bundles everything the application needs to run: venue
// adapters, the snapshot cache, optional sinks, and the notifier. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Cache          *refresh.Cache
	FundingSources []refresh.FundingSource
	Polymarket     refresh.QuoteSource
	Kalshi         refresh.QuoteSource
	Volatility     refresh.VolatilitySource
	Sinks          []refresh.SnapshotSink
	Hub            *ws.Hub
	History        handler.HistoryLister
	Notifier       *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Cache: refresh.NewCache(),
	}

	// --- Funding venue adapters, in configured priority order ---
	fundingTimeout := cfg.Refresh.FundingTimeout.Duration
	for _, venue := range cfg.FundingPriority() {
		switch venue {
		case domain.VenueBinance:
			deps.FundingSources = append(deps.FundingSources, binance.New(cfg.Binance.BaseURL, fundingTimeout))
		case domain.VenueBybit:
			deps.FundingSources = append(deps.FundingSources, bybit.New(cfg.Bybit.BaseURL, fundingTimeout))
		case domain.VenueGateIO:
			deps.FundingSources = append(deps.FundingSources, gateio.New(cfg.GateIO.BaseURL, fundingTimeout))
		default:
			cleanup()
			return nil, nil, fmt.Errorf("wire: no adapter for funding venue %q", venue)
		}
	}

	// --- Prediction and volatility adapters ---
	marketTimeout := cfg.Refresh.MarketTimeout.Duration
	deps.Polymarket = polymarket.NewGammaClient(cfg.Polymarket.GammaHost, marketTimeout)
	deps.Kalshi = kalshi.NewClient(cfg.Kalshi.BaseURL, marketTimeout)
	deps.Volatility = yahoo.New(cfg.Yahoo.BaseURL, cfg.Volatility.PrimarySymbol, cfg.Volatility.TermSymbol, marketTimeout)

	// --- PostgreSQL snapshot history (optional) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		history := postgres.NewHistoryStore(pgClient.Pool())
		if err := history.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres schema: %w", err)
		}
		deps.History = history
		deps.Sinks = append(deps.Sinks, history)
	}

	// --- Redis snapshot mirror (optional) ---
	if cfg.Redis.Enabled {
		rdClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = rdClient.Close() })

		deps.Sinks = append(deps.Sinks, redis.NewSnapshotMirror(rdClient, cfg.Redis.TTL.Duration))
	}

	// --- S3 snapshot archiver (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Sinks = append(deps.Sinks, s3blob.NewArchiver(s3Client, cfg.S3.Prefix))
	}

	// --- WebSocket hub (only when the server is enabled) ---
	if cfg.Server.Enabled {
		deps.Hub = ws.NewHub(logger)
		deps.Sinks = append(deps.Sinks, deps.Hub)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}
