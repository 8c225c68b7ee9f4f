// Package app provides the top-level application lifecycle for the
// terminal. It wires together venue adapters, the refresher, snapshot
// sinks, and the API server, then supervises them until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kitebird-capital/terminal/internal/arbitrage"
	"github.com/kitebird-capital/terminal/internal/config"
	"github.com/kitebird-capital/terminal/internal/refresh"
	"github.com/kitebird-capital/terminal/internal/server"
	"github.com/kitebird-capital/terminal/internal/server/handler"
)

// App is the root application object. It owns the configuration, logger,
// and a list of cleanup functions that are called in reverse order on
// shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the refresh loop and the API server,
// and blocks until the context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Duration("refresh_interval", a.cfg.Refresh.Interval.Duration),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	var notifier refresh.Alerter
	if deps.Notifier != nil {
		notifier = deps.Notifier
	}

	refresher := refresh.New(
		refresh.Config{
			Interval:       a.cfg.Refresh.Interval.Duration,
			FundingTimeout: a.cfg.Refresh.FundingTimeout.Duration,
			MarketTimeout:  a.cfg.Refresh.MarketTimeout.Duration,
			MarketLimit:    a.cfg.Arbitrage.MarketLimit,
			TopN:           a.cfg.Funding.TopN,
			Detector: arbitrage.Config{
				SimilarityThreshold: a.cfg.Arbitrage.SimilarityThreshold,
				MinSpreadPct:        a.cfg.Arbitrage.MinSpreadPct,
				MaxOpportunities:    a.cfg.Arbitrage.MaxOpportunities,
			},
			AlertMinSpreadPct: a.cfg.Arbitrage.AlertMinSpreadPct,
		},
		deps.FundingSources,
		deps.Polymarket,
		deps.Kalshi,
		deps.Volatility,
		deps.Cache,
		deps.Sinks,
		notifier,
		a.logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return refresher.Run(gctx)
	})

	if a.cfg.Server.Enabled {
		srv := server.NewServer(
			server.Config{
				Port:        a.cfg.Server.Port,
				CORSOrigins: a.cfg.Server.CORSOrigins,
			},
			server.Handlers{
				Health:   handler.NewHealthHandler(deps.Cache, a.logger),
				Snapshot: handler.NewSnapshotHandler(deps.Cache, a.logger),
				History:  handler.NewHistoryHandler(deps.History, a.logger),
			},
			deps.Hub,
			a.logger,
		)

		g.Go(func() error {
			return deps.Hub.Run(gctx)
		})
		g.Go(func() error {
			return srv.Start()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
