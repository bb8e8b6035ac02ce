package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"p2p_market/internal/config"
	"p2p_market/internal/domain/service/offerbook"
	"p2p_market/internal/infrastructure/bybit"
	"p2p_market/internal/infrastructure/egress"
	"p2p_market/internal/infrastructure/persistence"
	"p2p_market/internal/server"
	"p2p_market/internal/worker"
	"p2p_market/pkg/application/connectors"
	"p2p_market/pkg/application/modules"
	"p2p_market/pkg/contextx"
	"p2p_market/pkg/httpx"
	"p2p_market/pkg/logx"
	"p2p_market/pkg/probe"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func Run(ctx context.Context, cfg config.Config) error {
	// 1. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}

	db, err := pg.Client(ctx)
	if err != nil {
		logger(ctx).Warn("postgres is not reachable, serving from memory until it recovers", logx.Error(err))
	}
	defer pg.Close(ctx)

	pool, err := persistence.NewConnPool(
		db,
		pg.Dial,
		int64(cfg.Postgres.MaxOpenConns),
		cfg.Postgres.AcquireTimeout,
		cfg.Postgres.Schema,
	)
	if err != nil {
		return fmt.Errorf("persistence.NewConnPool: %w", err)
	}

	// 2. Repositories
	offerRepo := persistence.NewOfferRepository(pool)
	settingRepo := persistence.NewSettingRepository(pool)

	// 3. Marketplace
	executor := newExecutor(ctx, cfg)

	client := bybit.NewClient(
		executor,
		bybit.Config{
			URL:        cfg.Marketplace.URL,
			TokenID:    cfg.Marketplace.TokenID,
			CurrencyID: cfg.Marketplace.CurrencyID,
			PageSize:   cfg.Marketplace.PageSize,
		},
		bybit.NewRandomHeaders(),
	)

	collector := worker.NewCollector(client, worker.CollectOptions{
		MaxPages:    cfg.Marketplace.MaxPages,
		Parallelism: cfg.Marketplace.Parallelism,
		CallTimeout: cfg.Marketplace.CallTimeout,
		Budget:      cfg.Marketplace.CycleBudget,
	})

	// 4. Offer book
	book := offerbook.NewService(
		collector,
		offerRepo,
		settingRepo,
		offerbook.NewState(cfg.Freshness.SettingTTL),
		offerbook.Config{
			CacheTTL:   cfg.Freshness.CacheTTL,
			StoreTTL:   cfg.Freshness.StoreTTL,
			QuickPages: cfg.Marketplace.QuickPages,
		},
	).WithStats(executor.Stats())

	// 5. Servers
	handler := server.NewRouter(
		server.NewServer(server.NewOffersServer(book), server.NewSettingsServer(book)),
		logx.NewSensitiveDataMasker(),
		cfg.HTTP.LogFieldMaxLen,
	)

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{
		ListenAddress:   cfg.HTTP.ListenAddress,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}.Run(ctx, g, handler)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
		Checks: map[string]probe.ReadinessCheck{
			"postgres": pool.Ping,
		},
	}.Run(ctx, g)

	err = modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricsListenAddress,
		Collectors:    []prometheus.Collector{executor.Stats()},
	}.Run(ctx, g)
	if err != nil {
		return fmt.Errorf("modules.MetricServer.Run: %w", err)
	}

	logger(ctx).Info(
		"offer book ready",
		slog.Int("proxies", executor.Proxies()),
		slog.Bool("upstream-log-bodies", cfg.Marketplace.LogBodies),
	)

	if err = g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

func newExecutor(ctx context.Context, cfg config.Config) *egress.Executor {
	entries := cfg.Proxy.List

	if cfg.Proxy.File != "" {
		fromFile, err := egress.LoadProxies(cfg.Proxy.File)
		if err != nil {
			logger(ctx).Warn("proxy file skipped", slog.String("path", cfg.Proxy.File), logx.Error(err))
		}

		entries = append(entries, fromFile...)
	}

	opts := []egress.Option{
		egress.WithUseProbability(cfg.Proxy.UseProbability),
		egress.WithMaxRetries(cfg.Proxy.MaxRetries),
		egress.WithTimeout(cfg.Proxy.Timeout),
	}

	if cfg.Marketplace.LogBodies {
		opts = append(opts, egress.WithTransportWrapper(func(route string, next http.RoundTripper) http.RoundTripper {
			return httpx.NewLoggingRoundTripper(
				next,
				httpx.WithLogFieldMaxLen(cfg.HTTP.LogFieldMaxLen),
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithAttrs(slog.String(logx.FieldProxy, route)),
			)
		}))
	}

	return egress.NewExecutor(egress.ParseProxies(ctx, entries), opts...)
}
