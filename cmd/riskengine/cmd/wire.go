package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"RiskEngine/internal/cache"
	"RiskEngine/internal/collector"
	"RiskEngine/internal/config"
	"RiskEngine/internal/notifier"
	"RiskEngine/internal/pipeline"
	"RiskEngine/internal/repository"
	"RiskEngine/internal/scheduler"
)

// newFetcher picks the price source and wraps it in the price cache when
// Redis is configured. The returned func releases the cache.
func newFetcher(ctx context.Context, cfg *config.Config, log zerolog.Logger) (collector.Fetcher, func()) {
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderCSV:
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVPath)
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source selected")

	if cfg.Cache.RedisAddr == "" {
		return fetcher, func() {}
	}

	var store cache.Store
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process price cache")
		store = cache.NewMemoryCache()
	} else {
		store = rc
	}
	return collector.NewCachedFetcher(fetcher, store, cfg.Cache.TTL, log), func() { _ = store.Close() }
}

// newRepository opens the configured store. Only driver "none" runs
// without storage.
func newRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Repository, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		repo, err := repository.NewPostgresRepository(ctx, cfg.Database.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("init postgres repository: %w", err)
		}
		return repo, nil
	case config.DriverNone:
		log.Warn().Msg("database disabled, metrics will not be stored")
		return repository.NewNoopRepository(), nil
	default:
		repo, err := repository.NewSQLiteRepository(cfg.Database.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite repository: %w", err)
		}
		return repo, nil
	}
}

// newNotifier returns the Telegram notifier when configured. The second
// value is nil when Telegram is disabled or unreachable.
func newNotifier(cfg *config.Config, log zerolog.Logger) (scheduler.Notifier, *notifier.TelegramNotifier) {
	if !cfg.Telegram.Enabled() {
		return notifier.NewNoopNotifier(log), nil
	}
	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	if err != nil {
		log.Warn().Err(err).Msg("init telegram notifier failed, notifications disabled")
		return notifier.NewNoopNotifier(log), nil
	}
	return tn, tn
}

// newPipeline wires fetcher, collector and repository into a pipeline.
func newPipeline(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Pipeline, repository.Repository, func(), error) {
	repo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	fetcher, closeCache := newFetcher(ctx, cfg, log)
	col := collector.NewCollector(fetcher, cfg.TickerSuffix, cfg.Period, log)
	p := pipeline.New(col, repo, cfg.Tickers, cfg.Benchmark, cfg.Params(), log)

	cleanup := func() {
		closeCache()
		if err := repo.Close(); err != nil {
			log.Warn().Err(err).Msg("close repository")
		}
	}
	return p, repo, cleanup, nil
}
