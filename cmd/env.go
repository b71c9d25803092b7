package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/galtpos/oasara-sub004/internal/config"
	"github.com/galtpos/oasara-sub004/internal/monitoring"
	"github.com/galtpos/oasara-sub004/internal/notify"
	"github.com/galtpos/oasara-sub004/internal/scrape"
	"github.com/galtpos/oasara-sub004/internal/store"
	"github.com/galtpos/oasara-sub004/pkg/google"
)

// cmdEnv holds the shared dependencies of the stage commands.
type cmdEnv struct {
	Store    store.Store
	Notifier *notify.Notifier
	Alerter  *monitoring.Alerter
}

// Close waits for pending notifications and closes the store.
func (e *cmdEnv) Close() {
	e.Notifier.Wait()
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initEnv validates cfg for mode and opens the store and notifier.
func initEnv(ctx context.Context, mode string) (*cmdEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	n := notify.FromConfig(cfg.Notify)
	zap.L().Debug("notification channels", zap.Strings("channels", n.Channels()))

	return &cmdEnv{
		Store:    st,
		Notifier: n,
		Alerter:  monitoring.NewAlerter(cfg.Notify.FailureRate, n),
	}, nil
}

func openStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "sqlite":
		st, err := store.NewSQLite(c.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite store")
		}
		return st, nil
	default:
		st, err := store.NewPostgres(ctx, c.DatabaseURL, &store.PoolConfig{
			MaxConns: c.MaxConns,
			MinConns: c.MinConns,
		})
		if err != nil {
			return nil, eris.Wrap(err, "open postgres store")
		}
		return st, nil
	}
}

// placesClient builds the Places client, cached in Redis when configured.
// The returned func releases the Redis connection.
func placesClient() (google.Client, func()) {
	client := google.NewClient(cfg.Google.Key, google.WithBaseURL(cfg.Google.BaseURL))
	if cfg.Redis.Addr == "" {
		return client, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ttl := google.DefaultCacheTTL
	if cfg.Redis.TTLHours > 0 {
		ttl = time.Duration(cfg.Redis.TTLHours) * time.Hour
	}
	zap.L().Info("place lookups cached in redis", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", ttl))
	return google.NewCachedClient(client, google.NewRedisCache(rdb), ttl), func() { _ = rdb.Close() }
}

// webFetcher builds the HTTP fetcher used for facility websites and the
// accreditation directory.
func webFetcher() *scrape.HTTPFetcher {
	return scrape.NewHTTPFetcher(
		scrape.WithUserAgent(cfg.Extract.UserAgent),
		scrape.WithTimeout(time.Duration(cfg.Extract.TimeoutSecs)*time.Second),
		scrape.WithMaxBody(int64(cfg.Extract.MaxBodyKB)*1024),
	)
}
