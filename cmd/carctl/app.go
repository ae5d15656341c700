package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/pribylovaa/car-market/internal/api"
	"github.com/pribylovaa/car-market/internal/catalog"
	"github.com/pribylovaa/car-market/internal/config"
	"github.com/pribylovaa/car-market/internal/metrics"
	"github.com/pribylovaa/car-market/internal/storage"
	"github.com/pribylovaa/car-market/internal/storage/file"
	"github.com/pribylovaa/car-market/internal/storage/memory"
	"github.com/pribylovaa/car-market/internal/storage/redis"
	"github.com/pribylovaa/car-market/internal/tokens"
)

// app - собранные зависимости одного запуска carctl.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	store   storage.Store
	tokens  *tokens.Manager
	client  *api.Client
	catalog *catalog.Catalog
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	const op = "carctl.newApp"

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dec, err := tokens.DecoderByName(cfg.Tokens.Decoder)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tm := tokens.New(store, tokens.WithDecoder(dec))

	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.Timeouts.Request,
		Logger:    log,
		Metrics:   m,
	}, tm)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ds, err := catalog.Load(cfg.Catalog.DatasetPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		reg:     reg,
		metrics: m,
		store:   store,
		tokens:  tm,
		client:  client,
		catalog: catalog.New(ds, cfg.Catalog.DefaultLimit),
	}, nil
}

// openStore выбирает реализацию хранилища сессии по драйверу.
func openStore(ctx context.Context, sc config.StorageConfig) (storage.Store, error) {
	switch sc.Driver {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageFile:
		path := sc.Path
		if path == "" {
			p, err := file.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return file.New(path)
	case config.StorageRedis:
		return redis.New(ctx, sc.RedisURL, sc.Prefix)
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, sc.Driver)
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// dumpMetrics пишет накопленные за запуск метрики в текстовом формате Prometheus.
func (a *app) dumpMetrics(w io.Writer) error {
	mfs, err := a.reg.Gather()
	if err != nil {
		return err
	}

	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}
