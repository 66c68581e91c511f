// Package bootstrap opens the dependencies shared by every command: config,
// logger, tree store, batch synchronizer and the optional redis client.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/instance"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/metrics"
	"github.com/turboairmx/quotesync/pkg/redis"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"github.com/turboairmx/quotesync/pkg/treestore/backend"
)

// LoadConfig reads .env when present, loads the config and builds the
// service logger at the configured level.
func LoadConfig(service string) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: service})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}
	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return nil, logg, err
	}
	cfg.Service.Kind = service
	logg = logger.New(logger.Options{
		ServiceName: service,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	return cfg, logg, nil
}

// Runtime holds the opened dependencies. Redis is nil when not configured.
type Runtime struct {
	Config     *config.Config
	Logger     *logger.Logger
	Store      treestore.Store
	Sync       *batch.Synchronizer
	Redis      *redis.Client
	Registerer prometheus.Registerer

	closers []io.Closer
}

// Open connects the store and, when configured, redis. Batch metrics are
// registered on reg; nil disables them.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logg, Registerer: reg}

	store, closer, err := backend.Open(ctx, cfg.Store, logg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.Store = store
	rt.closers = append(rt.closers, closer)

	rt.Sync, err = batch.NewSynchronizer(batch.SynchronizerParams{
		Store:     store,
		ChunkSize: cfg.Sync.ChunkSize,
		Metrics:   metrics.NewBatchMetrics(reg),
		Logger:    logg,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		rt.Redis = client
		rt.closers = append(rt.closers, client)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"store_driver": cfg.Store.Driver,
		"redis":        rt.Redis != nil,
		"instance":     instance.GetID(),
	}), "runtime ready")
	return rt, nil
}

// NumberGenerator returns the configured quote numbering, backed by redis
// when the sequence strategy is selected.
func (rt *Runtime) NumberGenerator() (quotes.NumberGenerator, error) {
	var seq quotes.Sequencer
	if rt.Redis != nil {
		seq = rt.Redis
	}
	return quotes.NewNumberGenerator(rt.Config.Pricing, seq)
}

// Close releases everything Open acquired, last opened first.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			rt.Logger.Error(context.Background(), "error closing dependency", err)
		}
	}
	rt.closers = nil
}

// WriteReport prints a command's result as indented JSON.
func WriteReport(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
