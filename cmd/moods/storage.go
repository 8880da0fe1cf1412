package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"moods/internal/adapter/bolt"
	"moods/internal/adapter/file"
	"moods/internal/adapter/memory"
	"moods/internal/adapter/postgres"
	"moods/internal/adapter/sqlite"
	"moods/internal/app"
	"moods/internal/config"
	"moods/internal/domain"
	"moods/internal/metrics"
)

// openStore opens the configured backend. The returned func releases it.
func openStore(cfg config.StorageConfig) (domain.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), noop, nil
	case config.DriverFile:
		s, err := file.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.DriverBolt:
		s, err := bolt.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// openProvider builds and starts a provider over the configured store.
// The returned func flushes pending saves and closes the store.
func openProvider(ctx context.Context, cfg config.Config, log zerolog.Logger, m *metrics.Metrics) (*app.MoodProvider, func(context.Context) error, error) {
	order, err := app.ParseInsertOrder(cfg.Moods.InsertOrder)
	if err != nil {
		return nil, nil, err
	}

	kv, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}

	storage := app.NewMoodStorage(kv, cfg.Storage.Key, log, m)
	provider := app.NewMoodProvider(storage, app.ProviderOptions{
		Order:          order,
		DeletesEnabled: cfg.Moods.DeletesEnabled,
	}, log, m)
	provider.Start(ctx)

	shutdown := func(ctx context.Context) error {
		perr := provider.Close(ctx)
		if err := closeStore(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
		return perr
	}
	return provider, shutdown, nil
}
