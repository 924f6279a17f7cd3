package app

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/planetreboot/internal/config"
	"github.com/zeusync/planetreboot/internal/core/events/bus"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/planet"
	"github.com/zeusync/planetreboot/internal/core/storage"
	"github.com/zeusync/planetreboot/internal/stream"
)

// ProviderSet builds an App from a config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideKV,
	ProvideStateStore,
	bus.New,
	ProvideSimulation,
	ProvideStream,
	New,
)

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(log.Options{Level: level, Encoding: cfg.Log.Encoding}), nil
}

// ProvideKV opens the configured backend; the cleanup closes it.
func ProvideKV(cfg config.Config, logger log.Log) (storage.KV, func(), error) {
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	cleanup := func() {
		if err := kv.Close(); err != nil {
			logger.Warn("Failed to close storage", log.Error(err))
		}
	}
	return kv, cleanup, nil
}

func ProvideStateStore(cfg config.Config, kv storage.KV, logger log.Log) *storage.StateStore {
	return storage.NewStateStore(kv, cfg.Storage.Key, logger)
}

// ProvideSimulation builds the simulation and loads the stored document so
// CLI commands can inspect it without booting.
func ProvideSimulation(cfg config.Config, logger log.Log, b bus.EventBus, store *storage.StateStore) (*planet.Simulation, func(), error) {
	sim, err := planet.New(cfg.Simulation,
		planet.WithLogger(logger),
		planet.WithBus(b),
		planet.WithStore(store),
	)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = sim.Close() }
	return sim, cleanup, nil
}

// ProvideStream returns nil when streaming is disabled.
func ProvideStream(cfg config.Config, sim *planet.Simulation, logger log.Log) (*stream.Server, error) {
	if !cfg.Stream.Enabled {
		return nil, nil
	}
	sc := stream.DefaultConfig()
	sc.Addr = cfg.Stream.Addr()
	sc.SendBuffer = cfg.Stream.SendBuffer
	sc.WriteTimeout = cfg.Stream.WriteTimeout
	return stream.NewServer(sc, sim, logger)
}
