// Package app runs the simulation tick loop next to the render stream.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/planetreboot/internal/config"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/planet"
	"github.com/zeusync/planetreboot/internal/core/storage"
	"github.com/zeusync/planetreboot/internal/stream"
)

type App struct {
	cfg    config.Config
	logger log.Log
	store  *storage.StateStore
	sim    *planet.Simulation
	stream *stream.Server
}

// New wires the parts together. srv may be nil.
func New(cfg config.Config, logger log.Log, store *storage.StateStore, sim *planet.Simulation, srv *stream.Server) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(log.Component("app")),
		store:  store,
		sim:    sim,
		stream: srv,
	}
}

func (a *App) Simulation() *planet.Simulation { return a.sim }
func (a *App) Store() *storage.StateStore     { return a.store }
func (a *App) Stream() *stream.Server         { return a.stream }

// Run boots the simulation and ticks it until ctx is cancelled, then
// persists the final state.
func (a *App) Run(ctx context.Context) error {
	if err := a.sim.Boot(ctx); err != nil {
		return fmt.Errorf("booting simulation: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.stream != nil {
		if err := a.stream.Watch(a.sim.Bus()); err != nil {
			return fmt.Errorf("watching events: %w", err)
		}
		if err := a.stream.Broadcast(a.sim.FullFrame()); err != nil {
			return fmt.Errorf("seeding stream: %w", err)
		}
		g.Go(func() error {
			if err := a.stream.ListenAndServe(gctx); err != nil {
				return fmt.Errorf("stream server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		a.loop(gctx)
		return nil
	})

	a.logger.Info("Simulation running",
		log.Duration("tick_interval", a.cfg.Stream.TickInterval()),
		log.Bool("stream", a.stream != nil))

	err := g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Simulation.SaveTimeout)
	defer cancel()
	if serr := a.sim.Save(saveCtx); serr != nil {
		err = errors.Join(err, fmt.Errorf("saving state: %w", serr))
	}

	a.logger.Info("Simulation stopped", log.Uint64("ticks", a.sim.Ticks()))
	return err
}

func (a *App) loop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Stream.TickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Step advances the simulation by dt seconds and streams the resulting
// frame. It must be called from the goroutine that owns the simulation.
func (a *App) Step(dt float64) planet.TickReport {
	report := a.sim.Tick(dt)
	if report.Landed > 0 || report.Released > 0 {
		a.logger.Debug("Litter settled",
			log.Uint64("tick", report.Tick),
			log.Int("landed", report.Landed),
			log.Int("released", report.Released))
	}

	if a.stream == nil {
		return report
	}
	if f, ok := a.sim.Frame(); ok {
		if err := a.stream.Broadcast(f); err != nil {
			a.logger.Warn("Failed to broadcast frame", log.Uint64("tick", report.Tick), log.Error(err))
		}
	}
	return report
}
