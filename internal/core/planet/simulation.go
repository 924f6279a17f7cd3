// Package planet runs the recycling simulation: a rotating planet carrying a
// litter pool, with health and years-left metrics driven by user commands.
package planet

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/events"
	"github.com/zeusync/planetreboot/internal/core/events/bus"
	"github.com/zeusync/planetreboot/internal/core/litter"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/spatial"
	"github.com/zeusync/planetreboot/internal/core/storage"
)

// Mode is the visible scene.
type Mode string

const (
	ModePlanet Mode = "planet"
	ModeSpace  Mode = "space"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePlanet, ModeSpace:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

const source = "planet"

// Option customizes a Simulation at construction.
type Option func(*Simulation)

func WithLogger(l log.Log) Option {
	return func(s *Simulation) { s.logger = l }
}

func WithBus(b bus.EventBus) Option {
	return func(s *Simulation) { s.bus = b }
}

// WithStore enables persistence: the document is saved whenever the
// simulation publishes planet.state_changed.
func WithStore(st *storage.StateStore) Option {
	return func(s *Simulation) { s.store = st }
}

// WithSurface replaces the analytic sphere used for ray hits.
func WithSurface(surface spatial.Surface) Option {
	return func(s *Simulation) { s.surface = surface }
}

func WithRandom(r litter.Random) Option {
	return func(s *Simulation) { s.rng = r }
}

// Simulation owns the planet frame, the litter pool and the metrics. All
// methods except Enqueue must be called from the goroutine that runs Tick.
type Simulation struct {
	cfg    Config
	logger log.Log
	bus    bus.EventBus
	store  *storage.StateStore
	rng    litter.Random

	planet  *spatial.Pivot
	surface spatial.Surface
	pool    *litter.Pool
	queue   *CommandQueue
	sub     bus.Subscription

	health     float64
	yearsLeft  float64
	autoRotate bool
	timeUp     bool
	mode       Mode
	yaw        float64
	cursor     int
	tick       uint64

	loaded bool
	booted bool
	// stored is the document loaded at boot; its trash list is what gets
	// persisted until the pool has been restored.
	stored *storage.Document

	frameDirty bool
}

func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		cfg:        cfg,
		planet:     spatial.NewPivot(),
		queue:      NewCommandQueue(cfg.QueueLimit),
		health:     storage.DefaultHealth,
		yearsLeft:  storage.DefaultYearsLeft,
		autoRotate: !cfg.Litter.ReduceMotion,
		mode:       ModePlanet,
		frameDirty: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewNop()
	}
	s.logger = s.logger.With(log.Component("simulation"))
	if s.bus == nil {
		s.bus = bus.New()
	}
	if s.rng == nil {
		s.rng = litter.NewRandom(cfg.Seed)
	}
	if s.surface == nil {
		s.surface = spatial.Sphere{Radius: cfg.Litter.PlanetRadius}
	}

	registry := litter.NewRegistry(cfg.Litter.ItemRadius(), cfg.Archetypes...)
	pool, err := litter.NewPool(cfg.Litter, registry, s.planet,
		litter.WithRandom(s.rng),
		litter.WithCamera(cameraFor(ModePlanet, cfg.Litter.PlanetRadius)),
	)
	if err != nil {
		return nil, err
	}
	s.pool = pool

	if s.store != nil {
		s.sub, err = s.bus.Subscribe(events.PlanetStateChanged, s.onStateChanged)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// cameraFor is the default camera position of each scene.
func cameraFor(mode Mode, r float64) litter.FixedCamera {
	if mode == ModeSpace {
		return litter.FixedCamera{0, r * 0.9, r * 8.2}
	}
	return litter.FixedCamera{0, r * 0.35, r * 3.2}
}

// Enqueue schedules a command for the next tick. It is safe for concurrent use.
func (s *Simulation) Enqueue(cmd Command) error {
	return s.queue.Push(cmd)
}

// Close detaches the simulation from the bus.
func (s *Simulation) Close() error {
	return s.bus.Unsubscribe(s.sub)
}

func (s *Simulation) Pool() *litter.Pool     { return s.pool }
func (s *Simulation) Bus() bus.EventBus      { return s.bus }
func (s *Simulation) Planet() *spatial.Pivot { return s.planet }
func (s *Simulation) Health() float64        { return s.health }
func (s *Simulation) YearsLeft() float64     { return s.yearsLeft }
func (s *Simulation) TimeUp() bool           { return s.timeUp }
func (s *Simulation) Mode() Mode             { return s.mode }
func (s *Simulation) AutoRotate() bool       { return s.autoRotate }
func (s *Simulation) Cursor() int            { return s.cursor }
func (s *Simulation) Ticks() uint64          { return s.tick }
func (s *Simulation) Loaded() bool           { return s.loaded }
func (s *Simulation) Booted() bool           { return s.booted }

// SetCamera moves the launch point of new flights.
func (s *Simulation) SetCamera(pos mgl64.Vec3) {
	s.pool.SetCamera(litter.FixedCamera(pos))
}

// Load reads the stored document and applies its metrics. The stored trash
// is kept aside until Boot restores it.
func (s *Simulation) Load(ctx context.Context) error {
	var doc *storage.Document
	if s.store != nil {
		var err error
		if doc, err = s.store.Load(ctx); err != nil {
			return err
		}
	}
	s.stored = doc
	s.loaded = true

	if doc != nil {
		s.health = doc.Health
		s.yearsLeft = doc.YearsLeft
		s.autoRotate = doc.AutoRotateEnabled
	}
	if s.cfg.Litter.ReduceMotion {
		s.autoRotate = false
	}
	s.timeUp = s.yearsLeft <= 0
	s.frameDirty = true
	return nil
}

// Boot rebuilds the planet from the stored document, loading it first if
// needed. Packed trash is restored exactly; when none of it is usable a
// bare stored count is re-scattered over the surface.
func (s *Simulation) Boot(ctx context.Context) error {
	if s.booted {
		return nil
	}
	if !s.loaded {
		if err := s.Load(ctx); err != nil {
			return err
		}
	}
	doc := s.stored

	restored, scattered := 0, 0
	if doc != nil {
		restored = s.pool.Restore(doc.Trash)
		if restored == 0 && doc.TrashCount > 0 {
			scattered = s.pool.RestoreFromCount(doc.TrashCount, s.surface)
		}
	}
	s.cursor = s.pool.ActiveCount() % max(1, s.pool.Registry().Len())
	s.booted = true
	s.frameDirty = true

	s.logger.Info("Simulation booted",
		log.Bool("stored", doc != nil),
		log.Int("restored", restored),
		log.Int("scattered", scattered),
		log.Float64("health", s.health),
		log.Float64("years_left", s.yearsLeft),
	)
	s.stateChanged()
	return nil
}

// Snapshot is the document that would be persisted now. Before Boot it
// carries the previously stored trash list unchanged.
func (s *Simulation) Snapshot() storage.Document {
	doc := storage.Document{
		Health:            s.health,
		YearsLeft:         s.yearsLeft,
		AutoRotateEnabled: s.autoRotate,
	}
	if !s.booted {
		if s.stored != nil {
			doc.Trash = s.stored.Trash[:min(len(s.stored.Trash), s.pool.Capacity())]
			doc.TrashCount = s.stored.TrashCount
			if len(doc.Trash) > 0 {
				doc.TrashCount = len(doc.Trash)
			}
		}
		if doc.Trash == nil {
			doc.Trash = []litter.PackedItem{}
		}
		return doc
	}
	doc.Trash = s.pool.Pack()
	doc.TrashCount = len(doc.Trash)
	return doc
}

// Save persists the current snapshot immediately.
func (s *Simulation) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	_, err := s.store.Save(ctx, s.Snapshot())
	return err
}

func (s *Simulation) onStateChanged(bus.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
	defer cancel()
	return s.Save(ctx)
}

// stateChanged announces new metrics or a new litter count.
func (s *Simulation) stateChanged() {
	s.frameDirty = true
	s.publish(events.PlanetStateChanged, events.State{
		Health:      s.health,
		YearsLeft:   s.yearsLeft,
		ActiveCount: s.pool.ActiveCount(),
	})
}

func (s *Simulation) publish(eventType string, data any) {
	if err := s.bus.Publish(bus.NewEvent(eventType, source, data)); err != nil {
		s.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
