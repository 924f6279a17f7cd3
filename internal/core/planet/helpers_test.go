package planet

import (
	"context"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetreboot/internal/core/events"
	"github.com/zeusync/planetreboot/internal/core/events/bus"
	"github.com/zeusync/planetreboot/internal/core/litter"
	"github.com/zeusync/planetreboot/internal/core/spatial"
	"github.com/zeusync/planetreboot/internal/core/storage"
)

const frameDT = 1.0 / 60

type recorder struct {
	mu     sync.Mutex
	events []bus.Event
}

func record(t *testing.T, b bus.EventBus) *recorder {
	t.Helper()
	r := &recorder{}
	for _, typ := range []string{
		events.LitterPlaced, events.LitterRemoving, events.LitterReleased,
		events.PlanetStateChanged, events.PlanetTimeUp, events.PlanetModeChanged,
	} {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}
	return r
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type() == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ string) bus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := len(r.events) - 1; k >= 0; k-- {
		if r.events[k].Type() == typ {
			return r.events[k]
		}
	}
	return nil
}

type fixture struct {
	sim    *Simulation
	kv     *storage.Memory
	store  *storage.StateStore
	events *recorder
}

func newFixture(t *testing.T, stored string, mutate ...func(*Config)) *fixture {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	for _, m := range mutate {
		m(&cfg)
	}

	kv := storage.NewMemory()
	if stored != "" {
		require.NoError(t, kv.Write(context.Background(), storage.DefaultKey, []byte(stored)))
	}
	store := storage.NewStateStore(kv, storage.DefaultKey, nil)
	b := bus.New()
	rec := record(t, b)

	sim, err := New(cfg, WithBus(b), WithStore(store), WithRandom(litter.NewRandom(42)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close() })
	return &fixture{sim: sim, kv: kv, store: store, events: rec}
}

func (f *fixture) boot(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sim.Boot(context.Background()))
}

func (f *fixture) stored(t *testing.T) storage.Document {
	t.Helper()
	doc, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc)
	return *doc
}

func (f *fixture) run(t *testing.T, cmds ...Command) TickReport {
	t.Helper()
	for _, c := range cmds {
		require.NoError(t, f.sim.Enqueue(c))
	}
	return f.sim.Tick(frameDT)
}

// settle ticks long enough for every flight and removal to finish.
func (f *fixture) settle() {
	for n := 0; n < 120; n++ {
		f.sim.Tick(frameDT)
	}
}

// rayTo aims at the planet surface straight down direction dir.
func rayTo(dir mgl64.Vec3) spatial.Ray {
	d := dir.Normalize()
	return spatial.NewRay(d.Mul(5), d.Mul(-1))
}

func reducedMotion(c *Config) {
	c.Litter.ReduceMotion = true
}
