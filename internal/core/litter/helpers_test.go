package litter

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

func newTestPool(t *testing.T, mutate ...func(*Config)) (*Pool, *spatial.Pivot) {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	reg := NewRegistry(cfg.ItemRadius(), DefaultArchetypes()...)
	parent := spatial.NewPivot()
	p, err := NewPool(cfg, reg, parent, WithRandom(NewRandom(42)))
	require.NoError(t, err)
	return p, parent
}

func withCapacity(n int) func(*Config) {
	return func(c *Config) { c.Capacity = n }
}

func withReducedMotion(c *Config) {
	c.ReduceMotion = true
}

// surface returns the point and normal of the unit planet in direction dir.
func surface(dir mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	n := dir.Normalize()
	return n, n
}

func placeAt(t *testing.T, p *Pool, dir mgl64.Vec3, opts PlaceOptions) int {
	t.Helper()
	point, normal := surface(dir)
	i, ok := p.Place(point, normal, opts)
	require.True(t, ok, "place at %v", dir)
	return i
}

func vecNear(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for k := 0; k < 3; k++ {
		require.InDelta(t, want[k], got[k], delta, "component %d of %v vs %v", k, want, got)
	}
}
