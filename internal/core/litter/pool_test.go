package litter

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

func TestNewPool(t *testing.T) {
	t.Run("InertSlots", func(t *testing.T) {
		p, _ := newTestPool(t, withCapacity(8))

		assert.Equal(t, 8, p.Capacity())
		assert.Equal(t, 8, p.FreeCount())
		assert.Equal(t, 0, p.ActiveCount())
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, p.Free())

		for i := 0; i < p.Capacity(); i++ {
			s, ok := p.Slot(i)
			require.True(t, ok)
			assert.Equal(t, StateFree, s.State())
			assert.Equal(t, hiddenPosition, s.RenderPosition)
			assert.Zero(t, s.ScaleFactor)
			assert.Equal(t, hiddenMatrix(), p.Matrix(i))
		}
		require.NoError(t, p.Validate())
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Capacity = 0
		reg := NewRegistry(cfg.ItemRadius(), DefaultArchetypes()...)
		_, err := NewPool(cfg, reg, spatial.NewPivot())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("NoArchetypes", func(t *testing.T) {
		cfg := DefaultConfig()
		_, err := NewPool(cfg, NewRegistry(cfg.ItemRadius()), spatial.NewPivot())
		require.ErrorIs(t, err, ErrNoArchetypes)
	})

	t.Run("NoParent", func(t *testing.T) {
		cfg := DefaultConfig()
		reg := NewRegistry(cfg.ItemRadius(), DefaultArchetypes()...)
		_, err := NewPool(cfg, reg, nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestPoolConservation(t *testing.T) {
	p, _ := newTestPool(t, withCapacity(32))
	rng := rand.New(rand.NewPCG(7, 11))

	for step := 0; step < 2000; step++ {
		if rng.IntN(2) == 0 {
			_, _ = p.Allocate()
		} else {
			_ = p.Release(rng.IntN(p.Capacity()))
		}
		require.NoError(t, p.Validate(), "step %d", step)
		require.Equal(t, p.Capacity(), p.FreeCount()+p.ActiveCount())
	}
}

func TestReleaseIdempotence(t *testing.T) {
	p, _ := newTestPool(t, withCapacity(4))
	i, ok := p.Allocate()
	require.True(t, ok)

	require.True(t, p.Release(i))
	free, active := p.FreeCount(), p.ActiveCount()

	assert.False(t, p.Release(i))
	assert.False(t, p.Release(-1))
	assert.False(t, p.Release(p.Capacity()))
	assert.Equal(t, free, p.FreeCount())
	assert.Equal(t, active, p.ActiveCount())
	require.NoError(t, p.Validate())
}

func TestPopAndRelease(t *testing.T) {
	p, _ := newTestPool(t, withCapacity(3))

	a, _ := p.Allocate()
	b, _ := p.Allocate()
	c, _ := p.Allocate()
	require.Equal(t, []int{a, b, c}, p.Active())
	require.Equal(t, 0, p.FreeCount())

	_, ok := p.Allocate()
	require.False(t, ok)

	require.True(t, p.Release(a))

	// c was swapped into a's position in the active list
	assert.Equal(t, []int{c, b}, p.Active())
	sc, _ := p.Slot(c)
	assert.Equal(t, 0, sc.PoolListIndex)
	assert.Equal(t, []int{a}, p.Free())

	sa, _ := p.Slot(a)
	assert.False(t, sa.Active)
	assert.Equal(t, -1, sa.PoolListIndex)
	assert.Equal(t, hiddenPosition, sa.AnchorPosition)
	assert.Equal(t, hiddenMatrix(), p.Matrix(a))
	require.NoError(t, p.Validate())

	again, ok := p.Allocate()
	require.True(t, ok)
	assert.Equal(t, a, again)
}

func TestPoolClear(t *testing.T) {
	p, _ := newTestPool(t, withCapacity(10))
	placeAt(t, p, mgl64.Vec3{0, 1, 0}, InstantPlaceOptions(0))
	placeAt(t, p, mgl64.Vec3{1, 0, 0}, InstantPlaceOptions(1))
	placeAt(t, p, mgl64.Vec3{0, 0, 1}, DefaultPlaceOptions())
	_ = p.TakeDirty()

	assert.Equal(t, 3, p.Clear())
	assert.Equal(t, 0, p.ActiveCount())
	assert.Equal(t, 10, p.FreeCount())
	assert.ElementsMatch(t, []int{0, 1, 2}, p.TakeDirty())
	require.NoError(t, p.Validate())
}

func TestMarkRemoval(t *testing.T) {
	t.Run("SettledOnly", func(t *testing.T) {
		p, _ := newTestPool(t, withCapacity(4))
		settled := placeAt(t, p, mgl64.Vec3{0, 1, 0}, InstantPlaceOptions(0))
		flying := placeAt(t, p, mgl64.Vec3{1, 0, 0}, DefaultPlaceOptions())
		free := p.Free()[0]

		assert.False(t, p.MarkRemoval(flying))
		assert.False(t, p.MarkRemoval(free))
		assert.False(t, p.MarkRemoval(-1))

		require.True(t, p.MarkRemoval(settled))
		s, _ := p.Slot(settled)
		assert.Equal(t, StateRemoving, s.State())
		assert.Zero(t, s.TargetScale)

		assert.False(t, p.MarkRemoval(settled), "already removing")
		require.NoError(t, p.Validate())
	})

	t.Run("ReducedMotionReleasesImmediately", func(t *testing.T) {
		p, _ := newTestPool(t, withCapacity(4), withReducedMotion)
		i := placeAt(t, p, mgl64.Vec3{0, 1, 0}, DefaultPlaceOptions())

		require.True(t, p.MarkRemoval(i))
		s, _ := p.Slot(i)
		assert.Equal(t, StateFree, s.State())
		assert.Equal(t, 0, p.ActiveCount())
	})
}
