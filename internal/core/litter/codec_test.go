package litter

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

func TestPackRestoreRoundTrip(t *testing.T) {
	src, _ := newTestPool(t)
	dirs := []mgl64.Vec3{{0, 1, 0}, {1, 0.3, 0}, {0, -0.4, 1}, {-1, 0.2, -0.3}, {0.2, -1, 0.5}}
	for k, d := range dirs {
		placeAt(t, src, d, InstantPlaceOptions(k))
	}

	packed := src.Pack()
	require.Len(t, packed, len(dirs))

	dst, _ := newTestPool(t)
	require.Equal(t, len(dirs), dst.Restore(packed))

	for k, i := range src.Active() {
		a, _ := src.Slot(i)
		b, _ := dst.Slot(dst.Active()[k])
		assert.Equal(t, a.TypeIndex, b.TypeIndex)
		vecNear(t, a.AnchorPosition, b.AnchorPosition, 1e-4)
		assert.InDelta(t, a.BaseScale, b.BaseScale, 1e-4)
		assert.InDelta(t, 1, math.Abs(a.AnchorOrientation.Dot(b.AnchorOrientation)), 1e-3)
		assert.True(t, b.Settled())
		assert.Equal(t, 1.0, b.ScaleFactor)
	}

	if diff := cmp.Diff(packed, dst.Pack(), cmpopts.EquateApprox(0, 2e-4)); diff != "" {
		t.Errorf("repacked state mismatch (-want +got):\n%s", diff)
	}
}

func TestPackRounding(t *testing.T) {
	it := NewPackedItem(1, mgl64.Vec3{0.123456, -0.98767, 1}, mgl64.QuatIdent(), 0.0801234)
	assert.Equal(t, PackedItem{1, 0.1235, -0.9877, 1, 0, 0, 0, 1, 0.0801}, it)

	data, err := json.Marshal(it)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,0.1235,-0.9877,1,0,0,0,1,0.0801]`, string(data))
}

func TestPackSkipsRemoving(t *testing.T) {
	p, _ := newTestPool(t)
	placeAt(t, p, mgl64.Vec3{0, 1, 0}, InstantPlaceOptions(0))
	gone := placeAt(t, p, mgl64.Vec3{1, 0, 0}, InstantPlaceOptions(1))
	placeAt(t, p, mgl64.Vec3{0, 0, 1}, DefaultPlaceOptions())
	require.True(t, p.MarkRemoval(gone))

	packed := p.Pack()
	require.Len(t, packed, 2)
	for _, it := range packed {
		assert.NotEqual(t, 1, it.TypeIndex())
	}
}

func TestRestoreWithCorruption(t *testing.T) {
	raw := json.RawMessage(`[
		[0, 0, 1.033, 0, 0, 0, 0, 1, 0.8],
		"junk",
		[1, 2],
		[1, null, 0, 0, 0, 0, 0, 1, 1],
		{"type": 2}
	]`)
	items, skipped := DecodePacked(raw)
	require.Len(t, items, 2)
	assert.Equal(t, 3, skipped)

	p, _ := newTestPool(t)
	require.Equal(t, 1, p.Restore(items))
	assert.Equal(t, 1, p.ActiveCount())

	s, _ := p.Slot(p.Active()[0])
	assert.Equal(t, mgl64.Vec3{0, 1.033, 0}, s.AnchorPosition)
	assert.Equal(t, 0.8, s.BaseScale)
	require.NoError(t, p.Validate())
}

func TestRestoreFallbacks(t *testing.T) {
	t.Run("TypeClamped", func(t *testing.T) {
		p, _ := newTestPool(t)
		n := p.Restore([]PackedItem{
			{7, 0, 1, 0, 0, 0, 0, 1, 1},
			{-3, 1, 0, 0, 0, 0, 0, 1, 1},
			{math.NaN(), 0, 0, 1, 0, 0, 0, 1, 1},
			{1e300, 0, -1, 0, 0, 0, 0, 1, 1},
			{-1e300, -1, 0, 0, 0, 0, 0, 1, 1},
			{math.Inf(1), 0, 0, -1, 0, 0, 0, 1, 1},
		})
		require.Equal(t, 6, n)
		types := make([]int, 0, n)
		for _, i := range p.Active() {
			s, _ := p.Slot(i)
			types = append(types, s.TypeIndex)
		}
		assert.Equal(t, []int{2, 0, 0, 2, 0, 2}, types)
	})

	t.Run("RegistryScale", func(t *testing.T) {
		p, _ := newTestPool(t)
		require.Equal(t, 3, p.Restore([]PackedItem{
			{1, 0, 1, 0, 0, 0, 0, 1, 0},
			{1, 1, 0, 0, 0, 0, 0, 1, -2},
			{1, 0, 0, 1, 0, 0, 0, 1, math.Inf(1)},
		}))
		for _, i := range p.Active() {
			s, _ := p.Slot(i)
			assert.Equal(t, p.Registry().BaseScale(1), s.BaseScale)
		}
	})

	t.Run("QuaternionNormalized", func(t *testing.T) {
		p, _ := newTestPool(t)
		require.Equal(t, 2, p.Restore([]PackedItem{
			{0, 0, 1, 0, 0, 0, 0, 0, 1},
			{0, 1, 0, 0, 0, 2, 0, 0, 1},
		}))
		a, _ := p.Slot(p.Active()[0])
		assert.Equal(t, mgl64.QuatIdent(), a.AnchorOrientation)
		b, _ := p.Slot(p.Active()[1])
		assert.InDelta(t, 1, b.AnchorOrientation.V[1], 1e-12)
		assert.InDelta(t, 1, b.AnchorOrientation.Len(), 1e-12)
	})

	t.Run("NonFiniteSkipped", func(t *testing.T) {
		p, _ := newTestPool(t)
		n := p.Restore([]PackedItem{
			{0, math.Inf(1), 0, 0, 0, 0, 0, 1, 1},
			{0, 0, 0, 0, 0, 0, math.NaN(), 1, 1},
		})
		assert.Zero(t, n)
		assert.Zero(t, p.ActiveCount())
	})

	t.Run("CapacityCap", func(t *testing.T) {
		p, _ := newTestPool(t, withCapacity(2))
		items := make([]PackedItem, 5)
		for k := range items {
			items[k] = PackedItem{0, float64(k), 0, 0, 0, 0, 0, 1, 1}
		}
		assert.Equal(t, 2, p.Restore(items))
		assert.Zero(t, p.Restore(items), "no free slots left")
		require.NoError(t, p.Validate())
	})
}

func TestDecodePacked(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		items   int
		skipped int
	}{
		{name: "Empty", raw: ``},
		{name: "NotArray", raw: `{"a":1}`},
		{name: "Null", raw: `null`},
		{name: "EmptyArray", raw: `[]`},
		{name: "ExtraElements", raw: `[[0,0,1,0,0,0,0,1,1,"x",7]]`, items: 1},
		{name: "StringsCoerced", raw: `[["1","0","1","0",0,0,0,1,true]]`, items: 1},
		{name: "Mixed", raw: `[[0,0,1,0,0,0,0,1,1], 4, [], [0,0,1,0,0,0,0,1]]`, items: 1, skipped: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, skipped := DecodePacked(json.RawMessage(tc.raw))
			assert.Len(t, items, tc.items)
			assert.Equal(t, tc.skipped, skipped)
		})
	}
}

func TestRestoreFromCount(t *testing.T) {
	t.Run("OnSurface", func(t *testing.T) {
		p, _ := newTestPool(t)
		cfg := p.Config()
		planet := spatial.Sphere{Radius: cfg.PlanetRadius}

		placed := p.RestoreFromCount(12, planet)
		assert.Equal(t, 12, placed)
		for k, i := range p.Active() {
			s, _ := p.Slot(i)
			assert.True(t, s.Settled())
			assert.Equal(t, 1.0, s.ScaleFactor)
			assert.Equal(t, k%p.Registry().Len(), s.TypeIndex)
			assert.InDelta(t, cfg.PlanetRadius+cfg.SurfaceOffset(), s.AnchorPosition.Len(), 1e-9)
		}
		require.NoError(t, p.Validate())
	})

	t.Run("SphereFallback", func(t *testing.T) {
		p, _ := newTestPool(t)
		assert.Equal(t, 5, p.RestoreFromCount(5, nil))
	})

	t.Run("Bounds", func(t *testing.T) {
		p, _ := newTestPool(t, withCapacity(4))
		assert.Zero(t, p.RestoreFromCount(0, nil))
		assert.Zero(t, p.RestoreFromCount(-3, nil))
		assert.Equal(t, 4, p.RestoreFromCount(50, nil))
	})
}
