package litter

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/spatial"
	"github.com/zeusync/planetreboot/pkg/encoding"
)

// PackedItem is the persisted form of one settled litter instance:
// [typeIndex, x, y, z, qx, qy, qz, qw, baseScale], position and orientation
// in the planet's local frame.
type PackedItem [9]float64

// packedPrecision is the number of decimals kept in storage.
const packedPrecision = 4

func NewPackedItem(typeIndex int, pos mgl64.Vec3, rot mgl64.Quat, baseScale float64) PackedItem {
	return PackedItem{
		float64(typeIndex),
		encoding.Round(pos[0], packedPrecision),
		encoding.Round(pos[1], packedPrecision),
		encoding.Round(pos[2], packedPrecision),
		encoding.Round(rot.V[0], packedPrecision),
		encoding.Round(rot.V[1], packedPrecision),
		encoding.Round(rot.V[2], packedPrecision),
		encoding.Round(rot.W, packedPrecision),
		encoding.Round(baseScale, packedPrecision),
	}
}

// TypeIndex rounds the stored type half-up. Out-of-range values saturate at
// the int32 bounds so the registry can clamp them to its last archetype.
func (it PackedItem) TypeIndex() int {
	t := it[0]
	if math.IsNaN(t) {
		return 0
	}
	t = spatial.Clamp(math.Floor(t+0.5), math.MinInt32, math.MaxInt32)
	return int(t)
}

func (it PackedItem) Position() mgl64.Vec3 {
	return mgl64.Vec3{it[1], it[2], it[3]}
}

func (it PackedItem) Orientation() mgl64.Quat {
	return spatial.QuatFromComponents(it[4], it[5], it[6], it[7])
}

func (it PackedItem) BaseScale() float64 {
	return it[8]
}

// finite reports whether position and orientation are usable.
func (it PackedItem) finite() bool {
	for _, v := range it[1:8] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (it PackedItem) MarshalJSON() ([]byte, error) {
	out := make([]any, len(it))
	out[0] = it.TypeIndex()
	for k := 1; k < len(it); k++ {
		out[k] = it[k]
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON array of at least nine elements. Elements
// are coerced to numbers; values that cannot be coerced become NaN and are
// rejected later by Restore.
func (it *PackedItem) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPacked, err)
	}
	if len(raw) < len(it) {
		return fmt.Errorf("%w: %d elements", ErrMalformedPacked, len(raw))
	}
	for k := range it {
		it[k] = encoding.Number(raw[k])
	}
	return nil
}

// DecodePacked parses a stored trash list, skipping entries that are not
// arrays of nine elements. It never fails; skipped reports how many entries
// were dropped.
func DecodePacked(data json.RawMessage) (items []PackedItem, skipped int) {
	var entries []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &entries) != nil {
		return nil, 0
	}
	items = make([]PackedItem, 0, len(entries))
	for _, e := range entries {
		var it PackedItem
		if err := json.Unmarshal(e, &it); err != nil {
			skipped++
			continue
		}
		items = append(items, it)
	}
	return items, skipped
}

// Pack serializes every active slot that is not being removed. Items the
// user already started recycling are left out so a reload never brings
// them back.
func (p *Pool) Pack() []PackedItem {
	items := make([]PackedItem, 0, len(p.active))
	for _, i := range p.active {
		s := &p.slots[i]
		if !s.Active || s.Removing || s.TargetScale <= 0 {
			continue
		}
		items = append(items, NewPackedItem(
			p.registry.Clamp(s.TypeIndex),
			s.AnchorPosition,
			s.AnchorOrientation,
			s.BaseScale,
		))
	}
	return items
}

// Restore places packed items directly on their anchors, without flight or
// pop-in. Entries with non-finite coordinates are skipped, and restoring
// stops when the pool runs out of free slots. It returns the number of
// slots created.
func (p *Pool) Restore(items []PackedItem) int {
	if len(items) == 0 || len(p.free) == 0 {
		return 0
	}
	restored := 0
	limit := min(len(items), len(p.slots))
	for n := 0; n < limit; n++ {
		if len(p.free) == 0 {
			break
		}
		it := items[n]
		if !it.finite() {
			continue
		}

		typeIndex := p.registry.Clamp(it.TypeIndex())
		baseScale := it.BaseScale()
		if math.IsNaN(baseScale) || math.IsInf(baseScale, 0) || baseScale <= 0 {
			baseScale = p.registry.BaseScale(typeIndex)
		}
		rot := it.Orientation()
		if spatial.QuatLenSqr(rot) > 1e-8 {
			rot = rot.Normalize()
		} else {
			rot = mgl64.QuatIdent()
		}

		i, _ := p.Allocate()
		s := &p.slots[i]
		s.TypeIndex = typeIndex
		s.BaseScale = baseScale
		s.TargetScale = 1
		s.ScaleFactor = 1
		s.AnchorPosition = it.Position()
		s.AnchorOrientation = rot
		s.snapToAnchor()
		s.WorldPosition = hiddenPosition
		s.WorldOrientation = mgl64.QuatIdent()
		s.SpinAxis = spatial.Up
		p.writeMatrix(i)
		restored++
	}
	return restored
}
