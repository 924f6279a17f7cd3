package litter

import (
	"math"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// scaleEpsilon suppresses matrix rewrites for imperceptible scale changes.
// The scale itself always advances so removals reach the release floor at
// any tick rate.
const scaleEpsilon = 0.0005

// TickResult summarizes what one tick changed.
type TickResult struct {
	Landed   int
	Released []Released
	Moved    int
}

// Released identifies a slot that went back to the free list during a tick.
type Released struct {
	Slot      int
	TypeIndex int
}

// Tick advances flights and scale animations by dt seconds. Releases happen
// inside the same tick that crosses the release floor.
func (p *Pool) Tick(dt float64) TickResult {
	var res TickResult
	if dt <= 0 || len(p.active) == 0 {
		return res
	}
	fr := p.currentFrame()
	sc := p.cfg.Scale

	for k := 0; k < len(p.active); k++ {
		i := p.active[k]
		s := &p.slots[i]
		moved := false

		if s.Flying && !s.Removing {
			if p.stepFlight(s, dt, fr) {
				res.Landed++
			}
			moved = true
		}

		rate := sc.ShrinkRate
		if s.TargetScale > s.ScaleFactor {
			rate = sc.GrowRate
		}
		next := spatial.Clamp(spatial.Damp(s.ScaleFactor, s.TargetScale, rate, dt), 0, 1)
		if math.Abs(next-s.renderedScale) > scaleEpsilon {
			moved = true
		}
		s.ScaleFactor = next

		if s.Removing && s.ScaleFactor <= sc.ReleaseFloor {
			typeIndex := s.TypeIndex
			p.Release(i)
			res.Released = append(res.Released, Released{Slot: i, TypeIndex: typeIndex})
			// the last active entry was swapped into position k
			k--
			continue
		}

		if moved {
			p.writeMatrix(i)
			res.Moved++
		}
	}
	return res
}

// Settle finishes every animation immediately: pending removals are released
// and flights snap onto their anchors at their target scale. It is used when
// the planet is hidden so nothing is left hanging mid-air.
func (p *Pool) Settle() TickResult {
	var res TickResult
	for k := len(p.active) - 1; k >= 0; k-- {
		i := p.active[k]
		s := &p.slots[i]
		if !s.Removing {
			continue
		}
		typeIndex := s.TypeIndex
		p.Release(i)
		res.Released = append(res.Released, Released{Slot: i, TypeIndex: typeIndex})
	}

	fr := p.currentFrame()
	for _, i := range p.active {
		s := &p.slots[i]
		if !s.Flying && s.ScaleFactor == s.TargetScale {
			continue
		}
		if s.Flying {
			s.WorldPosition = spatial.TransformPoint(fr.world, s.AnchorPosition)
			s.WorldOrientation = fr.rot.Mul(s.AnchorOrientation)
			s.snapToAnchor()
			res.Landed++
		}
		s.ScaleFactor = s.TargetScale
		p.writeMatrix(i)
		res.Moved++
	}
	return res
}
