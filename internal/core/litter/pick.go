package litter

import (
	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// Pick returns the active slot whose bounding sphere the world-space ray
// hits first. The sphere follows the current render transform and scale.
func (p *Pool) Pick(ray spatial.Ray) (int, bool) {
	fr := p.currentFrame()
	best, bestT := -1, 0.0
	for _, i := range p.active {
		s := &p.slots[i]
		a, ok := p.registry.Archetype(s.TypeIndex)
		if !ok {
			continue
		}
		radius := a.BoundingRadius * s.BaseScale * s.ScaleFactor
		if a.BoundingRadius <= 0 {
			radius = p.cfg.ItemRadius() * s.ScaleFactor
		}
		center := spatial.TransformPoint(fr.world, s.RenderPosition)
		t, hit := ray.IntersectSphere(center, radius)
		if !hit {
			continue
		}
		if best < 0 || t < bestT {
			best, bestT = i, t
		}
	}
	return best, best >= 0
}
