package litter

import (
	"math"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// restoreAttempts bounds the random probes per item in RestoreFromCount.
const restoreAttempts = 28

// RestoreFromCount recreates count items at random spots when only a bare
// count survived in storage. Each item probes up to restoreAttempts random
// directions against surface; a missed ray falls back to the ideal sphere.
// The result is plausible, not a reproduction. It returns the number placed.
func (p *Pool) RestoreFromCount(count int, surface spatial.Surface) int {
	desired := min(max(count, 0), len(p.slots))
	if desired == 0 {
		return 0
	}
	r := p.cfg.PlanetRadius
	typeCount := max(1, p.registry.Len())
	placed := 0

	for i := 0; i < desired; i++ {
		opts := InstantPlaceOptions(i % typeCount)
		for attempt := 0; attempt < restoreAttempts; attempt++ {
			dir := spatial.RandomUnitVector(Between(p.rng, -1, 1), Between(p.rng, 0, 2*math.Pi))
			ray := spatial.NewRay(dir.Mul(max(r*4.5, 3.5)), dir.Mul(-1))

			point, normal := dir.Mul(r), dir
			if surface != nil {
				if hit, ok := surface.Raycast(ray); ok {
					point, normal = hit.Point, hit.Normal
				}
			}
			if _, ok := p.Place(point, normal, opts); ok {
				placed++
				break
			}
		}
	}
	return placed
}
