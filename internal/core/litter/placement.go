package litter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// PlaceOptions controls how a new item appears.
type PlaceOptions struct {
	TypeIndex int
	// Animate grows the item in from zero scale; otherwise it appears at full size.
	Animate bool
	// Fly launches the item from the camera; otherwise it snaps to its anchor.
	Fly bool
}

// DefaultPlaceOptions is the interactive "add litter" behaviour.
func DefaultPlaceOptions() PlaceOptions {
	return PlaceOptions{Animate: true, Fly: true}
}

// InstantPlaceOptions is used by restore paths: no pop-in, no flight.
func InstantPlaceOptions(typeIndex int) PlaceOptions {
	return PlaceOptions{TypeIndex: typeIndex}
}

// CanPlaceAt reports whether a local-frame anchor keeps the minimum
// separation from every active anchor.
func (p *Pool) CanPlaceAt(local mgl64.Vec3) bool {
	minSq := p.cfg.MinSeparation() * p.cfg.MinSeparation()
	for _, i := range p.active {
		s := &p.slots[i]
		if !s.Active {
			continue
		}
		if s.AnchorPosition.Sub(local).LenSqr() < minSq {
			return false
		}
	}
	return true
}

// Place drops a new item on the surface at a world-space hit. It returns
// false, leaving the pool untouched, when the pool is full or the spot is
// too close to an existing item.
func (p *Pool) Place(worldPoint, worldNormal mgl64.Vec3, opts PlaceOptions) (int, bool) {
	if len(p.free) == 0 {
		return -1, false
	}

	normal := spatial.SafeNormalize(worldNormal, spatial.SafeNormalize(worldPoint, spatial.Up))
	target := worldPoint.Add(normal.Mul(p.cfg.SurfaceOffset()))

	roll := mgl64.QuatRotate(Between(p.rng, 0, 2*math.Pi), normal)
	orientation := spatial.FromUnitVectors(spatial.Up, normal).Mul(roll)

	typeIndex := p.registry.Wrap(opts.TypeIndex)
	jitter := p.cfg.ScaleJitter
	baseScale := p.registry.BaseScale(typeIndex) * Between(p.rng, 1-jitter, 1+jitter)

	localPos, localRot, localScale := spatial.ToLocal(p.parent, target, orientation, baseScale)
	if !p.CanPlaceAt(localPos) {
		return -1, false
	}

	i, _ := p.Allocate()
	s := &p.slots[i]
	s.Removing = false
	s.TargetScale = 1
	s.ScaleFactor = 1
	if opts.Animate && !p.cfg.ReduceMotion {
		s.ScaleFactor = 0
	}
	s.BaseScale = localScale
	s.TypeIndex = typeIndex
	s.AnchorPosition = localPos
	s.AnchorOrientation = localRot

	if !opts.Fly || p.cfg.ReduceMotion {
		s.snapToAnchor()
		s.SpinAxis = spatial.Up
		p.writeMatrix(i)
		return i, true
	}

	p.launch(s, target)
	p.writeMatrix(i)
	return i, true
}

// launch initializes world-space flight state from the camera towards target.
func (p *Pool) launch(s *Slot, target mgl64.Vec3) {
	f := p.cfg.Flight
	r := p.cfg.PlanetRadius
	cam := p.camera.Position()

	s.Flying = true
	s.FlightElapsed = 0

	dir := spatial.SafeNormalize(target.Sub(cam), normalOr(target))
	s.FlightDuration = spatial.Clamp(cam.Sub(target).Len()/(r*f.DurationRadii), f.MinDuration, f.MaxDuration)

	s.WorldPosition = cam.Add(dir.Mul(p.cfg.launchOffset()))

	dist := s.WorldPosition.Sub(target).Len()
	travel := spatial.Clamp(dist/(r*f.TravelRadii), f.MinTravel, f.MaxTravel)
	speed := dist / travel
	s.WorldVelocity = dir.Mul(speed)

	side := p.randomVector().Cross(dir)
	if side.LenSqr() > 1e-6 {
		side = side.Normalize()
		s.WorldVelocity = s.WorldVelocity.Add(side.Mul(speed * Between(p.rng, -f.VelocityJitter, f.VelocityJitter)))
	}

	tumble := spatial.SafeNormalize(p.randomVector(), spatial.Up)
	s.WorldOrientation = mgl64.QuatRotate(Between(p.rng, 0, 2*math.Pi), tumble)

	s.SpinAxis = spatial.SafeNormalize(p.randomVector(), spatial.Up)
	s.SpinRate = Between(p.rng, f.SpinMin, f.SpinMax)
	if p.rng.Float64() < 0.5 {
		s.SpinRate = -s.SpinRate
	}
	s.WorldVelocity = s.WorldVelocity.Mul(Between(p.rng, 1-f.SpeedJitter, 1+f.SpeedJitter))

	inv := p.parent.WorldMatrix().Inv()
	s.RenderPosition = spatial.TransformPoint(inv, s.WorldPosition)
	s.RenderOrientation = p.parent.WorldRotation().Inverse().Mul(s.WorldOrientation)
}

func (p *Pool) randomVector() mgl64.Vec3 {
	return mgl64.Vec3{
		Between(p.rng, -1, 1),
		Between(p.rng, -1, 1),
		Between(p.rng, -1, 1),
	}
}

func normalOr(v mgl64.Vec3) mgl64.Vec3 {
	return spatial.SafeNormalize(v.Mul(-1), mgl64.Vec3{0, 0, -1})
}
