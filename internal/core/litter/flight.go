package litter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

const (
	spinDampBase  = 0.55
	spinDampAlign = 3.25
	spinStop      = 0.05
	alignBase     = 2.0
	alignGain     = 18.0
)

// frame caches the parent transforms for one tick.
type frame struct {
	world  mgl64.Mat4
	inv    mgl64.Mat4
	rot    mgl64.Quat
	invRot mgl64.Quat
}

func (p *Pool) currentFrame() frame {
	world := p.parent.WorldMatrix()
	rot := p.parent.WorldRotation()
	return frame{
		world:  world,
		inv:    world.Inv(),
		rot:    rot,
		invRot: rot.Inverse(),
	}
}

// stepFlight advances one flying slot by dt and reports whether it landed.
// A flight always ends once FlightElapsed reaches FlightDuration, whatever
// the spring does.
func (p *Pool) stepFlight(s *Slot, dt float64, fr frame) bool {
	f := p.cfg.Flight
	target := spatial.TransformPoint(fr.world, s.AnchorPosition)

	s.FlightElapsed += dt
	t01 := 1.0
	if s.FlightDuration > 0 {
		t01 = spatial.Clamp(s.FlightElapsed/s.FlightDuration, 0, 1)
	}
	align01 := spatial.Smoothstep(t01)

	toTarget := target.Sub(s.WorldPosition)
	if toTarget.Len() <= p.cfg.AttachDistance() || s.FlightElapsed >= s.FlightDuration {
		s.WorldPosition = target
		s.WorldOrientation = fr.rot.Mul(s.AnchorOrientation)
		s.snapToAnchor()
		return true
	}

	// a = k*(target - pos) - c*v - g*normalize(pos)
	accel := toTarget.Mul(f.Spring).Sub(s.WorldVelocity.Mul(f.Damping))
	if r2 := s.WorldPosition.LenSqr(); r2 > 1e-6 {
		accel = accel.Sub(s.WorldPosition.Mul(f.Gravity / math.Sqrt(r2)))
	}

	s.WorldVelocity = s.WorldVelocity.Add(accel.Mul(dt))
	s.WorldVelocity = s.WorldVelocity.Mul(math.Exp(-f.Drag * dt))
	s.WorldPosition = s.WorldPosition.Add(s.WorldVelocity.Mul(dt))

	if s.SpinRate != 0 {
		spin := mgl64.QuatRotate(s.SpinRate*dt, s.SpinAxis)
		s.WorldOrientation = s.WorldOrientation.Mul(spin)
		s.SpinRate *= math.Exp(-(spinDampBase + align01*spinDampAlign) * dt)
		if math.Abs(s.SpinRate) < spinStop {
			s.SpinRate = 0
		}
	}

	goal := fr.rot.Mul(s.AnchorOrientation)
	lambda := alignBase + align01*alignGain
	s.WorldOrientation = spatial.Slerp(s.WorldOrientation, goal, 1-math.Exp(-lambda*dt))

	s.RenderPosition = spatial.TransformPoint(fr.inv, s.WorldPosition)
	s.RenderOrientation = fr.invRot.Mul(s.WorldOrientation)
	return false
}
