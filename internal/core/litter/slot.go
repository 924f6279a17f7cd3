package litter

import (
	"github.com/go-gl/mathgl/mgl64"
)

// hiddenPosition parks free slots far outside the scene.
var hiddenPosition = mgl64.Vec3{9999, 9999, 9999}

// State classifies a slot for invariant checks and diagnostics.
type State uint8

const (
	StateFree State = iota
	StateActive
	StateRemoving
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateActive:
		return "active"
	case StateRemoving:
		return "removing"
	default:
		return "unknown"
	}
}

// Slot is one entry of the fixed-capacity pool. Anchor and render transforms
// are in the parent's local frame; World* fields hold flight state in world
// space because the parent keeps rotating while an item is in the air.
type Slot struct {
	Active   bool
	Removing bool
	Flying   bool

	FlightElapsed  float64
	FlightDuration float64

	ScaleFactor float64
	TargetScale float64
	TypeIndex   int

	AnchorPosition    mgl64.Vec3
	AnchorOrientation mgl64.Quat

	RenderPosition    mgl64.Vec3
	RenderOrientation mgl64.Quat

	WorldPosition    mgl64.Vec3
	WorldVelocity    mgl64.Vec3
	WorldOrientation mgl64.Quat

	SpinAxis mgl64.Vec3
	SpinRate float64

	BaseScale     float64
	PoolListIndex int

	// renderedScale is the ScaleFactor last written to the matrix cache.
	renderedScale float64
}

func (s *Slot) State() State {
	switch {
	case !s.Active:
		return StateFree
	case s.Removing:
		return StateRemoving
	default:
		return StateActive
	}
}

// Settled reports an active slot that is neither flying nor being removed.
func (s *Slot) Settled() bool {
	return s.Active && !s.Flying && !s.Removing
}

func (s *Slot) reset() {
	*s = Slot{
		AnchorOrientation: mgl64.QuatIdent(),
		RenderOrientation: mgl64.QuatIdent(),
		WorldOrientation:  mgl64.QuatIdent(),
		AnchorPosition:    hiddenPosition,
		RenderPosition:    hiddenPosition,
		WorldPosition:     hiddenPosition,
		SpinAxis:          mgl64.Vec3{0, 1, 0},
		BaseScale:         1,
		PoolListIndex:     -1,
	}
}

// snapToAnchor ends any flight and puts the render transform on the anchor.
func (s *Slot) snapToAnchor() {
	s.Flying = false
	s.FlightElapsed = 0
	s.FlightDuration = 0
	s.SpinRate = 0
	s.WorldVelocity = mgl64.Vec3{}
	s.RenderPosition = s.AnchorPosition
	s.RenderOrientation = s.AnchorOrientation
}
