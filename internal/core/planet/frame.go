package planet

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/litter"
)

// Frame is what a renderer needs to redraw after a tick. Only archetypes
// whose instance buffers changed are listed.
type Frame struct {
	Tick       uint64
	Mode       Mode
	Planet     mgl64.Mat4
	Health     float64
	YearsLeft  float64
	TimeUp     bool
	Active     int
	Archetypes []ArchetypeFrame
}

// ArchetypeFrame is the full instance buffer of one archetype, in the
// planet's local frame.
type ArchetypeFrame struct {
	Type      int
	Name      string
	Instances []litter.Instance
}

// Frame returns the changes since the previous call, or false when nothing
// visible changed.
func (s *Simulation) Frame() (Frame, bool) {
	dirty := s.pool.TakeDirty()
	if !s.frameDirty && len(dirty) == 0 {
		return Frame{}, false
	}
	s.frameDirty = false

	f := s.frameHeader()
	for _, t := range dirty {
		f.Archetypes = append(f.Archetypes, s.archetypeFrame(t))
	}
	return f, true
}

// FullFrame lists every archetype regardless of dirty state, for viewers
// that just connected.
func (s *Simulation) FullFrame() Frame {
	f := s.frameHeader()
	for t := 0; t < s.pool.Registry().Len(); t++ {
		f.Archetypes = append(f.Archetypes, s.archetypeFrame(t))
	}
	return f
}

func (s *Simulation) frameHeader() Frame {
	return Frame{
		Tick:      s.tick,
		Mode:      s.mode,
		Planet:    s.planet.WorldMatrix(),
		Health:    s.health,
		YearsLeft: s.yearsLeft,
		TimeUp:    s.timeUp,
		Active:    s.pool.ActiveCount(),
	}
}

func (s *Simulation) archetypeFrame(t int) ArchetypeFrame {
	a, _ := s.pool.Registry().Archetype(t)
	return ArchetypeFrame{
		Type:      t,
		Name:      a.Name,
		Instances: s.pool.Instances(t),
	}
}
