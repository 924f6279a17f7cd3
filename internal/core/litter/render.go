package litter

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// Instance is one entry of an archetype's instanced draw buffer.
type Instance struct {
	Slot   int
	Matrix mgl64.Mat4
}

// writeMatrix refreshes the cached local-frame matrix of slot i.
func (p *Pool) writeMatrix(i int) {
	s := &p.slots[i]
	s.renderedScale = s.ScaleFactor
	sc := s.BaseScale * s.ScaleFactor
	p.matrices[i] = spatial.Compose(s.RenderPosition, s.RenderOrientation, mgl64.Vec3{sc, sc, sc})
	p.markDirty(s.TypeIndex)
}

func (p *Pool) markDirty(typeIndex int) {
	if typeIndex >= 0 && typeIndex < len(p.dirty) {
		p.dirty[typeIndex] = true
	}
}

func (p *Pool) markAllDirty() {
	for t := range p.dirty {
		p.dirty[t] = true
	}
}

// Matrix is the current local-frame transform of slot i. Free slots carry a
// zero-scale matrix parked far away.
func (p *Pool) Matrix(i int) mgl64.Mat4 {
	if i < 0 || i >= len(p.matrices) {
		return hiddenMatrix()
	}
	return p.matrices[i]
}

// Dirty reports whether archetype t needs its draw buffer re-uploaded.
func (p *Pool) Dirty(t int) bool {
	return t >= 0 && t < len(p.dirty) && p.dirty[t]
}

// TakeDirty returns the archetypes whose buffers changed and clears the flags.
func (p *Pool) TakeDirty() []int {
	var out []int
	for t, d := range p.dirty {
		if d {
			out = append(out, t)
			p.dirty[t] = false
		}
	}
	return out
}

// Instances lists the active instances of archetype t in active-list order.
func (p *Pool) Instances(t int) []Instance {
	var out []Instance
	for _, i := range p.active {
		if p.slots[i].TypeIndex != t {
			continue
		}
		out = append(out, Instance{Slot: i, Matrix: p.matrices[i]})
	}
	return out
}
