package litter

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// Camera supplies the launch reference for fly-in animations.
type Camera interface {
	Position() mgl64.Vec3
}

// FixedCamera is a Camera that never moves.
type FixedCamera mgl64.Vec3

func (c FixedCamera) Position() mgl64.Vec3 { return mgl64.Vec3(c) }

// Option customizes a Pool at construction.
type Option func(*Pool)

func WithRandom(r Random) Option {
	return func(p *Pool) { p.rng = r }
}

func WithCamera(c Camera) Option {
	return func(p *Pool) { p.camera = c }
}

// Pool is the fixed-capacity litter arena. Slots are addressed by index; the
// active list is kept dense with swap-and-pop and each active slot records
// its own position in it (PoolListIndex).
//
// Pool is not safe for concurrent use. One goroutine owns it for the
// duration of a tick; other goroutines go through a CommandQueue.
type Pool struct {
	cfg      Config
	registry *Registry
	parent   spatial.Transform
	camera   Camera
	rng      Random

	slots  []Slot
	free   []int
	active []int

	matrices []mgl64.Mat4
	dirty    []bool
}

func NewPool(cfg Config, registry *Registry, parent spatial.Transform, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil || registry.Len() == 0 {
		return nil, ErrNoArchetypes
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: parent transform is required", ErrInvalidConfig)
	}

	p := &Pool{
		cfg:      cfg,
		registry: registry,
		parent:   parent,
		camera:   FixedCamera{0, cfg.PlanetRadius * 0.35, cfg.PlanetRadius * 3.2},
		slots:    make([]Slot, cfg.Capacity),
		free:     make([]int, 0, cfg.Capacity),
		active:   make([]int, 0, cfg.Capacity),
		matrices: make([]mgl64.Mat4, cfg.Capacity),
		dirty:    make([]bool, registry.Len()),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = NewRandom(0)
	}

	hidden := hiddenMatrix()
	for i := range p.slots {
		p.slots[i].reset()
		p.matrices[i] = hidden
		p.free = append(p.free, i)
	}
	p.markAllDirty()
	return p, nil
}

func hiddenMatrix() mgl64.Mat4 {
	return spatial.Compose(hiddenPosition, mgl64.QuatIdent(), mgl64.Vec3{})
}

func (p *Pool) Config() Config            { return p.cfg }
func (p *Pool) Registry() *Registry       { return p.registry }
func (p *Pool) Capacity() int             { return len(p.slots) }
func (p *Pool) ActiveCount() int          { return len(p.active) }
func (p *Pool) FreeCount() int            { return len(p.free) }
func (p *Pool) Parent() spatial.Transform { return p.parent }

// SetCamera swaps the camera used for subsequent launches.
func (p *Pool) SetCamera(c Camera) {
	if c != nil {
		p.camera = c
	}
}

// Slot returns a copy of slot i.
func (p *Pool) Slot(i int) (Slot, bool) {
	if i < 0 || i >= len(p.slots) {
		return Slot{}, false
	}
	return p.slots[i], true
}

// Active returns a copy of the active index list.
func (p *Pool) Active() []int {
	out := make([]int, len(p.active))
	copy(out, p.active)
	return out
}

// Free returns a copy of the free index list.
func (p *Pool) Free() []int {
	out := make([]int, len(p.free))
	copy(out, p.free)
	return out
}

// Allocate claims a free slot and appends it to the active list.
func (p *Pool) Allocate() (int, bool) {
	n := len(p.free)
	if n == 0 {
		return -1, false
	}
	i := p.free[n-1]
	p.free = p.free[:n-1]

	s := &p.slots[i]
	s.Active = true
	s.Removing = false
	s.PoolListIndex = len(p.active)
	p.active = append(p.active, i)
	return i, true
}

// Release returns slot i to the free list. Releasing a free slot is a no-op.
func (p *Pool) Release(i int) bool {
	if i < 0 || i >= len(p.slots) || !p.slots[i].Active {
		return false
	}
	s := &p.slots[i]
	typeIndex := s.TypeIndex

	idx := s.PoolListIndex
	last := p.active[len(p.active)-1]
	p.active = p.active[:len(p.active)-1]
	if last != i {
		p.active[idx] = last
		p.slots[last].PoolListIndex = idx
	}

	s.reset()
	p.free = append(p.free, i)

	p.matrices[i] = hiddenMatrix()
	p.markDirty(typeIndex)
	return true
}

// Clear releases every active slot.
func (p *Pool) Clear() int {
	n := 0
	for k := len(p.active) - 1; k >= 0; k-- {
		if p.Release(p.active[k]) {
			n++
		}
	}
	p.markAllDirty()
	return n
}

// MarkRemoval starts the shrink-out of a settled slot. Slots that are free,
// already removing or still in flight are left alone.
func (p *Pool) MarkRemoval(i int) bool {
	if i < 0 || i >= len(p.slots) {
		return false
	}
	s := &p.slots[i]
	if !s.Active || s.Removing || s.Flying {
		return false
	}
	s.Removing = true
	s.TargetScale = 0
	if p.cfg.ReduceMotion {
		p.Release(i)
	}
	return true
}

// Validate checks the free/active partition and the back-pointers.
func (p *Pool) Validate() error {
	if len(p.free)+len(p.active) != len(p.slots) {
		return fmt.Errorf("%w: %d free + %d active != %d", ErrPoolCorrupted, len(p.free), len(p.active), len(p.slots))
	}
	seen := make([]bool, len(p.slots))
	for k, i := range p.active {
		if i < 0 || i >= len(p.slots) || seen[i] {
			return fmt.Errorf("%w: active entry %d (slot %d) duplicated or out of range", ErrPoolCorrupted, k, i)
		}
		seen[i] = true
		s := &p.slots[i]
		if !s.Active || s.PoolListIndex != k {
			return fmt.Errorf("%w: slot %d active=%v listIndex=%d, want position %d", ErrPoolCorrupted, i, s.Active, s.PoolListIndex, k)
		}
		if s.Flying && s.TargetScale != 1 {
			return fmt.Errorf("%w: flying slot %d has target scale %g", ErrPoolCorrupted, i, s.TargetScale)
		}
	}
	for _, i := range p.free {
		if i < 0 || i >= len(p.slots) || seen[i] {
			return fmt.Errorf("%w: free slot %d duplicated or out of range", ErrPoolCorrupted, i)
		}
		seen[i] = true
		if p.slots[i].Active {
			return fmt.Errorf("%w: slot %d is free but marked active", ErrPoolCorrupted, i)
		}
	}
	return nil
}
