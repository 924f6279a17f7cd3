package planet

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/spatial"
	"github.com/zeusync/planetreboot/pkg/sequence"
)

// Command is a user intent applied by the tick goroutine.
type Command interface {
	apply(s *Simulation)
}

// AddAt is the primary click: it starts removing the litter under the ray,
// or drops new litter where the ray meets the planet.
type AddAt struct {
	Ray spatial.Ray
}

// RemoveAt starts removing the litter under the ray.
type RemoveAt struct {
	Ray spatial.Ray
}

// PlaceAt drops litter at an explicit world-space surface hit.
type PlaceAt struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// RemoveSlot starts removing the litter in a known slot.
type RemoveSlot struct {
	Slot int
}

// Reset restores default metrics and clears the planet.
type Reset struct{}

// SetMode switches between the planet and space scenes.
type SetMode struct {
	Mode Mode
}

// SetAutoRotate turns auto-rotation on or off.
type SetAutoRotate struct {
	Enabled bool
}

// ToggleAutoRotate flips auto-rotation.
type ToggleAutoRotate struct{}

func (c AddAt) apply(s *Simulation)          { s.addAt(c.Ray) }
func (c RemoveAt) apply(s *Simulation)       { s.removeAt(c.Ray) }
func (c PlaceAt) apply(s *Simulation)        { s.placeAt(c.Point, c.Normal) }
func (c RemoveSlot) apply(s *Simulation)     { s.removeSlot(c.Slot) }
func (Reset) apply(s *Simulation)            { s.reset() }
func (c SetMode) apply(s *Simulation)        { s.setMode(c.Mode) }
func (c SetAutoRotate) apply(s *Simulation)  { s.setAutoRotate(c.Enabled) }
func (ToggleAutoRotate) apply(s *Simulation) { s.setAutoRotate(!s.autoRotate) }

// CommandQueue is a bounded FIFO of commands, safe for concurrent producers.
type CommandQueue struct {
	mu    sync.Mutex
	queue *sequence.Queue[Command]
	limit int
}

func NewCommandQueue(limit int) *CommandQueue {
	return &CommandQueue{
		queue: sequence.NewQueue[Command](min(limit, 64)),
		limit: limit,
	}
}

// Push appends a command. It fails with ErrQueueFull once limit commands
// are waiting.
func (q *CommandQueue) Push(cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.limit > 0 && q.queue.Len() >= q.limit {
		return ErrQueueFull
	}
	q.queue.Enqueue(cmd)
	return nil
}

// Drain removes and returns every waiting command in arrival order.
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queue.IsEmpty() {
		return nil
	}
	return q.queue.Drain(make([]Command, 0, q.queue.Len()))
}

func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}
