package planet

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/events"
	"github.com/zeusync/planetreboot/internal/core/litter"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/spatial"
	"github.com/zeusync/planetreboot/internal/core/storage"
)

// interactive reports whether clicks reach the planet.
func (s *Simulation) interactive() bool {
	return !s.timeUp && s.mode == ModePlanet
}

func (s *Simulation) addAt(ray spatial.Ray) {
	if !s.interactive() {
		return
	}
	if i, ok := s.pool.Pick(ray); ok {
		s.startRemoval(i)
		return
	}
	hit, ok := s.surface.Raycast(ray)
	if !ok {
		return
	}
	s.placeAt(hit.Point, hit.Normal)
}

func (s *Simulation) removeAt(ray spatial.Ray) {
	if !s.interactive() {
		return
	}
	if i, ok := s.pool.Pick(ray); ok {
		s.startRemoval(i)
	}
}

func (s *Simulation) removeSlot(i int) {
	if !s.interactive() {
		return
	}
	s.startRemoval(i)
}

// placeAt drops the next litter type in rotation and charges the planet for it.
func (s *Simulation) placeAt(point, normal mgl64.Vec3) {
	if !s.interactive() {
		return
	}
	typeIndex := s.cursor % max(1, s.pool.Registry().Len())
	opts := litter.DefaultPlaceOptions()
	opts.TypeIndex = typeIndex

	i, ok := s.pool.Place(point, normal, opts)
	if !ok {
		s.logger.Debug("Placement rejected", log.Int("active", s.pool.ActiveCount()))
		return
	}
	s.cursor++
	s.publish(events.LitterPlaced, events.Litter{Slot: i, TypeIndex: typeIndex})
	s.applyDelta(-float64(litter.IntBetween(s.rng, 1, 3)), -litter.Between(s.rng, 0.3, 1.2))
}

// startRemoval begins recycling slot i and rewards the planet for it.
func (s *Simulation) startRemoval(i int) {
	slot, ok := s.pool.Slot(i)
	if !ok || !s.pool.MarkRemoval(i) {
		return
	}
	s.publish(events.LitterRemoving, events.Litter{Slot: i, TypeIndex: slot.TypeIndex})
	if s.cfg.Litter.ReduceMotion {
		s.publish(events.LitterReleased, events.Litter{Slot: i, TypeIndex: slot.TypeIndex})
	}
	s.applyDelta(float64(litter.IntBetween(s.rng, 1, 3)), litter.Between(s.rng, 0.3, 1.2))
}

// applyDelta moves the metrics and flips into time-up once no years are left.
func (s *Simulation) applyDelta(health, years float64) {
	if s.timeUp {
		return
	}
	s.health = spatial.Clamp(s.health+health, 0, storage.MaxHealth)
	s.yearsLeft = spatial.Clamp(s.yearsLeft+years, 0, storage.MaxYearsLeft)
	if s.yearsLeft <= 0 {
		s.yearsLeft = 0
		s.timeUp = true
		s.logger.Info("Time is up", log.Float64("health", s.health))
		s.publish(events.PlanetTimeUp, events.State{
			Health:      s.health,
			YearsLeft:   s.yearsLeft,
			ActiveCount: s.pool.ActiveCount(),
		})
	}
	s.stateChanged()
}

func (s *Simulation) reset() {
	s.timeUp = false
	s.health = storage.DefaultHealth
	s.yearsLeft = storage.DefaultYearsLeft
	s.cursor = 0
	released := s.pool.Clear()
	s.logger.Info("Simulation reset", log.Int("released", released))
	s.stateChanged()
}

func (s *Simulation) setMode(next Mode) {
	if next != ModePlanet && next != ModeSpace {
		s.logger.Warn("Ignoring unknown mode", log.String("mode", string(next)))
		return
	}
	if next == s.mode {
		return
	}
	prev := s.mode
	if prev == ModePlanet && next == ModeSpace {
		res := s.pool.Settle()
		s.reportReleased(res.Released)
		if len(res.Released) > 0 {
			s.stateChanged()
		}
	}
	s.mode = next
	s.pool.SetCamera(cameraFor(next, s.cfg.Litter.PlanetRadius))
	s.frameDirty = true
	s.publish(events.PlanetModeChanged, events.Mode{From: string(prev), To: string(next)})
}

func (s *Simulation) setAutoRotate(enabled bool) {
	if s.cfg.Litter.ReduceMotion {
		enabled = false
	}
	if enabled == s.autoRotate {
		return
	}
	s.autoRotate = enabled
	s.stateChanged()
}

func (s *Simulation) reportReleased(released []litter.Released) {
	for _, r := range released {
		s.publish(events.LitterReleased, events.Litter{Slot: r.Slot, TypeIndex: r.TypeIndex})
	}
}
