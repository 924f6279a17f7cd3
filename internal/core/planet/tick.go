package planet

// TickReport summarizes one simulation step.
type TickReport struct {
	Tick     uint64
	Commands int
	Landed   int
	Released int
	Moved    int
}

// Tick drains queued commands, rotates the planet and advances the litter
// animations. dt is the wall-clock frame time in seconds; animation steps
// are capped at MaxStep.
func (s *Simulation) Tick(dt float64) TickReport {
	dt = max(dt, 0)
	s.tick++
	report := TickReport{Tick: s.tick}

	for _, cmd := range s.queue.Drain() {
		cmd.apply(s)
		report.Commands++
	}

	if s.animating() && s.autoRotate && dt > 0 {
		s.yaw += dt * s.cfg.RotationSpeed
		s.planet.SetYaw(s.yaw)
		s.frameDirty = true
	}

	if s.animating() {
		res := s.pool.Tick(min(dt, s.cfg.MaxStep))
		report.Landed = res.Landed
		report.Moved = res.Moved
		report.Released = len(res.Released)
		s.reportReleased(res.Released)
		if len(res.Released) > 0 {
			s.stateChanged()
		}
	}
	return report
}

// animating reports whether per-frame motion runs: only on the visible
// planet and never under reduced motion.
func (s *Simulation) animating() bool {
	return s.mode == ModePlanet && !s.cfg.Litter.ReduceMotion
}
