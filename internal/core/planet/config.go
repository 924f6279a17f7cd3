package planet

import (
	"fmt"
	"time"

	"github.com/zeusync/planetreboot/internal/core/litter"
)

// Config tunes the simulation around the litter pool.
type Config struct {
	// RotationSpeed is the auto-rotation yaw rate in radians per second.
	RotationSpeed float64 `yaml:"rotation_speed"`
	// MaxStep caps the animation step so a stalled frame does not teleport flights.
	MaxStep float64 `yaml:"max_step"`
	// Seed fixes the random source; zero seeds from the clock.
	Seed        uint64        `yaml:"seed"`
	QueueLimit  int           `yaml:"queue_limit"`
	SaveTimeout time.Duration `yaml:"save_timeout"`

	Litter     litter.Config         `yaml:"litter"`
	Archetypes []litter.ArchetypeDef `yaml:"archetypes"`
}

func DefaultConfig() Config {
	return Config{
		RotationSpeed: 0.22,
		MaxStep:       0.033,
		QueueLimit:    1024,
		SaveTimeout:   2 * time.Second,
		Litter:        litter.DefaultConfig(),
		Archetypes:    litter.DefaultArchetypes(),
	}
}

func (c Config) Validate() error {
	if c.MaxStep <= 0 {
		return fmt.Errorf("%w: max step must be positive", ErrInvalidConfig)
	}
	if c.QueueLimit <= 0 {
		return fmt.Errorf("%w: queue limit must be positive", ErrInvalidConfig)
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("%w: save timeout must be positive", ErrInvalidConfig)
	}
	if len(c.Archetypes) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, litter.ErrNoArchetypes)
	}
	if err := c.Litter.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
