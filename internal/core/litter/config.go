package litter

import (
	"fmt"

	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// DefaultCapacity is the number of litter instances a planet can carry.
const DefaultCapacity = 600

// FlightProfile tunes the fly-in animation. The integrator is tuned for
// looks, not physical accuracy.
type FlightProfile struct {
	Spring  float64 `yaml:"spring"`
	Damping float64 `yaml:"damping"`
	Gravity float64 `yaml:"gravity"`
	Drag    float64 `yaml:"drag"`

	// Flight duration is distance(camera, target) / (DurationRadii * R),
	// clamped to [MinDuration, MaxDuration] seconds.
	DurationRadii float64 `yaml:"duration_radii"`
	MinDuration   float64 `yaml:"min_duration"`
	MaxDuration   float64 `yaml:"max_duration"`

	// Launch speed is sized so the straight-line trip takes
	// distance / (TravelRadii * R) seconds, clamped to [MinTravel, MaxTravel].
	TravelRadii float64 `yaml:"travel_radii"`
	MinTravel   float64 `yaml:"min_travel"`
	MaxTravel   float64 `yaml:"max_travel"`

	LaunchOffsetRadii float64 `yaml:"launch_offset_radii"`

	VelocityJitter float64 `yaml:"velocity_jitter"`
	SpeedJitter    float64 `yaml:"speed_jitter"`
	SpinMin        float64 `yaml:"spin_min"`
	SpinMax        float64 `yaml:"spin_max"`
}

// ScaleProfile tunes the pop-in and removal animation.
type ScaleProfile struct {
	GrowRate     float64 `yaml:"grow_rate"`
	ShrinkRate   float64 `yaml:"shrink_rate"`
	ReleaseFloor float64 `yaml:"release_floor"`
}

// Config sizes the pool and the placement geometry. Distances are derived
// from PlanetRadius so the same config works for any planet model size.
type Config struct {
	Capacity     int     `yaml:"capacity"`
	PlanetRadius float64 `yaml:"planet_radius"`
	ReduceMotion bool    `yaml:"reduce_motion"`

	// ItemRadiusRatio is the rendered litter radius as a fraction of R.
	ItemRadiusRatio float64 `yaml:"item_radius_ratio"`
	// SurfaceOffsetRatio lifts anchors off the surface, as a fraction of the item radius.
	SurfaceOffsetRatio float64 `yaml:"surface_offset_ratio"`
	// SeparationRatio is the minimum anchor distance as a multiple of the item radius.
	SeparationRatio float64 `yaml:"separation_ratio"`
	// ScaleJitter randomizes the per-instance base scale by ±ScaleJitter.
	ScaleJitter float64 `yaml:"scale_jitter"`

	Flight FlightProfile `yaml:"flight"`
	Scale  ScaleProfile  `yaml:"scale"`
}

func DefaultConfig() Config {
	return Config{
		Capacity:           DefaultCapacity,
		PlanetRadius:       1,
		ItemRadiusRatio:    0.06,
		SurfaceOffsetRatio: 0.55,
		SeparationRatio:    1.15 * 2.15,
		ScaleJitter:        0.15,
		Flight: FlightProfile{
			Spring:            10.5,
			Damping:           6.0,
			Gravity:           2.2,
			Drag:              1.25,
			DurationRadii:     4.0,
			MinDuration:       0.55,
			MaxDuration:       1.25,
			TravelRadii:       3.6,
			MinTravel:         0.45,
			MaxTravel:         1.05,
			LaunchOffsetRadii: 0.35,
			VelocityJitter:    0.08,
			SpeedJitter:       0.08,
			SpinMin:           2.5,
			SpinMax:           9.0,
		},
		Scale: ScaleProfile{
			GrowRate:     7.0,
			ShrinkRate:   6.0,
			ReleaseFloor: 0.03,
		},
	}
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.PlanetRadius <= 0:
		return fmt.Errorf("%w: planet radius must be positive, got %g", ErrInvalidConfig, c.PlanetRadius)
	case c.ItemRadiusRatio <= 0:
		return fmt.Errorf("%w: item radius ratio must be positive", ErrInvalidConfig)
	case c.Flight.MinDuration <= 0 || c.Flight.MaxDuration < c.Flight.MinDuration:
		return fmt.Errorf("%w: flight duration range [%g,%g]", ErrInvalidConfig, c.Flight.MinDuration, c.Flight.MaxDuration)
	case c.Flight.MinTravel <= 0 || c.Flight.MaxTravel < c.Flight.MinTravel:
		return fmt.Errorf("%w: flight travel range [%g,%g]", ErrInvalidConfig, c.Flight.MinTravel, c.Flight.MaxTravel)
	case c.Scale.ReleaseFloor < 0 || c.Scale.ReleaseFloor >= 1:
		return fmt.Errorf("%w: release floor must be in [0,1)", ErrInvalidConfig)
	case c.Scale.GrowRate <= 0 || c.Scale.ShrinkRate <= 0:
		return fmt.Errorf("%w: scale rates must be positive", ErrInvalidConfig)
	}
	return nil
}

// ItemRadius is the world-space radius every archetype is normalized to.
func (c Config) ItemRadius() float64 {
	return c.PlanetRadius * c.ItemRadiusRatio
}

func (c Config) SurfaceOffset() float64 {
	return c.ItemRadius() * c.SurfaceOffsetRatio
}

func (c Config) MinSeparation() float64 {
	return c.ItemRadius() * c.SeparationRatio
}

// AttachDistance is how close a flight must get before it snaps to its anchor.
func (c Config) AttachDistance() float64 {
	r := c.PlanetRadius
	return max(c.SurfaceOffset()*2.2, r*0.025)
}

func (c Config) launchOffset() float64 {
	r := c.PlanetRadius
	return spatial.Clamp(r*c.Flight.LaunchOffsetRadii, 0.12, r*0.95)
}
