// Package events names the simulation's bus events and their payloads.
package events

const (
	LitterPlaced   = "litter.placed"
	LitterRemoving = "litter.removing"
	LitterReleased = "litter.released"

	PlanetStateChanged = "planet.state_changed"
	PlanetTimeUp       = "planet.time_up"
	PlanetModeChanged  = "planet.mode_changed"
)

// Litter is the payload of the litter.* events.
type Litter struct {
	Slot      int `json:"slot"`
	TypeIndex int `json:"type"`
}

// State is the payload of planet.state_changed and planet.time_up.
type State struct {
	Health      float64 `json:"health"`
	YearsLeft   float64 `json:"yearsLeft"`
	ActiveCount int     `json:"active"`
}

// Mode is the payload of planet.mode_changed.
type Mode struct {
	From string `json:"from"`
	To   string `json:"to"`
}
