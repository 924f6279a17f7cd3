package stream

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/planetreboot/internal/core/planet"
	"github.com/zeusync/planetreboot/internal/core/spatial"
)

// Message types sent to viewers.
const (
	MessageFrame = "frame"
	MessageEvent = "event"
	MessageError = "error"
)

// Actions accepted from viewers.
const (
	ActionAdd        = "add"
	ActionRemove     = "remove"
	ActionReset      = "reset"
	ActionMode       = "mode"
	ActionAutoRotate = "autorotate"
)

// FrameMessage carries the planet transform, the metrics and the instance
// buffers of the archetypes that changed. Matrices are column-major.
type FrameMessage struct {
	Type       string             `json:"type"`
	Tick       uint64             `json:"tick"`
	Mode       string             `json:"mode"`
	Planet     [16]float64        `json:"planet"`
	Health     float64            `json:"health"`
	YearsLeft  float64            `json:"yearsLeft"`
	TimeUp     bool               `json:"timeUp"`
	Active     int                `json:"active"`
	Archetypes []ArchetypeMessage `json:"archetypes"`
}

type ArchetypeMessage struct {
	Type      int               `json:"type"`
	Name      string            `json:"name"`
	Instances []InstanceMessage `json:"instances"`
}

type InstanceMessage struct {
	Slot   int         `json:"slot"`
	Matrix [16]float64 `json:"matrix"`
}

// EventMessage forwards a bus event to viewers.
type EventMessage struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// CommandMessage is a viewer input. Rays are given in world space.
type CommandMessage struct {
	Action    string     `json:"action"`
	Origin    [3]float64 `json:"origin"`
	Direction [3]float64 `json:"direction"`
	Mode      string     `json:"mode,omitempty"`
	// Enabled sets auto-rotation; omitted toggles it.
	Enabled *bool `json:"enabled,omitempty"`
}

func NewFrameMessage(f planet.Frame) FrameMessage {
	msg := FrameMessage{
		Type:       MessageFrame,
		Tick:       f.Tick,
		Mode:       string(f.Mode),
		Planet:     [16]float64(f.Planet),
		Health:     f.Health,
		YearsLeft:  f.YearsLeft,
		TimeUp:     f.TimeUp,
		Active:     f.Active,
		Archetypes: make([]ArchetypeMessage, 0, len(f.Archetypes)),
	}
	for _, a := range f.Archetypes {
		am := ArchetypeMessage{
			Type:      a.Type,
			Name:      a.Name,
			Instances: make([]InstanceMessage, 0, len(a.Instances)),
		}
		for _, in := range a.Instances {
			am.Instances = append(am.Instances, InstanceMessage{Slot: in.Slot, Matrix: [16]float64(in.Matrix)})
		}
		msg.Archetypes = append(msg.Archetypes, am)
	}
	return msg
}

// Command maps the message onto a simulation command.
func (m CommandMessage) Command() (planet.Command, error) {
	switch m.Action {
	case ActionAdd, ActionRemove:
		ray, err := m.ray()
		if err != nil {
			return nil, err
		}
		if m.Action == ActionAdd {
			return planet.AddAt{Ray: ray}, nil
		}
		return planet.RemoveAt{Ray: ray}, nil
	case ActionReset:
		return planet.Reset{}, nil
	case ActionMode:
		mode, err := planet.ParseMode(m.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
		}
		return planet.SetMode{Mode: mode}, nil
	case ActionAutoRotate:
		if m.Enabled == nil {
			return planet.ToggleAutoRotate{}, nil
		}
		return planet.SetAutoRotate{Enabled: *m.Enabled}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, m.Action)
	}
}

func (m CommandMessage) ray() (spatial.Ray, error) {
	dir := mgl64.Vec3(m.Direction)
	if dir.LenSqr() == 0 {
		return spatial.Ray{}, fmt.Errorf("%w: %s needs a direction", ErrInvalidMessage, m.Action)
	}
	return spatial.NewRay(mgl64.Vec3(m.Origin), dir), nil
}
