package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/zeusync/planetreboot/internal/core/litter"
	"github.com/zeusync/planetreboot/pkg/encoding"
)

// DefaultKey is the key the simulation document is stored under.
const DefaultKey = "circularSim.min.v1"

// Metric ranges of the persisted document.
const (
	DefaultHealth    = 80.0
	MaxHealth        = 100.0
	DefaultYearsLeft = 75.0
	MaxYearsLeft     = 120.0
)

// Document is the persisted simulation state.
type Document struct {
	Health            float64             `json:"health"`
	YearsLeft         float64             `json:"yearsLeft"`
	TrashCount        int                 `json:"trashCount"`
	Trash             []litter.PackedItem `json:"trash"`
	AutoRotateEnabled bool                `json:"autoRotateEnabled"`

	// Skipped counts trash entries dropped while decoding.
	Skipped int `json:"-"`
}

var _ encoding.Serializable = (*Document)(nil)

// DefaultDocument is the state of a fresh planet.
func DefaultDocument() Document {
	return Document{
		Health:            DefaultHealth,
		YearsLeft:         DefaultYearsLeft,
		Trash:             []litter.PackedItem{},
		AutoRotateEnabled: true,
	}
}

func (d *Document) Serialize() ([]byte, error) {
	out := *d
	if out.Trash == nil {
		out.Trash = []litter.PackedItem{}
	}
	return json.Marshal(out)
}

// Deserialize decodes a stored blob leniently. Only a blob that is not a JSON
// object is an error. Missing, zero or non-numeric metrics take their
// defaults, values are clamped into range, and malformed trash entries are
// skipped.
func (d *Document) Deserialize(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrMalformedDocument
	}
	var raw struct {
		Health            any             `json:"health"`
		YearsLeft         any             `json:"yearsLeft"`
		TrashCount        any             `json:"trashCount"`
		Trash             json.RawMessage `json:"trash"`
		AutoRotateEnabled any             `json:"autoRotateEnabled"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	d.Health = clamp(encoding.NumberOr(raw.Health, DefaultHealth), 0, MaxHealth)
	d.YearsLeft = clamp(encoding.NumberOr(raw.YearsLeft, DefaultYearsLeft), 0, MaxYearsLeft)

	count := encoding.Number(raw.TrashCount)
	if math.IsNaN(count) {
		count = 0
	}
	d.TrashCount = int(clamp(count, 0, litter.DefaultCapacity))

	d.AutoRotateEnabled = raw.AutoRotateEnabled == nil || encoding.Truthy(raw.AutoRotateEnabled)

	d.Trash, d.Skipped = litter.DecodePacked(raw.Trash)
	if d.Trash == nil {
		d.Trash = []litter.PackedItem{}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
