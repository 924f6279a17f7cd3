package litter

// fallbackBaseScale is used when an archetype has no usable bounds.
const fallbackBaseScale = 0.085

// ArchetypeDef describes a litter variant as loaded from its mesh.
type ArchetypeDef struct {
	Name           string  `yaml:"name"`
	BoundingRadius float64 `yaml:"bounding_radius"`
}

// Archetype is a registered litter variant. BaseScale maps the mesh's own
// bounding radius onto the configured item radius.
type Archetype struct {
	Name           string
	BoundingRadius float64
	BaseScale      float64
}

// Registry is the ordered list of litter archetypes.
type Registry struct {
	archetypes []Archetype
}

// DefaultArchetypes mirrors the three bundled litter models.
func DefaultArchetypes() []ArchetypeDef {
	return []ArchetypeDef{
		{Name: "trash", BoundingRadius: 0.075},
		{Name: "bottle", BoundingRadius: 0.075},
		{Name: "garbage", BoundingRadius: 0.075},
	}
}

func NewRegistry(itemRadius float64, defs ...ArchetypeDef) *Registry {
	r := &Registry{archetypes: make([]Archetype, 0, len(defs))}
	for _, d := range defs {
		scale := fallbackBaseScale
		if d.BoundingRadius > 0 && itemRadius > 0 {
			scale = itemRadius / d.BoundingRadius
		}
		r.archetypes = append(r.archetypes, Archetype{
			Name:           d.Name,
			BoundingRadius: d.BoundingRadius,
			BaseScale:      scale,
		})
	}
	return r
}

func (r *Registry) Len() int {
	return len(r.archetypes)
}

// Archetype returns the archetype at i, falling back to the first one.
func (r *Registry) Archetype(i int) (Archetype, bool) {
	if i >= 0 && i < len(r.archetypes) {
		return r.archetypes[i], true
	}
	if len(r.archetypes) > 0 {
		return r.archetypes[0], true
	}
	return Archetype{}, false
}

func (r *Registry) BaseScale(i int) float64 {
	if a, ok := r.Archetype(i); ok && a.BaseScale > 0 {
		return a.BaseScale
	}
	return fallbackBaseScale
}

// Wrap maps any integer onto a valid type index, modulo the registry size.
func (r *Registry) Wrap(i int) int {
	n := max(1, len(r.archetypes))
	return ((i % n) + n) % n
}

// Clamp maps any integer onto a valid type index by saturation.
func (r *Registry) Clamp(i int) int {
	return min(max(i, 0), max(0, len(r.archetypes)-1))
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.archetypes))
	for i, a := range r.archetypes {
		names[i] = a.Name
	}
	return names
}
