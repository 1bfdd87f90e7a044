package popstage

// LightKind distinguishes the two light types the room uses.
type LightKind uint8

const (
	LightAmbient LightKind = iota // uniform fill light
	LightPoint                    // positioned light above the desk
)

// Light is a light source of the render graph.
type Light struct {
	Name string
	Kind LightKind
	// Position is only meaningful for point lights.
	Position Vec3
	// Intensity is the light's brightness. Ambient lights are usually in
	// [0, 1]; point lights may exceed 1.
	Intensity float64
	// Color is the tint color.
	Color Color
	// Enabled determines whether this light contributes to shading.
	Enabled bool
}

// NewLight creates an enabled white light.
func NewLight(name string, kind LightKind, intensity float64) *Light {
	return &Light{
		Name:      name,
		Kind:      kind,
		Intensity: intensity,
		Color:     ColorWhite,
		Enabled:   true,
	}
}

// shade returns the factor applied to material colors for the current
// lights: the ambient intensity plus a fraction of the point intensities,
// normalized against the point light's reference brightness.
func shade(lights []*Light, pointRef float64) float64 {
	var f float64
	for _, l := range lights {
		if !l.Enabled {
			continue
		}
		switch l.Kind {
		case LightAmbient:
			f += l.Intensity
		case LightPoint:
			if pointRef > 0 {
				f += 0.5 * l.Intensity / pointRef
			}
		}
	}
	return f
}
