package solid

import "math"

// Side selects which faces of a surface are drawn.
type Side int

const (
	SideFront Side = iota
	SideDouble
)

func (s Side) String() string {
	if s == SideDouble {
		return "double"
	}
	return "front"
}

// Shading constants shared by every piece.
const (
	Metalness         = 0.2
	Roughness         = 0.5
	EmissiveIntensity = 0.1
	ZoneOpacity       = 0.3
)

// Material is the resolved renderer material for one piece.
type Material struct {
	Color             RGB     `json:"color"`
	Hex               string  `json:"hex"`
	Opacity           float64 `json:"opacity"`
	Transparent       bool    `json:"transparent"`
	Wireframe         bool    `json:"wireframe"`
	Side              string  `json:"side"`
	Metalness         float64 `json:"metalness"`
	Roughness         float64 `json:"roughness"`
	Emissive          RGB     `json:"emissive"`
	EmissiveIntensity float64 `json:"emissiveIntensity"`
}

// ResolveMaterial turns a hint and the caller's settings into a material.
// An unparseable color falls back to the default color.
func ResolveMaterial(p Params, hint MaterialHint) Material {
	hex := p.Color
	rgb, err := ParseColor(hex)
	if err != nil {
		hex = DefaultParams().Color
		rgb, _ = ParseColor(hex)
	}
	opacity := clamp01(p.Opacity)

	m := Material{
		Color:             rgb,
		Hex:               hex,
		Opacity:           opacity,
		Transparent:       opacity < 1,
		Wireframe:         p.Wireframe,
		Side:              SideDouble.String(),
		Metalness:         Metalness,
		Roughness:         Roughness,
		Emissive:          rgb,
		EmissiveIntensity: EmissiveIntensity,
	}

	switch hint {
	case TranslucentWireframeZone:
		m.Opacity = ZoneOpacity
		m.Transparent = true
		m.Wireframe = true
	case SolidFrontSided:
		m.Side = SideFront.String()
		m.Transparent = false
	}
	return m
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 1
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
