package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Clip is the slicing plane. Its normal is fixed at (0,-1,0), so the kept
// half-space is everything at or below Offset.
type Clip struct {
	Enabled bool    `json:"enabled"`
	Offset  float64 `json:"offset"`
}

// Normal returns the plane normal.
func (Clip) Normal() r3.Vec { return r3.Vec{Y: -1} }

// Keeps reports whether p survives the plane. A disabled plane keeps
// everything.
func (c Clip) Keeps(p r3.Vec) bool {
	if !c.Enabled {
		return true
	}
	return r3.Dot(c.Normal(), p)+c.Offset >= 0
}

// within resets the offset to 0 when it falls outside [-radius, radius].
func (c Clip) within(radius float64) Clip {
	if math.IsNaN(c.Offset) || math.Abs(c.Offset) > radius {
		c.Offset = 0
	}
	return c
}
