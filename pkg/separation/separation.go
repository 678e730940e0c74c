// Package separation plans the animated offsets used to pull a decomposed
// sphere apart. Planners only describe tweens (from, to, duration, easing);
// the frontend clock performs the per-frame interpolation.
package separation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/orbis/pkg/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Timing and distances of the two planned animations.
const (
	SeparationDurationMs = 1500
	IsolationDurationMs  = 700

	// SeparationFactor scales the radius into the distance each polar cap
	// travels away from the band.
	SeparationFactor = 0.8
)

// ErrNotSeparable is returned when a decomposition is not a separable layer.
var ErrNotSeparable = errors.New("decomposition is not separable")

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// MarshalText encodes the axis by name.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAxis converts "x", "y" or "z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: invalid axis %q, expected x, y, or z", solid.ErrInvalidParameter, s)
}

// Component returns the coordinate of v along a.
func (a Axis) Component(v r3.Vec) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisZ:
		return v.Z
	}
	return v.Y
}

// With returns v with its coordinate along a replaced by x.
func (a Axis) With(v r3.Vec, x float64) r3.Vec {
	switch a {
	case AxisX:
		v.X = x
	case AxisZ:
		v.Z = x
	default:
		v.Y = x
	}
	return v
}

// Target is one planned tween of a piece along an axis. FromOffset and
// ToOffset are positions along Axis in visualization space.
type Target struct {
	PieceIndex int     `json:"pieceIndex"`
	Axis       Axis    `json:"-"`
	FromOffset float64 `json:"from"`
	ToOffset   float64 `json:"to"`
	DurationMs int     `json:"durationMs"`
	Easing     Easing  `json:"-"`
}

// MarshalJSON writes the target with axis and easing as names, the form the
// frontend tween engine looks up.
func (t Target) MarshalJSON() ([]byte, error) {
	type plain Target
	return json.Marshal(struct {
		plain
		Axis   string `json:"axis"`
		Easing string `json:"easing"`
	}{plain(t), t.Axis.String(), t.Easing.String()})
}

// PlanSeparation plans the separate animation of a SeparatedLayer: the band
// stays put while the top and bottom caps move 0.8 radius up and down.
// Tracking whether the pieces are already apart is the caller's job.
func PlanSeparation(d *solid.Decomposition, radius float64) ([]Target, error) {
	if d == nil || d.Part != solid.SeparatedLayer || d.Len() != 3 {
		return nil, ErrNotSeparable
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %v", solid.ErrInvalidParameter, radius)
	}
	dist := SeparationFactor * radius
	to := map[string]float64{
		solid.PieceBand:      0,
		solid.PieceTopCap:    dist,
		solid.PieceBottomCap: -dist,
	}

	targets := make([]Target, 0, d.Len())
	for i, p := range d.Pieces {
		off, ok := to[p.Name]
		if !ok {
			return nil, fmt.Errorf("%w: unexpected piece %q", ErrNotSeparable, p.Name)
		}
		base := AxisY.Component(p.Transform.Position)
		targets = append(targets, Target{
			PieceIndex: i,
			Axis:       AxisY,
			FromOffset: base,
			ToOffset:   base + off,
			DurationMs: SeparationDurationMs,
			Easing:     EaseOutCubic,
		})
	}
	return targets, nil
}

// Piece is a displayed piece and where it currently sits, built position
// plus any offset already applied.
type Piece struct {
	Index    int
	Position r3.Vec
}

// PlanIsolation plans moving every given piece by distance along axis.
func PlanIsolation(pieces []Piece, axis Axis, distance float64) []Target {
	targets := make([]Target, 0, len(pieces))
	for _, p := range pieces {
		cur := axis.Component(p.Position)
		targets = append(targets, Target{
			PieceIndex: p.Index,
			Axis:       axis,
			FromOffset: cur,
			ToOffset:   cur + distance,
			DurationMs: IsolationDurationMs,
			Easing:     EaseOutCubic,
		})
	}
	return targets
}

// Interpolate returns the offset of t after elapsedMs milliseconds.
func Interpolate(t Target, elapsedMs float64) float64 {
	if t.DurationMs <= 0 {
		return t.ToOffset
	}
	k := t.Easing.Apply(elapsedMs / float64(t.DurationMs))
	return t.FromOffset + (t.ToOffset-t.FromOffset)*k
}
