// Package scene holds the per-visualization state: the caller-owned sphere
// settings, the part currently on display, the slicing plane and the
// offsets left behind by separation and isolation tweens.
//
// States run Whole -> Decomposed(kind) -> Separated, where Separated is
// only reachable from Decomposed(Layer). A Visualization is not safe for
// concurrent use; callers serialize access.
package scene

import (
	"fmt"
	"math"

	"github.com/chazu/orbis/pkg/separation"
	"github.com/chazu/orbis/pkg/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the visualization's position in the part state machine.
type State int

const (
	Whole State = iota
	Decomposed
	Separated
)

func (s State) String() string {
	switch s {
	case Whole:
		return "whole"
	case Decomposed:
		return "decomposed"
	case Separated:
		return "separated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Visualization is the state of one sphere viewer.
type Visualization struct {
	builder  solid.Builder
	defaults solid.Params

	params     solid.Params
	clip       Clip
	autoRotate bool

	state   State
	part    solid.PartKind
	decomp  *solid.Decomposition
	offsets []r3.Vec
}

// New returns a visualization showing the whole sphere. defaults are also
// the settings Reset returns to.
func New(defaults solid.Params, b solid.Builder) (*Visualization, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("scene: defaults: %w", err)
	}
	v := &Visualization{builder: b, defaults: defaults}
	if err := v.Reset(); err != nil {
		return nil, err
	}
	return v, nil
}

// State returns the current state.
func (v *Visualization) State() State { return v.state }

// Part returns the part on display.
func (v *Visualization) Part() solid.PartKind { return v.part }

// Params returns the current sphere settings.
func (v *Visualization) Params() solid.Params { return v.params }

// Clip returns the slicing plane.
func (v *Visualization) Clip() Clip { return v.clip }

// AutoRotate reports whether the camera should orbit on its own.
func (v *Visualization) AutoRotate() bool { return v.autoRotate }

// Decomposition returns the pieces on display. The result must not be
// modified.
func (v *Visualization) Decomposition() *solid.Decomposition { return v.decomp }

// Offsets returns a copy of the per-piece offsets, one per piece.
func (v *Visualization) Offsets() []r3.Vec {
	return append([]r3.Vec(nil), v.offsets...)
}

// show replaces the pieces on display and clears every offset.
func (v *Visualization) show(kind solid.PartKind) error {
	d, err := v.builder.Build(v.params, kind)
	if err != nil {
		return err
	}
	v.decomp = d
	v.part = kind
	v.offsets = make([]r3.Vec, d.Len())
	return nil
}

// ChoosePart puts kind on display, clearing any separation. Choosing the
// full sphere returns to Whole. If the part cannot be built the full sphere
// is shown instead and the build error is returned.
func (v *Visualization) ChoosePart(kind solid.PartKind) error {
	if err := v.show(kind); err != nil {
		if ferr := v.show(solid.FullSphere); ferr != nil {
			return fmt.Errorf("scene: fallback to full sphere: %w", ferr)
		}
		v.state = Whole
		v.autoRotate = false
		return fmt.Errorf("scene: choose %v: %w", kind, err)
	}

	switch kind {
	case solid.FullSphere:
		v.state = Whole
		v.autoRotate = false
	case solid.Zone, solid.Layer:
		v.state = Decomposed
	default:
		v.state = Decomposed
		v.autoRotate = true
	}
	return nil
}

// Separate pulls a displayed layer apart into its band and two polar caps.
// It returns the planned tweens, or nil when the layer is not on display or
// is already separated.
func (v *Visualization) Separate() ([]separation.Target, error) {
	if v.state != Decomposed || v.part != solid.Layer {
		return nil, nil
	}
	if err := v.show(solid.SeparatedLayer); err != nil {
		return nil, fmt.Errorf("scene: separate: %w", err)
	}
	targets, err := separation.PlanSeparation(v.decomp, v.params.Radius)
	if err != nil {
		return nil, fmt.Errorf("scene: separate: %w", err)
	}
	v.state = Separated
	v.settle(targets)
	return targets, nil
}

// Isolate moves every displayed piece by distance along axis.
func (v *Visualization) Isolate(axis separation.Axis, distance float64) []separation.Target {
	pieces := make([]separation.Piece, len(v.offsets))
	for i, off := range v.offsets {
		pieces[i] = separation.Piece{Index: i, Position: r3.Add(pieceOrigin(v.decomp, i), off)}
	}
	targets := separation.PlanIsolation(pieces, axis, distance)
	v.settle(targets)
	return targets
}

// settle records where the tweens end so later plans start from there.
func (v *Visualization) settle(targets []separation.Target) {
	for _, t := range targets {
		if t.PieceIndex < 0 || t.PieceIndex >= len(v.offsets) {
			continue
		}
		end := separation.Interpolate(t, float64(t.DurationMs))
		base := t.Axis.Component(pieceOrigin(v.decomp, t.PieceIndex))
		v.offsets[t.PieceIndex] = t.Axis.With(v.offsets[t.PieceIndex], end-base)
	}
}

// pieceOrigin is the built position of a piece. Offsets are kept relative
// to it while targets carry absolute positions.
func pieceOrigin(d *solid.Decomposition, i int) r3.Vec {
	return d.Pieces[i].Transform.Position
}

// Reset returns to the whole sphere with the default settings, no slicing
// plane and no offsets.
func (v *Visualization) Reset() error {
	v.params = v.defaults
	v.clip = Clip{}
	v.autoRotate = false
	if err := v.show(solid.FullSphere); err != nil {
		return fmt.Errorf("scene: reset: %w", err)
	}
	v.state = Whole
	return nil
}

// SetRadius rebuilds the whole sphere at radius r. A slicing offset that
// falls outside the new radius is reset to 0. An invalid radius is rejected
// and the previous one kept.
func (v *Visualization) SetRadius(r float64) error {
	p := v.params
	p.Radius = r
	if err := p.Validate(); err != nil {
		return fmt.Errorf("scene: radius: %w", err)
	}
	v.params = p
	v.clip = v.clip.within(r)
	if err := v.show(solid.FullSphere); err != nil {
		return fmt.Errorf("scene: radius: %w", err)
	}
	v.state = Whole
	v.autoRotate = false
	return nil
}

// SetColor changes the color of every piece without rebuilding.
func (v *Visualization) SetColor(hex string) error {
	if _, err := solid.ParseColor(hex); err != nil {
		return fmt.Errorf("scene: color: %w", err)
	}
	v.params.Color = hex
	return nil
}

// SetOpacity changes the opacity, clamped to [0,1].
func (v *Visualization) SetOpacity(o float64) {
	switch {
	case math.IsNaN(o):
		return
	case o < 0:
		o = 0
	case o > 1:
		o = 1
	}
	v.params.Opacity = o
}

// SetWireframe toggles wireframe rendering.
func (v *Visualization) SetWireframe(on bool) { v.params.Wireframe = on }

// SetAutoRotate toggles the camera orbit.
func (v *Visualization) SetAutoRotate(on bool) { v.autoRotate = on }

// SetClip configures the slicing plane. An offset outside [-radius, radius]
// is reset to 0; the plane is still applied and ErrInvalidParameter is
// returned so the caller can report it.
func (v *Visualization) SetClip(enabled bool, offset float64) error {
	c := Clip{Enabled: enabled, Offset: offset}
	v.clip = c.within(v.params.Radius)
	if v.clip != c {
		return fmt.Errorf("scene: %w: slice offset %v outside [-%v, %v]",
			solid.ErrInvalidParameter, offset, v.params.Radius, v.params.Radius)
	}
	return nil
}

// Materials resolves the material of every displayed piece.
func (v *Visualization) Materials() []solid.Material {
	out := make([]solid.Material, v.decomp.Len())
	for i, p := range v.decomp.Pieces {
		out[i] = solid.ResolveMaterial(v.params, p.Material)
	}
	return out
}

// Bounds returns the box of the displayed pieces with their offsets.
func (v *Visualization) Bounds() r3.Box {
	return solid.BoundsWithOffsets(v.decomp, v.offsets)
}
