package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/orbis/pkg/solid"
)

// ErrSurfaceOnly is returned for parts that have no enclosed volume.
var ErrSurfaceOnly = errors.New("part is a surface with no volume")

// slabMargin widens slabs past the sphere so their side faces never
// touch it.
const slabMargin = 1.1

// Body is a closed solid standing in for one or more pieces. It moves with
// the offset of the piece at index Piece.
type Body struct {
	Name  string
	Piece int
	Solid Solid
}

// PartSolids builds the closed solids matching the pieces of d. Caps and
// bands become the sphere cut by a slab, cones become cones, and disks are
// left out since they are the faces of those slabs. The pieces of one
// part are merged into a single body, except for the separated layer whose
// pieces move apart.
func PartSolids(k Kernel, d *solid.Decomposition) ([]Body, error) {
	if d == nil {
		return nil, fmt.Errorf("kernel: %w: nil decomposition", solid.ErrInvalidParameter)
	}
	if d.Part == solid.Zone {
		return nil, fmt.Errorf("kernel: %v: %w", d.Part, ErrSurfaceOnly)
	}

	var bodies []Body
	for i, md := range d.Pieces {
		s, err := pieceSolid(k, md)
		if err != nil {
			return nil, fmt.Errorf("kernel: piece %q: %w", md.Name, err)
		}
		if s == nil {
			continue
		}
		s = k.Translate(s, md.Transform.Position)

		if d.Part == solid.SeparatedLayer || len(bodies) == 0 {
			bodies = append(bodies, Body{Name: md.Name, Piece: i, Solid: s})
			continue
		}
		bodies[0].Solid = k.Union(bodies[0].Solid, s)
	}
	if len(bodies) == 0 {
		return nil, fmt.Errorf("kernel: %v: %w", d.Part, ErrSurfaceOnly)
	}
	if d.Part != solid.SeparatedLayer {
		bodies[0].Name = d.Part.String()
	}
	return bodies, nil
}

// pieceSolid returns the untranslated solid of one piece, or nil for
// pieces that contribute no volume.
func pieceSolid(k Kernel, md solid.MeshDescriptor) (Solid, error) {
	switch g := md.Geometry.(type) {
	case solid.SpherePatchGeometry:
		ball, err := k.Sphere(g.Radius)
		if err != nil {
			return nil, err
		}
		end := g.PhiStart + g.PhiLength
		if g.PhiStart <= 0 && end >= math.Pi {
			return ball, nil
		}
		top := g.Radius * math.Cos(g.PhiStart)
		bottom := g.Radius * math.Cos(end)
		if g.PhiStart <= 0 {
			top = g.Radius * slabMargin
		}
		if end >= math.Pi {
			bottom = -g.Radius * slabMargin
		}
		slab, err := k.Slab(bottom, top, g.Radius*slabMargin)
		if err != nil {
			return nil, err
		}
		return k.Intersection(ball, slab), nil

	case solid.ConeGeometry:
		// a half turn about X puts the apex at the bottom
		if math.Cos(md.Transform.Rotation.X) < 0 {
			return k.Cone(g.Height, 0, g.BaseRadius)
		}
		return k.Cone(g.Height, g.BaseRadius, 0)

	case solid.CircleDiskGeometry:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: no solid for %T", solid.ErrUnsupportedPart, md.Geometry)
	}
}
