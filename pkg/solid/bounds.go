package solid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	unitX = r3.Vec{X: 1}
	unitY = r3.Vec{Y: 1}
	unitZ = r3.Vec{Z: 1}
)

// Apply maps a point from piece-local space into visualization space:
// rotation in XYZ order first, then translation.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	if t.Rotation.Z != 0 {
		p = r3.NewRotation(t.Rotation.Z, unitZ).Rotate(p)
	}
	if t.Rotation.Y != 0 {
		p = r3.NewRotation(t.Rotation.Y, unitY).Rotate(p)
	}
	if t.Rotation.X != 0 {
		p = r3.NewRotation(t.Rotation.X, unitX).Rotate(p)
	}
	return r3.Add(p, t.Position)
}

// Normal maps a local direction into visualization space, ignoring
// translation.
func (t Transform) Normal(n r3.Vec) r3.Vec {
	return Transform{Rotation: t.Rotation}.Apply(n)
}

// LocalBounds returns the axis-aligned box of g in its own local space.
// Partial-azimuth patches get the full-azimuth box.
func LocalBounds(g Geometry) r3.Box {
	switch g := g.(type) {
	case SpherePatchGeometry:
		end := g.PhiStart + g.PhiLength
		rho := math.Max(math.Sin(g.PhiStart), math.Sin(end))
		if g.PhiStart <= math.Pi/2 && end >= math.Pi/2 {
			rho = 1
		}
		rho *= g.Radius
		return r3.Box{
			Min: r3.Vec{X: -rho, Y: g.Radius * math.Cos(end), Z: -rho},
			Max: r3.Vec{X: rho, Y: g.Radius * math.Cos(g.PhiStart), Z: rho},
		}
	case CircleDiskGeometry:
		return r3.Box{
			Min: r3.Vec{X: -g.Radius, Y: -g.Radius},
			Max: r3.Vec{X: g.Radius, Y: g.Radius},
		}
	case ConeGeometry:
		return r3.Box{
			Min: r3.Vec{X: -g.BaseRadius, Y: -g.Height / 2, Z: -g.BaseRadius},
			Max: r3.Vec{X: g.BaseRadius, Y: g.Height / 2, Z: g.BaseRadius},
		}
	}
	return r3.Box{}
}

// PieceBounds returns the box of a single piece in visualization space,
// with an extra offset added to its position.
func PieceBounds(md MeshDescriptor, offset r3.Vec) r3.Box {
	lb := LocalBounds(md.Geometry)
	t := md.Transform
	t.Position = r3.Add(t.Position, offset)

	out := emptyBox()
	for i := 0; i < 8; i++ {
		corner := lb.Min
		if i&1 != 0 {
			corner.X = lb.Max.X
		}
		if i&2 != 0 {
			corner.Y = lb.Max.Y
		}
		if i&4 != 0 {
			corner.Z = lb.Max.Z
		}
		out = expand(out, t.Apply(corner))
	}
	return out
}

// Bounds returns the box enclosing every piece of d.
func Bounds(d *Decomposition) r3.Box {
	return BoundsWithOffsets(d, nil)
}

// BoundsWithOffsets is Bounds with per-piece offsets added to each piece's
// position. Missing offsets count as zero.
func BoundsWithOffsets(d *Decomposition, offsets []r3.Vec) r3.Box {
	if d == nil || len(d.Pieces) == 0 {
		return r3.Box{}
	}
	out := emptyBox()
	for i, p := range d.Pieces {
		var off r3.Vec
		if i < len(offsets) {
			off = offsets[i]
		}
		pb := PieceBounds(p, off)
		out = expand(expand(out, pb.Min), pb.Max)
	}
	return out
}

// Centroid returns the center of Bounds(d).
func Centroid(d *Decomposition) r3.Vec {
	b := Bounds(d)
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

func emptyBox() r3.Box {
	inf := math.Inf(1)
	return r3.Box{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

func expand(b r3.Box, p r3.Vec) r3.Box {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	return b
}
