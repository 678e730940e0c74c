// Package tessellate turns mesh descriptors into triangle meshes for the
// renderer. Surfaces are generated analytically, one mesh per piece, with
// smooth vertex normals and outward winding.
package tessellate

import (
	"fmt"

	"github.com/chazu/orbis/pkg/kernel"
	"github.com/chazu/orbis/pkg/solid"
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// meshBuilder accumulates flat vertex, normal and index buffers.
type meshBuilder struct {
	pos   []float32
	norms []float32
	idxs  []uint32
}

// add appends a vertex and returns its index.
func (mb *meshBuilder) add(px, py, pz, nx, ny, nz float32) uint32 {
	mb.pos = append(mb.pos, px, py, pz)
	mb.norms = append(mb.norms, nx, ny, nz)
	return uint32(len(mb.pos)/3 - 1)
}

func (mb *meshBuilder) tri(a, b, c uint32) {
	mb.idxs = append(mb.idxs, a, b, c)
}

// spherePatch follows the usual sphere parameterization: phi is the polar
// angle from +Y and the azimuth starts at -X.
func (mb *meshBuilder) spherePatch(g solid.SpherePatchGeometry) {
	radius := float32(g.Radius)
	phiSt, phiLen := float32(g.PhiStart), float32(g.PhiLength)
	azSt, azLen := float32(g.AzimuthStart), float32(g.AzimuthLength)
	phiEnd := phiSt + phiLen

	rows := make([][]uint32, 0, g.HeightSegments+1)
	for y := 0; y <= g.HeightSegments; y++ {
		v := float32(y) / float32(g.HeightSegments)
		sinPhi, cosPhi := math32.Sincos(phiSt + v*phiLen)
		row := make([]uint32, 0, g.WidthSegments+1)
		for x := 0; x <= g.WidthSegments; x++ {
			u := float32(x) / float32(g.WidthSegments)
			sinAz, cosAz := math32.Sincos(azSt + u*azLen)
			nx := -cosAz * sinPhi
			ny := cosPhi
			nz := sinAz * sinPhi
			row = append(row, mb.add(radius*nx, radius*ny, radius*nz, nx, ny, nz))
		}
		rows = append(rows, row)
	}

	for y := 0; y < g.HeightSegments; y++ {
		for x := 0; x < g.WidthSegments; x++ {
			v1 := rows[y][x+1]
			v2 := rows[y][x]
			v3 := rows[y+1][x]
			v4 := rows[y+1][x+1]
			// skip the degenerate triangles at the poles
			if y != 0 || phiSt > 0 {
				mb.tri(v1, v2, v4)
			}
			if y != g.HeightSegments-1 || phiEnd < math32.Pi {
				mb.tri(v2, v3, v4)
			}
		}
	}
}

// disk is a filled circle in the XY plane at height z, facing +Z, or -Z
// when flip is set.
func (mb *meshBuilder) disk(radius float32, segs int, z float32, flip bool) {
	nz := float32(1)
	if flip {
		nz = -1
	}
	center := mb.add(0, 0, z, 0, 0, nz)
	first := uint32(0)
	for i := 0; i <= segs; i++ {
		sin, cos := math32.Sincos(float32(i) / float32(segs) * 2 * math32.Pi)
		idx := mb.add(radius*cos, radius*sin, z, 0, 0, nz)
		if i == 0 {
			first = idx
		}
	}
	for i := 1; i <= segs; i++ {
		a, b := first+uint32(i-1), first+uint32(i)
		if flip {
			mb.tri(center, b, a)
		} else {
			mb.tri(center, a, b)
		}
	}
}

// cone has its apex at +height/2 on the Y axis and a closed base at
// -height/2.
func (mb *meshBuilder) cone(g solid.ConeGeometry) {
	height := float32(g.Height)
	radius := float32(g.BaseRadius)
	hHt := height / 2
	segs := g.RadialSegments
	tanTheta := radius / height

	// side: row 0 is the apex ring, row 1 the base ring
	var rows [2][]uint32
	for y := 0; y <= 1; y++ {
		r := float32(y) * radius
		py := hHt - float32(y)*height
		for x := 0; x <= segs; x++ {
			u := float32(x) / float32(segs)
			sin, cos := math32.Sincos(u * 2 * math32.Pi)
			nx, ny, nz := -cos, tanTheta, sin
			l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
			rows[y] = append(rows[y], mb.add(-r*cos, py, r*sin, nx/l, ny/l, nz/l))
		}
	}
	for x := 0; x < segs; x++ {
		mb.tri(rows[0][x], rows[1][x], rows[1][x+1])
	}

	// base cap facing -Y
	center := mb.add(0, -hHt, 0, 0, -1, 0)
	ring := make([]uint32, 0, segs+1)
	for x := 0; x <= segs; x++ {
		u := float32(x) / float32(segs)
		sin, cos := math32.Sincos(u * 2 * math32.Pi)
		ring = append(ring, mb.add(-radius*cos, -hHt, radius*sin, 0, -1, 0))
	}
	for x := 0; x < segs; x++ {
		mb.tri(center, ring[x+1], ring[x])
	}
}

// transform applies t to every vertex and normal in place.
func (mb *meshBuilder) transform(t solid.Transform) {
	if t == (solid.Transform{}) {
		return
	}
	for i := 0; i+2 < len(mb.pos); i += 3 {
		p := t.Apply(r3.Vec{X: float64(mb.pos[i]), Y: float64(mb.pos[i+1]), Z: float64(mb.pos[i+2])})
		n := t.Normal(r3.Vec{X: float64(mb.norms[i]), Y: float64(mb.norms[i+1]), Z: float64(mb.norms[i+2])})
		mb.pos[i], mb.pos[i+1], mb.pos[i+2] = float32(p.X), float32(p.Y), float32(p.Z)
		mb.norms[i], mb.norms[i+1], mb.norms[i+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}
}

func (mb *meshBuilder) mesh(name string) *kernel.Mesh {
	return &kernel.Mesh{Vertices: mb.pos, Normals: mb.norms, Indices: mb.idxs, Piece: name}
}

// Descriptor tessellates one piece with its transform applied, so the
// mesh is placed where the piece sits in the part.
func Descriptor(md solid.MeshDescriptor) (*kernel.Mesh, error) {
	mb := &meshBuilder{}
	switch g := md.Geometry.(type) {
	case solid.SpherePatchGeometry:
		if g.WidthSegments < 3 || g.HeightSegments < 1 {
			return nil, fmt.Errorf("tessellate: %w: piece %q has %dx%d segments",
				solid.ErrInvalidParameter, md.Name, g.WidthSegments, g.HeightSegments)
		}
		mb.spherePatch(g)
	case solid.CircleDiskGeometry:
		if g.Segments < 3 {
			return nil, fmt.Errorf("tessellate: %w: piece %q has %d segments",
				solid.ErrInvalidParameter, md.Name, g.Segments)
		}
		mb.disk(float32(g.Radius), g.Segments, 0, false)
	case solid.ConeGeometry:
		if g.RadialSegments < 3 || g.Height <= 0 {
			return nil, fmt.Errorf("tessellate: %w: piece %q cone %vx%v with %d segments",
				solid.ErrInvalidParameter, md.Name, g.Height, g.BaseRadius, g.RadialSegments)
		}
		mb.cone(g)
	default:
		return nil, fmt.Errorf("tessellate: piece %q has unsupported geometry %T", md.Name, md.Geometry)
	}
	mb.transform(md.Transform)
	return mb.mesh(md.Name), nil
}

// Decomposition tessellates every piece of d in order. The tessellator is
// read-only and never mutates the decomposition.
func Decomposition(d *solid.Decomposition) ([]*kernel.Mesh, error) {
	if d == nil {
		return nil, nil
	}
	meshes := make([]*kernel.Mesh, 0, d.Len())
	for _, md := range d.Pieces {
		m, err := Descriptor(md)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Solids meshes the closed bodies of d with k, each moved by the offset of
// the piece it follows and cut by clip when clip.Enabled is set.
func Solids(k kernel.Kernel, d *solid.Decomposition, offsets []r3.Vec, clipAt float64, clip bool) ([]*kernel.Mesh, error) {
	bodies, err := kernel.PartSolids(k, d)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	meshes := make([]*kernel.Mesh, 0, len(bodies))
	for _, b := range bodies {
		s := b.Solid
		if b.Piece < len(offsets) && offsets[b.Piece] != (r3.Vec{}) {
			s = k.Translate(s, offsets[b.Piece])
		}
		if clip {
			s = k.ClipBelow(s, clipAt)
		}
		m, err := k.ToMesh(s)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %q: %w", b.Name, err)
		}
		m.Piece = b.Name
		meshes = append(meshes, m)
	}
	return meshes, nil
}
