// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// sdfx models with Z up. Solids are built in that frame with the scene's
// polar axis on Z and mapped back on output: scene (x, y, z) is sdfx
// (x, -z, y). The mapping is a proper rotation, so winding is kept.
package sdfx

import (
	"fmt"

	"github.com/chazu/orbis/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() r3.Box {
	bb := s.s.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Z, Z: -bb.Max.Y},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Z, Z: -bb.Min.Y},
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel meshing at the given number of cells along
// the longest bounding box axis. Values below 8 are raised to 8.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{cells: cells}
}

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int { return k.cells }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// toSdf maps a scene vector into the sdfx frame.
func toSdf(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: -v.Z, Z: v.Y}
}

// Sphere creates a sphere centered at the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

// Slab creates a box spanning [bottom, top] along the polar axis and
// [-halfWidth, halfWidth] across it.
func (k *SdfxKernel) Slab(bottom, top, halfWidth float64) (kernel.Solid, error) {
	if top <= bottom {
		return nil, fmt.Errorf("sdfx: slab: top %v not above bottom %v", top, bottom)
	}
	s, err := sdf.Box3D(v3.Vec{X: 2 * halfWidth, Y: 2 * halfWidth, Z: top - bottom}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: slab: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{Z: (top + bottom) / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cone creates a frustum centered at the origin, bottomRadius at -height/2
// and topRadius at +height/2. A zero radius gives a pointed cone.
func (k *SdfxKernel) Cone(height, bottomRadius, topRadius float64) (kernel.Solid, error) {
	s, err := sdf.Cone3D(height, bottomRadius, topRadius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cone: %w", err)
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(toSdf(v))))
}

// ClipBelow cuts a solid with the plane at height y, keeping what lies at
// or below it.
func (k *SdfxKernel) ClipBelow(s kernel.Solid, y float64) kernel.Solid {
	return wrap(sdf.Cut3D(unwrap(s), v3.Vec{Z: y}, v3.Vec{Z: -1}))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Face normal, mapped like the vertices.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Z)
		nz := float32(-n.Y)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Z), float32(-v.Y))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
