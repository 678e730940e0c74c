//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold gives
// exact polygonal booleans, so sliced solids have flat cut faces instead
// of the marching cubes staircase.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/orbis/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() r3.Box {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	return r3.Box{
		Min: r3.Vec{
			X: float64(C.manifold_box_min_x(bbox)),
			Y: float64(C.manifold_box_min_y(bbox)),
			Z: float64(C.manifold_box_min_z(bbox)),
		},
		Max: r3.Vec{
			X: float64(C.manifold_box_max_x(bbox)),
			Y: float64(C.manifold_box_max_y(bbox)),
			Z: float64(C.manifold_box_max_z(bbox)),
		},
	}
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Solid) *C.ManifoldManifold {
	return s.(*manifoldSolid).ptr
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
// Manifold has no preferred up axis, so it works in scene coordinates.
type ManifoldKernel struct {
	segments int
}

// New creates a new ManifoldKernel with DefaultSegments around each
// curved surface.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{segments: DefaultSegments}, nil
}

// Sphere creates a sphere centered at the origin.
func (k *ManifoldKernel) Sphere(radius float64) (kernel.Solid, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("manifold: sphere: radius %v must be positive", radius)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_sphere(alloc, C.double(radius), C.int(k.segments))
	return newSolid(ptr), nil
}

// Slab creates a box spanning [bottom, top] along Y and [-halfWidth,
// halfWidth] across it.
func (k *ManifoldKernel) Slab(bottom, top, halfWidth float64) (kernel.Solid, error) {
	if top <= bottom {
		return nil, fmt.Errorf("manifold: slab: top %v not above bottom %v", top, bottom)
	}
	if !(halfWidth > 0) {
		return nil, fmt.Errorf("manifold: slab: half width %v must be positive", halfWidth)
	}
	alloc := C.manifold_alloc_manifold()
	box := C.manifold_cube(alloc,
		C.double(2*halfWidth), C.double(top-bottom), C.double(2*halfWidth),
		C.int(1), // center=true
	)
	defer C.manifold_delete_manifold(box)

	alloc = C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, box, 0, C.double((top+bottom)/2), 0)
	return newSolid(ptr), nil
}

// Cone creates a frustum centered at the origin with bottomRadius at
// -height/2 and topRadius at +height/2.
func (k *ManifoldKernel) Cone(height, bottomRadius, topRadius float64) (kernel.Solid, error) {
	if !(height > 0) || bottomRadius < 0 || topRadius < 0 || bottomRadius+topRadius == 0 {
		return nil, fmt.Errorf("manifold: cone: bad dimensions h=%v r0=%v r1=%v", height, bottomRadius, topRadius)
	}
	alloc := C.manifold_alloc_manifold()
	cyl := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(bottomRadius), // radius_low
		C.double(topRadius),    // radius_high
		C.int(k.segments),
		C.int(1), // center=true
	)
	defer C.manifold_delete_manifold(cyl)

	// Manifold extrudes along Z; -90 degrees about X takes +Z to +Y.
	alloc = C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, cyl, -90, 0, 0)
	return newSolid(ptr), nil
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_union(alloc, unwrap(a), unwrap(b)))
}

// Intersection returns the boolean intersection of two solids.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_intersection(alloc, unwrap(a), unwrap(b)))
}

// Translate moves the solid by v.
func (k *ManifoldKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, unwrap(s),
		C.double(v.X), C.double(v.Y), C.double(v.Z),
	)
	return newSolid(ptr)
}

// ClipBelow keeps the part of s at or below height y. Manifold keeps the
// side of the plane its normal points into, here -Y.
func (k *ManifoldKernel) ClipBelow(s kernel.Solid, y float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_trim_by_plane(alloc, unwrap(s), 0, -1, 0, C.double(-y))
	return newSolid(ptr)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Vertex positions and normals are interleaved in MeshGL; this
// method separates them into the kernel.Mesh flat-array layout.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, unwrap(s))
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// The first 3 properties are always position; normals follow at 3..5
	// when present.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}
	if !hasNormals {
		normals = smoothNormals(vertices, indices)
	}

	mesh := &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}
	return mesh, nil
}

// smoothNormals averages the face normals of the triangles around each
// vertex.
func smoothNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	at := func(i uint32) r3.Vec {
		return r3.Vec{X: float64(vertices[i*3]), Y: float64(vertices[i*3+1]), Z: float64(vertices[i*3+2])}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := at(i0)
		n := r3.Cross(r3.Sub(at(i1), a), r3.Sub(at(i2), a))
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += float32(n.X)
			normals[idx*3+1] += float32(n.Y)
			normals[idx*3+2] += float32(n.Z)
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		nx, ny, nz := float64(normals[i]), float64(normals[i+1]), float64(normals[i+2])
		if l := math.Sqrt(nx*nx + ny*ny + nz*nz); l > 1e-12 {
			normals[i] = float32(nx / l)
			normals[i+1] = float32(ny / l)
			normals[i+2] = float32(nz / l)
		}
	}
	return normals
}
