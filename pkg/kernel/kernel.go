// Package kernel defines the abstract solid kernel interface. The sphere
// pieces are surfaces built analytically by pkg/tessellate; the kernel
// builds the matching closed solids so a slicing plane can be drawn as a
// filled cross-section instead of an open shell.
//
// All coordinates are scene coordinates: Y is the polar axis.
package kernel

import "gonum.org/v1/gonum/spatial/r3"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box in scene coordinates.
	BoundingBox() r3.Box
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Sphere(radius float64) (Solid, error)
	Slab(bottom, top, halfWidth float64) (Solid, error) // y in [bottom, top], x and z in [-halfWidth, halfWidth]
	Cone(height, bottomRadius, topRadius float64) (Solid, error) // centered, axis along Y

	// Boolean operations
	Union(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, v r3.Vec) Solid
	ClipBelow(s Solid, y float64) Solid // keeps the part at or below y

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
