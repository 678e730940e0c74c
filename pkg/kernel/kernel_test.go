package kernel

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     r3.Box
	}{
		{"empty", nil, r3.Box{}},
		{"one vertex", []float32{1, 2, 3}, r3.Box{Min: r3.Vec{X: 1, Y: 2, Z: 3}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}},
		{"spread", []float32{-1, 0, 2, 3, -4, 0.5}, r3.Box{Min: r3.Vec{X: -1, Y: -4, Z: 0.5}, Max: r3.Vec{X: 3, Y: 0, Z: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	bb r3.Box
}

func (s *stubSolid) BoundingBox() r3.Box { return s.bb }

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Sphere(r float64) (Solid, error) {
	return &stubSolid{bb: r3.Box{Min: r3.Vec{X: -r, Y: -r, Z: -r}, Max: r3.Vec{X: r, Y: r, Z: r}}}, nil
}

func (k *stubKernel) Slab(bottom, top, w float64) (Solid, error) {
	return &stubSolid{bb: r3.Box{Min: r3.Vec{X: -w, Y: bottom, Z: -w}, Max: r3.Vec{X: w, Y: top, Z: w}}}, nil
}

func (k *stubKernel) Cone(h, r0, r1 float64) (Solid, error) {
	r := max(r0, r1)
	return &stubSolid{bb: r3.Box{Min: r3.Vec{X: -r, Y: -h / 2, Z: -r}, Max: r3.Vec{X: r, Y: h / 2, Z: r}}}, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _ r3.Vec) Solid   { return s }
func (k *stubKernel) ClipBelow(s Solid, _ float64) Solid { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelSlabBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Slab(-1, 2, 3)
	if err != nil {
		t.Fatalf("Slab() error = %v", err)
	}
	bb := s.BoundingBox()
	if bb.Min != (r3.Vec{X: -3, Y: -1, Z: -3}) {
		t.Errorf("Slab min = %v, want {-3 -1 -3}", bb.Min)
	}
	if bb.Max != (r3.Vec{X: 3, Y: 2, Z: 3}) {
		t.Errorf("Slab max = %v, want {3 2 3}", bb.Max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, _ := k.Sphere(1)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
