package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/orbis/pkg/kernel"
	"github.com/chazu/orbis/pkg/kernel/sdfx"
	"github.com/chazu/orbis/pkg/solid"
	"github.com/chazu/orbis/pkg/tessellate"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-4

func buildPart(t *testing.T, kind solid.PartKind) *solid.Decomposition {
	t.Helper()
	p := solid.DefaultParams()
	p.Radius = 2
	d, err := solid.Builder{Segments: 16}.Build(p, kind)
	if err != nil {
		t.Fatalf("Build(%v) failed: %v", kind, err)
	}
	return d
}

// checkArrays verifies the flat buffers agree with each other.
func checkArrays(t *testing.T, m *kernel.Mesh) {
	t.Helper()
	if m.IsEmpty() {
		t.Fatalf("mesh %q is empty", m.Piece)
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Fatalf("mesh %q: vertices %d != normals %d", m.Piece, len(m.Vertices), len(m.Normals))
	}
	if len(m.Indices)%3 != 0 || m.TriangleCount() == 0 {
		t.Fatalf("mesh %q: bad index count %d", m.Piece, len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= m.VertexCount() {
			t.Fatalf("mesh %q: index %d out of range", m.Piece, idx)
		}
	}
}

func vertex(m *kernel.Mesh, i int) r3.Vec {
	return r3.Vec{X: float64(m.Vertices[3*i]), Y: float64(m.Vertices[3*i+1]), Z: float64(m.Vertices[3*i+2])}
}

func normal(m *kernel.Mesh, i int) r3.Vec {
	return r3.Vec{X: float64(m.Normals[3*i]), Y: float64(m.Normals[3*i+1]), Z: float64(m.Normals[3*i+2])}
}

func TestDecompositionOneMeshPerPiece(t *testing.T) {
	for _, kind := range solid.PartKinds {
		t.Run(kind.String(), func(t *testing.T) {
			d := buildPart(t, kind)
			meshes, err := tessellate.Decomposition(d)
			if err != nil {
				t.Fatalf("Decomposition failed: %v", err)
			}
			if len(meshes) != d.Len() {
				t.Fatalf("expected %d meshes, got %d", d.Len(), len(meshes))
			}
			for i, m := range meshes {
				checkArrays(t, m)
				if m.Piece != d.Pieces[i].Name {
					t.Errorf("mesh %d named %q, want %q", i, m.Piece, d.Pieces[i].Name)
				}
			}
		})
	}
}

func TestDecompositionNil(t *testing.T) {
	meshes, err := tessellate.Decomposition(nil)
	if err != nil || meshes != nil {
		t.Errorf("expected nil, nil; got %v, %v", meshes, err)
	}
}

func TestSphereVerticesOnSurface(t *testing.T) {
	d := buildPart(t, solid.FullSphere)
	m, err := tessellate.Descriptor(d.Pieces[0])
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	for i := 0; i < m.VertexCount(); i++ {
		p := vertex(m, i)
		if math.Abs(r3.Norm(p)-2) > tol {
			t.Fatalf("vertex %d at distance %v, want 2", i, r3.Norm(p))
		}
		if r3.Dot(normal(m, i), p) <= 0 {
			t.Fatalf("vertex %d normal points inward", i)
		}
	}
}

func TestZoneBandRange(t *testing.T) {
	d := buildPart(t, solid.Zone)
	m, _ := tessellate.Descriptor(d.Pieces[0])
	b := m.Bounds()
	if math.Abs(b.Min.Y+1) > tol || math.Abs(b.Max.Y-1) > tol {
		t.Errorf("zone spans y [%v, %v], want [-1, 1]", b.Min.Y, b.Max.Y)
	}
}

func TestLayerCapsFaceOutward(t *testing.T) {
	d := buildPart(t, solid.Layer)
	meshes, err := tessellate.Decomposition(d)
	if err != nil {
		t.Fatalf("Decomposition failed: %v", err)
	}
	tests := []struct {
		piece string
		y     float64
		ny    float64
	}{
		{solid.PieceTopCap, 1, 1},
		{solid.PieceBottomCap, -1, -1},
	}
	for _, tt := range tests {
		var m *kernel.Mesh
		for _, mm := range meshes {
			if mm.Piece == tt.piece {
				m = mm
			}
		}
		if m == nil {
			t.Fatalf("missing %q", tt.piece)
		}
		for i := 0; i < m.VertexCount(); i++ {
			if math.Abs(vertex(m, i).Y-tt.y) > tol {
				t.Fatalf("%s vertex %d at y %v, want %v", tt.piece, i, vertex(m, i).Y, tt.y)
			}
			if math.Abs(normal(m, i).Y-tt.ny) > tol {
				t.Fatalf("%s normal %v, want y %v", tt.piece, normal(m, i), tt.ny)
			}
		}
		// winding agrees with the normal
		a, b, c := vertex(m, int(m.Indices[0])), vertex(m, int(m.Indices[1])), vertex(m, int(m.Indices[2]))
		face := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if face.Y*tt.ny <= 0 {
			t.Errorf("%s first triangle winds against its normal", tt.piece)
		}
		rb := 2 * math.Sin(math.Pi/3)
		if got := m.Bounds().Max.X; math.Abs(got-rb) > tol {
			t.Errorf("%s radius %v, want %v", tt.piece, got, rb)
		}
	}
}

func TestSectorConePlacement(t *testing.T) {
	d := buildPart(t, solid.Sector)
	cone, ok := d.Piece(solid.PieceCone)
	if !ok {
		t.Fatal("sector has no cone")
	}
	m, err := tessellate.Descriptor(cone)
	if err != nil {
		t.Fatalf("Descriptor failed: %v", err)
	}
	checkArrays(t, m)
	b := m.Bounds()
	// apex at the shifted center, base on the cap circle
	if math.Abs(b.Min.Y+1) > tol || math.Abs(b.Max.Y) > tol {
		t.Errorf("cone spans y [%v, %v], want [-1, 0]", b.Min.Y, b.Max.Y)
	}
	// the single vertex at the bottom is the apex
	for i := 0; i < m.VertexCount(); i++ {
		p := vertex(m, i)
		if math.Abs(p.Y+1) < tol && math.Hypot(p.X, p.Z) > tol {
			t.Fatalf("vertex %v at apex height is off axis", p)
		}
	}
}

func TestDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		md   solid.MeshDescriptor
	}{
		{"few disk segments", solid.MeshDescriptor{Name: "d", Geometry: solid.CircleDiskGeometry{Radius: 1, Segments: 2}}},
		{"flat cone", solid.MeshDescriptor{Name: "c", Geometry: solid.ConeGeometry{BaseRadius: 1, Height: 0, RadialSegments: 8}}},
		{"few patch segments", solid.MeshDescriptor{Name: "p", Geometry: solid.SpherePatchGeometry{Radius: 1, PhiLength: 1, AzimuthLength: 1, WidthSegments: 2, HeightSegments: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tessellate.Descriptor(tt.md); !errors.Is(err, solid.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
	if _, err := tessellate.Descriptor(solid.MeshDescriptor{Name: "none"}); err == nil {
		t.Error("expected error for missing geometry")
	}
}

func TestSolidsSeparatedOffsets(t *testing.T) {
	k := sdfx.NewWithCells(32)
	d := buildPart(t, solid.SeparatedLayer)
	offsets := []r3.Vec{{}, {Y: 1.6}, {Y: -1.6}}
	meshes, err := tessellate.Solids(k, d, offsets, 0, false)
	if err != nil {
		t.Fatalf("Solids failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}
	cellTol := 4 * 1.01 * 2 * 2 / 32.0
	if top := meshes[1].Bounds().Max.Y; math.Abs(top-3.6) > cellTol {
		t.Errorf("top cap reaches y %v, want 3.6", top)
	}
	if bottom := meshes[2].Bounds().Min.Y; math.Abs(bottom+3.6) > cellTol {
		t.Errorf("bottom cap reaches y %v, want -3.6", bottom)
	}
}

func TestSolidsClipped(t *testing.T) {
	k := sdfx.NewWithCells(32)
	d := buildPart(t, solid.FullSphere)
	meshes, err := tessellate.Solids(k, d, nil, 0.5, true)
	if err != nil {
		t.Fatalf("Solids failed: %v", err)
	}
	if top := meshes[0].Bounds().Max.Y; top > 0.5+4*1.01*2/32.0 {
		t.Errorf("clipped sphere reaches y %v", top)
	}
}

func TestSolidsZone(t *testing.T) {
	k := sdfx.NewWithCells(16)
	if _, err := tessellate.Solids(k, buildPart(t, solid.Zone), nil, 0, false); !errors.Is(err, kernel.ErrSurfaceOnly) {
		t.Errorf("expected ErrSurfaceOnly, got %v", err)
	}
}
