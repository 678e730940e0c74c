package solid

import "gonum.org/v1/gonum/spatial/r3"

// Geometry is the kind-specific payload of a MeshDescriptor.
type Geometry interface {
	Kind() GeometryKind
	geometry() // restricts implementations to this package
}

// SpherePatchGeometry is a piece of a sphere surface bounded by two polar
// angles and two azimuth angles. Only full-azimuth patches are built.
type SpherePatchGeometry struct {
	Radius         float64 `json:"radius"`
	PhiStart       float64 `json:"phiStart"`  // polar angle from +Y
	PhiLength      float64 `json:"phiLength"` // PhiStart+PhiLength <= Pi
	AzimuthStart   float64 `json:"azimuthStart"`
	AzimuthLength  float64 `json:"azimuthLength"`
	WidthSegments  int     `json:"widthSegments"`
	HeightSegments int     `json:"heightSegments"`
}

func (SpherePatchGeometry) Kind() GeometryKind { return SpherePatch }
func (SpherePatchGeometry) geometry()          {}

// CircleDiskGeometry is a filled circle in the local XY plane facing +Z.
type CircleDiskGeometry struct {
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments"`
}

func (CircleDiskGeometry) Kind() GeometryKind { return CircleDisk }
func (CircleDiskGeometry) geometry()          {}

// ConeGeometry is a closed cone along local Y with its apex at +Height/2
// and its base at -Height/2.
type ConeGeometry struct {
	BaseRadius     float64 `json:"baseRadius"`
	Height         float64 `json:"height"`
	RadialSegments int     `json:"radialSegments"`
}

func (ConeGeometry) Kind() GeometryKind { return Cone }
func (ConeGeometry) geometry()          {}

// Transform places a piece relative to the visualization origin. Rotation
// holds Euler angles in radians, applied in XYZ order.
type Transform struct {
	Position r3.Vec
	Rotation r3.Vec
}

// MeshDescriptor is one drawable piece of a decomposition.
type MeshDescriptor struct {
	Name      string
	Geometry  Geometry
	Transform Transform
	Material  MaterialHint
}

// Kind reports the kind of the descriptor's geometry.
func (md MeshDescriptor) Kind() GeometryKind {
	return md.Geometry.Kind()
}

// Decomposition is the ordered set of pieces built for one part.
type Decomposition struct {
	Part   PartKind
	Radius float64
	Pieces []MeshDescriptor
}

// Len returns the number of pieces.
func (d *Decomposition) Len() int {
	return len(d.Pieces)
}

// Piece returns the piece with the given name, or false.
func (d *Decomposition) Piece(name string) (MeshDescriptor, bool) {
	for _, p := range d.Pieces {
		if p.Name == name {
			return p, true
		}
	}
	return MeshDescriptor{}, false
}

// Equal reports whether two decompositions are value-equal.
func (d *Decomposition) Equal(o *Decomposition) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Part != o.Part || d.Radius != o.Radius || len(d.Pieces) != len(o.Pieces) {
		return false
	}
	for i := range d.Pieces {
		if d.Pieces[i] != o.Pieces[i] {
			return false
		}
	}
	return true
}
