package solid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultSegments is the tessellation density used by Build.
const DefaultSegments = 64

const (
	// zone and layer band: phi in [Pi/3, 2Pi/3]
	bandStart  = math.Pi / 3
	bandLength = math.Pi / 3

	// segment and sector cap: phi in [0, Pi/3]
	capLength = math.Pi / 3

	// cap half angle of the separable layer
	separatedCap = math.Pi / 3.5

	// centering shifts along Y, as fractions of the radius
	segmentShift = -0.75
	sectorShift  = -0.5
)

// Piece names.
const (
	PieceSphere    = "sphere"
	PieceZone      = "zone"
	PieceBand      = "band"
	PieceTopCap    = "top-cap"
	PieceBottomCap = "bottom-cap"
	PieceCap       = "cap"
	PieceBase      = "base"
	PieceCone      = "cone"
)

// Builder builds decompositions with a configurable tessellation. The zero
// value uses DefaultSegments.
type Builder struct {
	Segments int
}

// Build builds part with the default tessellation.
func Build(p Params, part PartKind) (*Decomposition, error) {
	return Builder{}.Build(p, part)
}

func (b Builder) segments() int {
	if b.Segments == 0 {
		return DefaultSegments
	}
	return b.Segments
}

// Build returns the pieces of part for a sphere of radius p.Radius. Only the
// radius is validated; color, opacity and wireframe are resolved later by
// ResolveMaterial.
func (b Builder) Build(p Params, part PartKind) (*Decomposition, error) {
	if err := validateRadius(p.Radius); err != nil {
		return nil, err
	}
	segs := b.segments()
	if segs < 3 {
		return nil, fmt.Errorf("%w: tessellation needs at least 3 segments, got %d", ErrInvalidParameter, segs)
	}

	c := construction{r: p.Radius, segs: segs}
	var pieces []MeshDescriptor
	switch part {
	case FullSphere:
		pieces = []MeshDescriptor{c.patch(PieceSphere, 0, math.Pi, SolidDoubleSided)}
	case Zone:
		pieces = []MeshDescriptor{c.patch(PieceZone, bandStart, bandLength, TranslucentWireframeZone)}
	case Layer:
		pieces = c.layer()
	case Segment:
		pieces = c.segment()
	case Sector:
		pieces = c.sector()
	case SeparatedLayer:
		pieces = c.separatedLayer()
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPart, part)
	}

	return &Decomposition{Part: part, Radius: p.Radius, Pieces: pieces}, nil
}

// construction holds the per-build constants shared by the part cases.
type construction struct {
	r    float64
	segs int
}

func (c construction) patch(name string, phiStart, phiLength float64, hint MaterialHint) MeshDescriptor {
	return MeshDescriptor{
		Name: name,
		Geometry: SpherePatchGeometry{
			Radius:         c.r,
			PhiStart:       phiStart,
			PhiLength:      phiLength,
			AzimuthStart:   0,
			AzimuthLength:  2 * math.Pi,
			WidthSegments:  c.segs,
			HeightSegments: c.segs,
		},
		Material: hint,
	}
}

// disk places the boundary circle at polar angle phi. A disk faces +Z
// locally; rotX = -Pi/2 turns it to face +Y and rotX = +Pi/2 to face -Y.
func (c construction) disk(name string, phi, shift, rotX float64) MeshDescriptor {
	return MeshDescriptor{
		Name: name,
		Geometry: CircleDiskGeometry{
			Radius:   c.r * math.Sin(phi),
			Segments: c.segs,
		},
		Transform: Transform{
			Position: r3.Vec{Y: c.r*math.Cos(phi) + shift},
			Rotation: r3.Vec{X: rotX},
		},
		Material: SolidFrontSided,
	}
}

func (c construction) layer() []MeshDescriptor {
	bottom := bandStart + bandLength
	return []MeshDescriptor{
		c.patch(PieceBand, bandStart, bandLength, SolidDoubleSided),
		c.disk(PieceTopCap, bandStart, 0, -math.Pi/2),
		c.disk(PieceBottomCap, bottom, 0, math.Pi/2),
	}
}

func (c construction) segment() []MeshDescriptor {
	shift := segmentShift * c.r
	dome := c.patch(PieceCap, 0, capLength, SolidDoubleSided)
	dome.Transform.Position = r3.Vec{Y: shift}
	return []MeshDescriptor{
		dome,
		c.disk(PieceBase, capLength, shift, math.Pi/2),
	}
}

// sector is the segment with its base joined to the center by a cone. The
// default cone points its apex up, so it is flipped about X and raised by
// half its height to put the apex on the (shifted) center and its base on
// the cap's base circle.
func (c construction) sector() []MeshDescriptor {
	shift := sectorShift * c.r
	dome := c.patch(PieceCap, 0, capLength, SolidDoubleSided)
	dome.Transform.Position = r3.Vec{Y: shift}

	h := c.r * math.Cos(capLength)
	cone := MeshDescriptor{
		Name: PieceCone,
		Geometry: ConeGeometry{
			BaseRadius:     c.r * math.Sin(capLength),
			Height:         h,
			RadialSegments: c.segs,
		},
		Transform: Transform{
			Position: r3.Vec{Y: h/2 + shift},
			Rotation: r3.Vec{X: math.Pi},
		},
		Material: SolidFrontSided,
	}
	return []MeshDescriptor{
		dome,
		c.disk(PieceBase, capLength, shift, math.Pi/2),
		cone,
	}
}

func (c construction) separatedLayer() []MeshDescriptor {
	return []MeshDescriptor{
		c.patch(PieceBand, separatedCap, math.Pi-2*separatedCap, SolidDoubleSided),
		c.patch(PieceTopCap, 0, separatedCap, SolidDoubleSided),
		c.patch(PieceBottomCap, math.Pi-separatedCap, separatedCap, SolidDoubleSided),
	}
}
