package solid

import (
	"fmt"
	"math"
)

// angleEpsilon absorbs rounding in phi sums such as Pi/3 + Pi/3 + Pi/3.
const angleEpsilon = 1e-9

// ValidationError describes one problem with a piece of a decomposition.
type ValidationError struct {
	Piece   int    // index into Pieces, -1 for decomposition-level findings
	Name    string // piece name, empty for decomposition-level findings
	Message string
}

func (e ValidationError) Error() string {
	if e.Piece < 0 {
		return e.Message
	}
	return fmt.Sprintf("piece %d (%s): %s", e.Piece, e.Name, e.Message)
}

// expectedPieces is the piece count each kind must produce.
var expectedPieces = map[PartKind]int{
	FullSphere:     1,
	Zone:           1,
	Layer:          3,
	Segment:        2,
	Sector:         3,
	SeparatedLayer: 3,
}

// Validate checks a decomposition for structural and geometric problems.
// An empty result means the decomposition is renderable. Validate never
// mutates d.
func Validate(d *Decomposition) []ValidationError {
	if d == nil {
		return []ValidationError{{Piece: -1, Message: "decomposition is nil"}}
	}

	var errs []ValidationError
	if want, ok := expectedPieces[d.Part]; !ok {
		errs = append(errs, ValidationError{Piece: -1, Message: fmt.Sprintf("unknown part kind %v", d.Part)})
	} else if len(d.Pieces) != want {
		errs = append(errs, ValidationError{
			Piece:   -1,
			Message: fmt.Sprintf("%v has %d pieces, want %d", d.Part, len(d.Pieces), want),
		})
	}

	seen := make(map[string]bool, len(d.Pieces))
	for i, p := range d.Pieces {
		fail := func(format string, args ...any) {
			errs = append(errs, ValidationError{Piece: i, Name: p.Name, Message: fmt.Sprintf(format, args...)})
		}
		if p.Name == "" {
			fail("piece has no name")
		} else if seen[p.Name] {
			fail("duplicate piece name")
		}
		seen[p.Name] = true

		switch g := p.Geometry.(type) {
		case SpherePatchGeometry:
			if g.Radius <= 0 {
				fail("patch radius is %.4f, must be positive", g.Radius)
			}
			if g.PhiStart < -angleEpsilon || g.PhiLength <= 0 || g.PhiStart+g.PhiLength > math.Pi+angleEpsilon {
				fail("polar span [%.4f, %.4f] outside [0, Pi]", g.PhiStart, g.PhiStart+g.PhiLength)
			}
			if g.WidthSegments < 3 || g.HeightSegments < 3 {
				fail("patch tessellation %dx%d below 3x3", g.WidthSegments, g.HeightSegments)
			}
		case CircleDiskGeometry:
			if g.Radius <= 0 {
				fail("disk radius is %.4f, must be positive", g.Radius)
			}
			if g.Segments < 3 {
				fail("disk has %d segments, need at least 3", g.Segments)
			}
		case ConeGeometry:
			if g.BaseRadius <= 0 || g.Height <= 0 {
				fail("cone base radius %.4f and height %.4f must be positive", g.BaseRadius, g.Height)
			}
			if g.RadialSegments < 3 {
				fail("cone has %d radial segments, need at least 3", g.RadialSegments)
			}
		case nil:
			fail("piece has no geometry")
		}
	}
	return errs
}
