package solid

import (
	"fmt"
	"strings"
)

// PartKind enumerates the parts a sphere can be decomposed into.
type PartKind int

const (
	FullSphere     PartKind = iota // the whole sphere
	Zone                           // band between two parallel planes, surface only
	Layer                          // zone closed by its two boundary disks
	Segment                        // spherical cap closed by its base disk
	Sector                         // segment plus the cone to the center
	SeparatedLayer                 // band and two polar caps, pulled apart by "separate"
)

// PartKinds lists every kind in declaration order.
var PartKinds = []PartKind{FullSphere, Zone, Layer, Segment, Sector, SeparatedLayer}

func (k PartKind) String() string {
	switch k {
	case FullSphere:
		return "sphere"
	case Zone:
		return "zone"
	case Layer:
		return "layer"
	case Segment:
		return "segment"
	case Sector:
		return "sector"
	case SeparatedLayer:
		return "separated-layer"
	default:
		return fmt.Sprintf("PartKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k PartKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a name accepted by ParsePartKind.
func (k *PartKind) UnmarshalText(b []byte) error {
	v, err := ParsePartKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParsePartKind is the inverse of String. Matching is case-insensitive and
// accepts "full-sphere" as an alias for "sphere".
func ParsePartKind(name string) (PartKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sphere", "full-sphere":
		return FullSphere, nil
	case "zone":
		return Zone, nil
	case "layer":
		return Layer, nil
	case "segment":
		return Segment, nil
	case "sector":
		return Sector, nil
	case "separated-layer":
		return SeparatedLayer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedPart, name)
}

// GeometryKind distinguishes the three primitive geometries a descriptor
// can carry.
type GeometryKind int

const (
	SpherePatch GeometryKind = iota
	CircleDisk
	Cone
)

func (k GeometryKind) String() string {
	switch k {
	case SpherePatch:
		return "sphere-patch"
	case CircleDisk:
		return "circle-disk"
	case Cone:
		return "cone"
	default:
		return "unknown"
	}
}

// MaterialHint tells the renderer which family of material a piece uses.
type MaterialHint int

const (
	SolidDoubleSided         MaterialHint = iota // closed surfaces seen from both sides
	SolidFrontSided                              // flat caps and cones
	TranslucentWireframeZone                     // the zone band: fixed 0.3 opacity wireframe
)

func (h MaterialHint) String() string {
	switch h {
	case SolidDoubleSided:
		return "solid-double-sided"
	case SolidFrontSided:
		return "solid-front-sided"
	case TranslucentWireframeZone:
		return "translucent-wireframe-zone"
	default:
		return "unknown"
	}
}
