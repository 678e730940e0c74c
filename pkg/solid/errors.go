package solid

import "errors"

var (
	// ErrInvalidParameter is returned for a non-positive radius, an opacity
	// outside [0,1], a malformed color or a tessellation below 3 segments.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedPart is returned for a PartKind with no construction case.
	ErrUnsupportedPart = errors.New("unsupported part")
)
