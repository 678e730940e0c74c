package solid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Params are the caller-owned sphere settings passed into every build.
type Params struct {
	Radius    float64 `json:"radius" yaml:"radius"`
	Color     string  `json:"color" yaml:"color"` // "#rrggbb"
	Opacity   float64 `json:"opacity" yaml:"opacity"`
	Wireframe bool    `json:"wireframe" yaml:"wireframe"`
}

// DefaultParams returns the settings the viewer starts from and resets to.
func DefaultParams() Params {
	return Params{
		Radius:    1.5,
		Color:     "#00d4ff",
		Opacity:   1,
		Wireframe: false,
	}
}

// Validate checks every field. Build only needs a valid radius; the other
// fields are checked by callers that accept user input.
func (p Params) Validate() error {
	if err := validateRadius(p.Radius); err != nil {
		return err
	}
	if math.IsNaN(p.Opacity) || p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside [0,1]", ErrInvalidParameter, p.Opacity)
	}
	if _, err := ParseColor(p.Color); err != nil {
		return err
	}
	return nil
}

func validateRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidParameter, r)
	}
	return nil
}

// RGB is a color with channels in [0,1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ParseColor parses "#rrggbb" (the leading '#' is optional).
func ParseColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidParameter, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: color %q: %v", ErrInvalidParameter, s, err)
	}
	return RGB{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}
