package separation

// Easing is an interpolation curve over normalized time.
type Easing int

const (
	Linear Easing = iota
	EaseOutCubic
)

func (e Easing) String() string {
	switch e {
	case Linear:
		return "linear"
	case EaseOutCubic:
		return "cubic-out"
	default:
		return "unknown"
	}
}

// Apply maps t in [0,1] to eased progress. t is clamped first.
func (e Easing) Apply(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	switch e {
	case Linear:
		return t
	case EaseOutCubic:
		u := 1 - t
		return 1 - u*u*u
	}
	return t
}
