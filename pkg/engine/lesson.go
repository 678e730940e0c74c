package engine

import (
	"fmt"

	"github.com/chazu/orbis/pkg/scene"
	"github.com/chazu/orbis/pkg/separation"
	"github.com/chazu/orbis/pkg/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxSteps bounds the number of steps one lesson may record.
const MaxSteps = 1000

// StepKind identifies what a lesson step does.
type StepKind int

const (
	StepSphere StepKind = iota
	StepShow
	StepSeparate
	StepIsolate
	StepSlice // recorded by (cut ...)
	StepReset
	StepAutoRotate
	StepNote
)

func (k StepKind) String() string {
	switch k {
	case StepSphere:
		return "sphere"
	case StepShow:
		return "show"
	case StepSeparate:
		return "separate"
	case StepIsolate:
		return "isolate"
	case StepSlice:
		return "slice"
	case StepReset:
		return "reset"
	case StepAutoRotate:
		return "autorotate"
	case StepNote:
		return "note"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SphereChange lists the sphere settings a step overrides. Nil fields are
// left as they are.
type SphereChange struct {
	Radius    *float64 `json:"radius,omitempty"`
	Color     *string  `json:"color,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Wireframe *bool    `json:"wireframe,omitempty"`
}

// Step is one recorded lesson action. Only the fields of its kind are set.
type Step struct {
	Kind     StepKind        `json:"kind"`
	Sphere   SphereChange    `json:"sphere"`
	Part     solid.PartKind  `json:"part"`
	Axis     separation.Axis `json:"axis"`
	Distance float64         `json:"distance,omitempty"`
	Enabled  bool            `json:"enabled,omitempty"`
	At       float64         `json:"at,omitempty"`
	Text     string          `json:"text,omitempty"`
}

// Lesson is an ordered list of steps with an optional title.
type Lesson struct {
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// Snapshot is the visualization state right after a step was applied.
type Snapshot struct {
	Step       int                 `json:"step"`
	Kind       StepKind            `json:"kind"`
	State      scene.State         `json:"state"`
	Part       solid.PartKind      `json:"part"`
	Params     solid.Params        `json:"params"`
	Clip       scene.Clip          `json:"clip"`
	AutoRotate bool                `json:"autoRotate"`
	Offsets    []r3.Vec            `json:"offsets"`
	Targets    []separation.Target `json:"targets"`
	Note       string              `json:"note,omitempty"`
}

// Play applies the steps of l to v in order and returns one snapshot per
// step. It stops at the first step that fails; the snapshots taken so far
// are returned with the error.
func Play(l *Lesson, v *scene.Visualization) ([]Snapshot, error) {
	if l == nil {
		return []Snapshot{}, nil
	}
	snaps := make([]Snapshot, 0, len(l.Steps))
	for i, st := range l.Steps {
		targets, err := apply(st, v)
		if err != nil {
			return snaps, fmt.Errorf("engine: step %d (%v): %w", i+1, st.Kind, err)
		}
		if targets == nil {
			targets = []separation.Target{}
		}
		snaps = append(snaps, Snapshot{
			Step:       i + 1,
			Kind:       st.Kind,
			State:      v.State(),
			Part:       v.Part(),
			Params:     v.Params(),
			Clip:       v.Clip(),
			AutoRotate: v.AutoRotate(),
			Offsets:    v.Offsets(),
			Targets:    targets,
			Note:       st.Text,
		})
	}
	return snaps, nil
}

func apply(st Step, v *scene.Visualization) ([]separation.Target, error) {
	switch st.Kind {
	case StepSphere:
		c := st.Sphere
		if c.Radius != nil {
			if err := v.SetRadius(*c.Radius); err != nil {
				return nil, err
			}
		}
		if c.Color != nil {
			if err := v.SetColor(*c.Color); err != nil {
				return nil, err
			}
		}
		if c.Opacity != nil {
			v.SetOpacity(*c.Opacity)
		}
		if c.Wireframe != nil {
			v.SetWireframe(*c.Wireframe)
		}
		return nil, nil
	case StepShow:
		return nil, v.ChoosePart(st.Part)
	case StepSeparate:
		return v.Separate()
	case StepIsolate:
		return v.Isolate(st.Axis, st.Distance), nil
	case StepSlice:
		return nil, v.SetClip(st.Enabled, st.At)
	case StepReset:
		return nil, v.Reset()
	case StepAutoRotate:
		v.SetAutoRotate(st.Enabled)
		return nil, nil
	case StepNote:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown step kind %v", st.Kind)
}
