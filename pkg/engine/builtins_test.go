package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/orbis/pkg/separation"
	"github.com/chazu/orbis/pkg/solid"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(show :layer)`,
			expect: `(show "__kw_layer")`,
		},
		{
			name:   "multiple keywords",
			input:  `(isolate :axis :x :distance 2)`,
			expect: `(isolate "__kw_axis" "__kw_x" "__kw_distance" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `(note "press :separate to pull apart")`,
			expect: `(note "press :separate to pull apart")`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def half-radius 1)`,
			expect: `(def half_radius 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:full-sphere`,
			expect: `"__kw_full-sphere"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// mustEvaluate evaluates source and fails on any error.
func mustEvaluate(t *testing.T, source string) *Lesson {
	t.Helper()
	l, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if l == nil {
		t.Fatal("expected non-nil lesson")
	}
	return l
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func TestSphereStep(t *testing.T) {
	l := mustEvaluate(t, `(sphere :radius 2 :color "#ff8800" :opacity 0.5 :wireframe true)`)
	if len(l.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(l.Steps))
	}
	st := l.Steps[0]
	if st.Kind != StepSphere {
		t.Fatalf("expected sphere step, got %s", st.Kind)
	}
	c := st.Sphere
	if c.Radius == nil || *c.Radius != 2 {
		t.Errorf("radius = %v, want 2", c.Radius)
	}
	if c.Color == nil || *c.Color != "#ff8800" {
		t.Errorf("color = %v, want #ff8800", c.Color)
	}
	if c.Opacity == nil || *c.Opacity != 0.5 {
		t.Errorf("opacity = %v, want 0.5", c.Opacity)
	}
	if c.Wireframe == nil || !*c.Wireframe {
		t.Errorf("wireframe = %v, want true", c.Wireframe)
	}
}

func TestSphereStepPartial(t *testing.T) {
	l := mustEvaluate(t, `(sphere :opacity 1)`)
	c := l.Steps[0].Sphere
	if c.Radius != nil || c.Color != nil || c.Wireframe != nil {
		t.Errorf("unset fields should stay nil: %+v", c)
	}
}

func TestVariableReference(t *testing.T) {
	l := mustEvaluate(t, `
(def r 3)
(sphere :radius r)
`)
	if got := *l.Steps[0].Sphere.Radius; got != 3 {
		t.Errorf("expected radius=3 (from variable), got %v", got)
	}
}

func TestShowParts(t *testing.T) {
	tests := []struct {
		src  string
		want solid.PartKind
	}{
		{`(show :sphere)`, solid.FullSphere},
		{`(show :full-sphere)`, solid.FullSphere},
		{`(show :zone)`, solid.Zone},
		{`(show :layer)`, solid.Layer},
		{`(show :segment)`, solid.Segment},
		{`(show "sector")`, solid.Sector},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			l := mustEvaluate(t, tt.src)
			if l.Steps[0].Kind != StepShow || l.Steps[0].Part != tt.want {
				t.Errorf("got %+v, want show %v", l.Steps[0], tt.want)
			}
		})
	}
}

func TestIsolateStep(t *testing.T) {
	l := mustEvaluate(t, `(isolate :axis :x :distance 1.5)`)
	st := l.Steps[0]
	if st.Axis != separation.AxisX || st.Distance != 1.5 {
		t.Errorf("got axis %v distance %v", st.Axis, st.Distance)
	}

	l = mustEvaluate(t, `(isolate :distance -1)`)
	if l.Steps[0].Axis != separation.AxisY {
		t.Errorf("default axis = %v, want y", l.Steps[0].Axis)
	}
}

func TestParseArgsKeywordValues(t *testing.T) {
	kw := func(name string) zygo.Sexp { return &zygo.SexpStr{S: kwPrefix + name} }
	pa := parseArgs([]zygo.Sexp{kw("axis"), kw("x"), kw("distance"), &zygo.SexpFloat{Val: 1.5}, kw("quiet")})

	axis, ok := pa.kw["axis"].(*zygo.SexpStr)
	if !ok || axis.S != kwPrefix+"x" {
		t.Errorf("axis = %v, want keyword x", pa.kw["axis"])
	}
	if _, ok := pa.kw["x"]; ok {
		t.Error("a keyword value must not become its own flag")
	}
	if d, ok := pa.kw["distance"].(*zygo.SexpFloat); !ok || d.Val != 1.5 {
		t.Errorf("distance = %v, want 1.5", pa.kw["distance"])
	}
	if v, ok := pa.kw["quiet"]; !ok || v != zygo.SexpNull {
		t.Errorf("trailing keyword should be a flag, got %v", v)
	}
}

func TestCutStep(t *testing.T) {
	tests := []struct {
		src     string
		enabled bool
		at      float64
	}{
		{`(cut :at 0.5)`, true, 0.5},
		{`(cut :on true :at 0.5)`, true, 0.5},
		{`(cut :at -1)`, true, -1},
		{`(cut :on false)`, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			st := mustEvaluate(t, tt.src).Steps[0]
			if st.Kind != StepSlice || st.Enabled != tt.enabled || st.At != tt.at {
				t.Errorf("got %+v", st)
			}
		})
	}
}

func TestTitleAndOrder(t *testing.T) {
	l := mustEvaluate(t, `
; a short tour
(title "Layers")
(show :layer)
(note "two disks close the band")
(separate)
(autorotate false)
(reset)
`)
	if l.Title != "Layers" {
		t.Errorf("title = %q", l.Title)
	}
	want := []StepKind{StepShow, StepNote, StepSeparate, StepAutoRotate, StepReset}
	if len(l.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(l.Steps))
	}
	for i, k := range want {
		if l.Steps[i].Kind != k {
			t.Errorf("step %d = %s, want %s", i, l.Steps[i].Kind, k)
		}
	}
	if l.Steps[1].Text != "two disks close the band" {
		t.Errorf("note text = %q", l.Steps[1].Text)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown part", `(show :cube)`},
		{"separated layer", `(show :separated-layer)`},
		{"negative radius", `(sphere :radius -1)`},
		{"bad color", `(sphere :color "blue")`},
		{"radius not a number", `(sphere :radius "big")`},
		{"isolate without distance", `(isolate :axis :x)`},
		{"bad axis", `(isolate :axis :w :distance 1)`},
		{"separate with args", `(separate 1)`},
		{"autorotate without value", `(autorotate)`},
		{"wireframe not bool", `(sphere :wireframe 3)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, evalErrs, err := NewEngine().Evaluate(tt.src)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if l != nil {
				t.Error("expected nil lesson on eval error")
			}
			if len(evalErrs) == 0 {
				t.Error("expected an eval error")
			}
		})
	}
}

func TestRecorderStepLimit(t *testing.T) {
	rec := newRecorder(context.Background())
	for i := 0; i < MaxSteps; i++ {
		if err := rec.add(Step{Kind: StepNote}); err != nil {
			t.Fatalf("step %d rejected: %v", i, err)
		}
	}
	if err := rec.add(Step{Kind: StepNote}); err == nil {
		t.Error("expected an error past MaxSteps")
	}
}

func TestToPartError(t *testing.T) {
	_, err := toPart(&zygo.SexpInt{Val: 3})
	if err == nil {
		t.Fatal("expected error for a number")
	}
	_, err = toPart(&zygo.SexpStr{S: kwPrefix + "cube"})
	if !errors.Is(err, solid.ErrUnsupportedPart) {
		t.Errorf("expected ErrUnsupportedPart, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Plain arithmetic still works (regression)
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	l := mustEvaluate(t, "(+ 1 2)")
	if len(l.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(l.Steps))
	}
}
