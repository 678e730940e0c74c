package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/chazu/orbis/pkg/separation"
	"github.com/chazu/orbis/pkg/solid"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms lesson source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: full-sphere -> full_sphere
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

// recorder collects the steps produced by the builtins of one evaluation.
// Builtins refuse to run once ctx is done, which ends a looping lesson at
// its next builtin call.
type recorder struct {
	ctx    context.Context
	lesson *Lesson
}

func newRecorder(ctx context.Context) *recorder {
	return &recorder{ctx: ctx, lesson: &Lesson{Steps: []Step{}}}
}

func (r *recorder) alive() error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("lesson stopped: %w", err)
	}
	return nil
}

func (r *recorder) add(st Step) error {
	if len(r.lesson.Steps) >= MaxSteps {
		return fmt.Errorf("lesson exceeds %d steps", MaxSteps)
	}
	r.lesson.Steps = append(r.lesson.Steps, st)
	return nil
}

// sexpStep is returned by step builtins so the REPL has something to print.
type sexpStep struct {
	step Step
}

func (s *sexpStep) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(step %s)", s.step.Kind)
}
func (s *sexpStep) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		// The next token is the value, keyword or not. Only a trailing
		// keyword is a flag.
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
			continue
		}
		result.kw[name] = zygo.SexpNull
		i++
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp. A bare flag keyword counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_layer) and plain strings ("layer").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a separation.Axis.
func toAxis(s zygo.Sexp) (separation.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	return separation.ParseAxis(name)
}

// toPart converts a keyword or string to one of the parts a lesson may
// show. The separated layer is only reached through (separate).
func toPart(s zygo.Sexp) (solid.PartKind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected part keyword (:sphere, :zone, :layer, :segment, :sector): %w", err)
	}
	kind, err := solid.ParsePartKind(name)
	if err != nil {
		return 0, err
	}
	if kind == solid.SeparatedLayer {
		return 0, fmt.Errorf("%w: use (separate) after (show :layer)", solid.ErrUnsupportedPart)
	}
	return kind, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the lesson builtins into a zygomys environment.
// Each builtin appends one step to the recorder.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, rec *recorder) {
	define := func(name string, fn zygo.ZlispUserFunction) {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := rec.alive(); err != nil {
				return zygo.SexpNull, err
			}
			return fn(env, name, args)
		})
	}
	record := func(st Step) (zygo.Sexp, error) {
		if err := rec.add(st); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpStep{step: st}, nil
	}

	// -----------------------------------------------------------------------
	// (title "Layers of a sphere")
	// -----------------------------------------------------------------------
	define("title", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("title requires exactly 1 argument, got %d", len(args))
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("title: %w", err)
		}
		rec.lesson.Title = s
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 2 :color "#ff8800" :opacity 0.8 :wireframe false)
	// -----------------------------------------------------------------------
	define("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var c SphereChange

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %v", f)
			}
			c.Radius = &f
		}
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: color: %w", err)
			}
			if _, err := solid.ParseColor(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: color: %w", err)
			}
			c.Color = &s
		}
		if v, ok := pa.kw["opacity"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: opacity: %w", err)
			}
			c.Opacity = &f
		}
		if v, ok := pa.kw["wireframe"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: wireframe: %w", err)
			}
			c.Wireframe = &b
		}

		return record(Step{Kind: StepSphere, Sphere: c})
	})

	// -----------------------------------------------------------------------
	// (show :layer)
	// -----------------------------------------------------------------------
	define("show", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("show requires exactly 1 part, got %d arguments", len(args))
		}
		kind, err := toPart(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("show: %w", err)
		}
		return record(Step{Kind: StepShow, Part: kind})
	})

	// -----------------------------------------------------------------------
	// (separate)
	// -----------------------------------------------------------------------
	define("separate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("separate takes no arguments, got %d", len(args))
		}
		return record(Step{Kind: StepSeparate})
	})

	// -----------------------------------------------------------------------
	// (isolate :axis :x :distance 1.5)
	// -----------------------------------------------------------------------
	define("isolate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		st := Step{Kind: StepIsolate, Axis: separation.AxisY}

		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("isolate: axis: %w", err)
			}
			st.Axis = a
		}
		v, ok := pa.kw["distance"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("isolate requires :distance")
		}
		d, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("isolate: distance: %w", err)
		}
		st.Distance = d

		return record(st)
	})

	// -----------------------------------------------------------------------
	// (cut :on true :at 0.5)
	// zygomys reserves slice for its own builtin.
	// -----------------------------------------------------------------------
	define("cut", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		st := Step{Kind: StepSlice, Enabled: true}

		if v, ok := pa.kw["on"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cut: on: %w", err)
			}
			st.Enabled = b
		}
		if v, ok := pa.kw["at"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cut: at: %w", err)
			}
			st.At = f
		}

		return record(st)
	})

	// -----------------------------------------------------------------------
	// (reset)
	// -----------------------------------------------------------------------
	define("reset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("reset takes no arguments, got %d", len(args))
		}
		return record(Step{Kind: StepReset})
	})

	// -----------------------------------------------------------------------
	// (autorotate true)
	// -----------------------------------------------------------------------
	define("autorotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("autorotate requires exactly 1 argument, got %d", len(args))
		}
		b, err := toBool(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("autorotate: %w", err)
		}
		return record(Step{Kind: StepAutoRotate, Enabled: b})
	})

	// -----------------------------------------------------------------------
	// (note "A layer is a zone closed by two disks.")
	// -----------------------------------------------------------------------
	define("note", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("note requires exactly 1 argument, got %d", len(args))
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("note: %w", err)
		}
		return record(Step{Kind: StepNote, Text: s})
	})
}
