// Package engine runs lesson scripts. A lesson is a small Lisp program
// evaluated by zygomys in a sandbox; its builtins record the steps of a
// guided tour (show a part, separate it, cut it) which Play then applies
// to a scene.Visualization.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a lesson that failed to parse or whose builtins rejected
// their arguments. Line is 0 when zygomys did not report one.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine records lessons. Every evaluation gets a fresh sandbox, so
// replaying a script always yields the same steps. Only the result of the
// most recent call is kept; an older call still running when a newer one
// starts reports ErrSuperseded.
type Engine struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an engine bounded by EvalTimeout.
func NewEngine() *Engine {
	return NewEngineWithTimeout(EvalTimeout)
}

// NewEngineWithTimeout returns an engine that gives up on a lesson after d.
func NewEngineWithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = EvalTimeout
	}
	return &Engine{timeout: d}
}

// Evaluate records the steps of source.
func (e *Engine) Evaluate(source string) (*Lesson, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext records the steps of source until ctx is done or the
// engine timeout passes, whichever comes first.
//
// A lesson with errors in it comes back as nil plus its EvalErrors. The
// error return is kept for failures of the run itself: ErrTimeout,
// ErrSuperseded, a canceled ctx, or a panic in the interpreter.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Lesson, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		l, evalErrs := evaluate(ctx, source)
		ch <- evalResult{lesson: l, errors: evalErrs}
	}()

	return e.await(ctx, gen, ch)
}

// evaluate runs source in a fresh sandbox with the lesson builtins.
func evaluate(ctx context.Context, source string) (*Lesson, []EvalError) {
	rec := newRecorder(ctx)
	if strings.TrimSpace(source) == "" {
		return rec.lesson, nil
	}

	// The sandbox has no filesystem or system calls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, rec)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return rec.lesson, nil
}

// linePattern finds the line zygomys blames, in either its
// "Error on line N:" or bare "line N:" form. The detail may span lines.
var linePattern = regexp.MustCompile(`(?is)(?:^|(?:error )?on )line (\d+):\s*(.*)`)

// parseZygomysError keeps any text zygomys printed before the line marker,
// which is where builtin errors end up.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	loc := linePattern.FindStringSubmatchIndex(msg)
	if loc == nil {
		return []EvalError{{Message: msg}}
	}
	line, _ := strconv.Atoi(msg[loc[2]:loc[3]])
	detail := strings.TrimSpace(strings.TrimSpace(msg[:loc[0]]) + " " + msg[loc[4]:loc[5]])
	return []EvalError{{Line: line, Message: detail}}
}
