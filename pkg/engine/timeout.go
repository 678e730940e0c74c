package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the default limit for recording one lesson.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a lesson is still running at the deadline.
	ErrTimeout = errors.New("lesson timed out")

	// ErrSuperseded is returned to a call whose result arrived after a
	// newer evaluation had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	lesson *Lesson
	errors []EvalError
	err    error
}

// await waits for the result of generation gen. A lesson left running at
// the deadline stops at its next builtin call; whatever it sends later is
// dropped with the buffered channel.
func (e *Engine) await(ctx context.Context, gen uint64, ch <-chan evalResult) (*Lesson, []EvalError, error) {
	select {
	case res := <-ch:
		// builtins fail once ctx is done, so a late result is a stopped run
		if ctx.Err() != nil {
			return nil, nil, e.stopped(ctx)
		}
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.lesson, res.errors, res.err
	case <-ctx.Done():
		return nil, nil, e.stopped(ctx)
	}
}

func (e *Engine) stopped(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	return ctx.Err()
}
