package engine

import (
	"fmt"
	"time"

	"github.com/chazu/roomwright/pkg/room"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// evalResult carries one evaluation's output back from its goroutine.
type evalResult struct {
	overrides *room.Overrides
	errors    []EvalError
	err       error
}

// wait returns the result from ch unless the engine's timeout passes first
// or a newer evaluation has started since gen was issued. A timed-out
// goroutine keeps running; its result is dropped.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*room.Overrides, []EvalError, error) {
	e.mu.Lock()
	timeout := e.timeout
	e.mu.Unlock()
	if timeout <= 0 {
		timeout = EvalTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		stale := gen != e.generation
		e.mu.Unlock()
		if stale {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.overrides, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
