// Package engine evaluates room descriptions written in a small Lisp. It
// wraps zygomys in a sandboxed environment and produces room.Overrides from
// user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/roomwright/pkg/room"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a problem in user code: a parse error, or an error raised
// while running it. Line is 0 when zygomys does not report one.
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

// Engine runs room descriptions. Each call to Evaluate gets a fresh
// sandbox; a newer call supersedes a pending older one.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine returns an Engine that gives up after EvalTimeout.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// SetTimeout changes the evaluation time limit. Non-positive values restore
// EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = EvalTimeout
	}
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// Evaluate runs source and returns the overrides its room form describes.
//
//   - success: overrides, nil, nil
//   - errors in user code: nil, eval errors, nil
//   - timeout, panic or a superseded call: nil, nil, error
func (e *Engine) Evaluate(source string) (*room.Overrides, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		o, evalErrs, err := evaluate(source)
		ch <- evalResult{overrides: o, errors: evalErrs, err: err}
	}()

	return e.wait(ch, gen)
}

// evaluate runs source in a fresh zygomys sandbox. The sandbox has no
// filesystem or syscall access.
func evaluate(source string) (*room.Overrides, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return &room.Overrides{}, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var b roomBuilder
	registerBuiltins(env, &b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return b.result(), nil, nil
}

// linePatterns pull a line number out of zygomys errors, which come as
// "Error on line N: ..." or "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError converts a zygomys error into EvalErrors, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: msg}}
}
