package samples

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wippyai/exprtree/expr"
)

// Env collects the lines a sample logs. Continuations of async samples may
// log from other goroutines.
type Env struct {
	mu      sync.Mutex
	lines   []string
	closers []func(context.Context) error
	logFn   *expr.Method
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	e := &Env{}
	e.logFn = expr.FuncOf("log", e.Log)
	return e
}

// Log appends a line.
func (e *Env) Log(s string) {
	e.mu.Lock()
	e.lines = append(e.lines, s)
	e.mu.Unlock()
}

// Logf appends a formatted line.
func (e *Env) Logf(format string, args ...any) {
	e.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the logged lines.
func (e *Env) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.lines)
}

// Reset forgets the logged lines.
func (e *Env) Reset() {
	e.mu.Lock()
	e.lines = nil
	e.mu.Unlock()
}

// Defer registers fn to run on Close, in reverse order of registration.
func (e *Env) Defer(fn func(context.Context) error) {
	e.mu.Lock()
	e.closers = append(e.closers, fn)
	e.mu.Unlock()
}

// Close runs the deferred functions.
func (e *Env) Close(ctx context.Context) error {
	e.mu.Lock()
	closers := e.closers
	e.closers = nil
	e.mu.Unlock()
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i](ctx))
	}
	return stderrors.Join(errs...)
}

// log is a tree that logs s.
func (e *Env) log(s string) expr.Node {
	return expr.Call(e.logFn, expr.Constant(s))
}

// logValue is a tree that logs the formatted value of n.
func (e *Env) logValue(prefix string, n expr.Node) expr.Node {
	show := expr.FuncOf("show", func(v any) string { return fmt.Sprintf("%s%v", prefix, v) })
	return expr.Call(e.logFn, expr.Call(show, expr.Convert(n, expr.AnyType)))
}
