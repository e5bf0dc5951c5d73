package host

import (
	"fmt"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// PanicError is raised when a host function panics.
type PanicError struct {
	Value  any
	Method string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("host function %s panicked: %v", e.Method, e.Value)
}

// Unwrap exposes a panic value that is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// jump transfers control to target. It travels on the error channel but is
// never visible to handlers or callers.
type jump struct {
	target *expr.LabelTarget
	value  any
}

func (j *jump) Error() string {
	return "jump to " + j.target.Name
}

func asJump(err error) (*jump, bool) {
	j, ok := err.(*jump)
	return j, ok
}

func fault(n expr.Node, format string, args ...any) error {
	return errors.RuntimeFault(n.Kind().String(), fmt.Sprintf(format, args...))
}

func cannotEnter(n expr.Node, l *expr.LabelTarget) error {
	return fault(n, "cannot jump into %s at label %s", n.Kind(), l.Name)
}
