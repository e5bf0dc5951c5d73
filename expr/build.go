package expr

import (
	"fmt"

	"github.com/wippyai/exprtree/errors"
)

// fail aborts construction of a malformed node.
func fail(err *errors.Error) {
	panic(err)
}

// Fail aborts construction with err. Extension packages use it so that Build
// recovers their validation failures as well.
func Fail(err *errors.Error) {
	if err.Phase != errors.PhaseConstruct {
		err.Phase = errors.PhaseConstruct
	}
	panic(err)
}

// Build runs fn and converts a construction failure into an error.
func Build(fn func() Node) (n Node, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*errors.Error); ok && e.Phase == errors.PhaseConstruct {
			n, err = nil, e
			return
		}
		panic(r)
	}()
	return fn(), nil
}

// RequireType fails construction unless n's type is assignable to want.
func RequireType(node string, n Node, want Type) {
	if !assignable(n.Type(), want) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, node, Named(want), Named(n.Type())))
	}
}

// RequireBool fails construction unless n is boolean.
func RequireBool(node string, n Node) {
	if n.Type() != BoolType {
		fail(errors.TypeMismatch(errors.PhaseConstruct, node, Named(BoolType), Named(n.Type())))
	}
}

// Named adapts t to fmt.Stringer, rendering Void as "void".
func Named(t Type) fmt.Stringer {
	return typeName{t: t}
}

type typeName struct {
	t Type
}

func (n typeName) String() string { return TypeString(n.t) }

func requireNode(node, what string, n Node) {
	if n == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, fmt.Sprintf("%s: %s is nil", node, what)))
	}
}

// Assignable reports whether a value of type from may be stored into to.
func Assignable(from, to Type) bool {
	return assignable(from, to)
}
