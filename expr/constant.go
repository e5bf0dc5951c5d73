package expr

import (
	"reflect"

	"github.com/wippyai/exprtree/errors"
)

// ConstantNode is a literal value.
type ConstantNode struct {
	Value any
	typ   Type
}

// Constant creates a literal whose type is the dynamic type of v.
func Constant(v any) *ConstantNode {
	if v == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Constant: untyped nil, use ConstantOf"))
	}
	return &ConstantNode{Value: v, typ: reflect.TypeOf(v)}
}

// ConstantOf creates a literal of an explicit type, allowing typed nils.
func ConstantOf(v any, t Type) *ConstantNode {
	if IsVoid(t) {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Constant: void type"))
	}
	if v != nil && !reflect.TypeOf(v).AssignableTo(t) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "Constant", Named(t), Named(reflect.TypeOf(v))))
	}
	if v == nil && !Nillable(t) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "Constant nil", Named(t), Named(nil)))
	}
	return &ConstantNode{Value: v, typ: t}
}

func (n *ConstantNode) Kind() Kind                   { return KindConstant }
func (n *ConstantNode) Type() Type                   { return n.typ }
func (n *ConstantNode) RewriteChildren(Visitor) Node { return n }

// DefaultNode yields the zero value of its type; a void DefaultNode is a no-op.
type DefaultNode struct {
	typ Type
}

var empty = &DefaultNode{typ: Void}

// Default creates the zero value of t.
func Default(t Type) *DefaultNode {
	if IsVoid(t) {
		return empty
	}
	return &DefaultNode{typ: t}
}

// Empty is the void no-op.
func Empty() *DefaultNode {
	return empty
}

func (n *DefaultNode) Kind() Kind                   { return KindDefault }
func (n *DefaultNode) Type() Type                   { return n.typ }
func (n *DefaultNode) RewriteChildren(Visitor) Node { return n }
