package ext

import (
	"reflect"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// ConditionalReceiver stands for the evaluated receiver inside the
// WhenNotNull part of a conditional access.
type ConditionalReceiver struct {
	typ expr.Type
}

// Receiver creates a placeholder of type t.
func Receiver(t expr.Type) *ConditionalReceiver {
	if expr.IsVoid(t) {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "ConditionalReceiver: void type"))
	}
	return &ConditionalReceiver{typ: t}
}

func (n *ConditionalReceiver) Kind() expr.Kind                        { return expr.KindExtension }
func (n *ConditionalReceiver) Type() expr.Type                        { return n.typ }
func (n *ConditionalReceiver) ExtensionName() string                  { return "ConditionalReceiver" }
func (n *ConditionalReceiver) RewriteChildren(expr.Visitor) expr.Node { return n }

// ConditionalAccessNode evaluates Receiver once and yields nil when it is nil,
// otherwise WhenNotNull with Placeholder standing for the receiver. A result
// type that cannot hold nil is lifted to a pointer.
type ConditionalAccessNode struct {
	Receiver    expr.Node
	Placeholder *ConditionalReceiver
	WhenNotNull expr.Node
	typ         expr.Type
}

// ConditionalAccess creates recv?.whenNotNull.
func ConditionalAccess(recv expr.Node, placeholder *ConditionalReceiver, whenNotNull expr.Node) *ConditionalAccessNode {
	require("ConditionalAccess", "receiver", recv)
	require("ConditionalAccess", "access", whenNotNull)
	if placeholder == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "ConditionalAccess: nil placeholder"))
	}
	if !expr.Nillable(recv.Type()) {
		expr.Fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node("ConditionalAccess").
			Type(expr.TypeString(recv.Type())).
			Detail("receiver cannot be nil").
			Build())
	}
	expr.RequireType("ConditionalAccess receiver", recv, placeholder.typ)
	return &ConditionalAccessNode{
		Receiver:    recv,
		Placeholder: placeholder,
		WhenNotNull: whenNotNull,
		typ:         LiftedType(whenNotNull.Type()),
	}
}

// LiftedType is the type a conditional access yields for an access of type t.
func LiftedType(t expr.Type) expr.Type {
	if expr.IsVoid(t) || expr.Nillable(t) {
		return t
	}
	return reflect.PointerTo(t)
}

func (n *ConditionalAccessNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *ConditionalAccessNode) Type() expr.Type       { return n.typ }
func (n *ConditionalAccessNode) ExtensionName() string { return "ConditionalAccess" }

func (n *ConditionalAccessNode) RewriteChildren(v expr.Visitor) expr.Node {
	recv := v.Visit(n.Receiver)
	ph := n.Placeholder
	if p, ok := v.Visit(n.Placeholder).(*ConditionalReceiver); ok {
		ph = p
	}
	return n.Update(recv, ph, v.Visit(n.WhenNotNull))
}

// Update returns n when all children are unchanged.
func (n *ConditionalAccessNode) Update(recv expr.Node, placeholder *ConditionalReceiver, whenNotNull expr.Node) *ConditionalAccessNode {
	if recv == n.Receiver && placeholder == n.Placeholder && whenNotNull == n.WhenNotNull {
		return n
	}
	return ConditionalAccess(recv, placeholder, whenNotNull)
}
