package expr

import "github.com/wippyai/exprtree/errors"

// CatchBlock handles exceptions whose dynamic type is assignable to Test.
// Variable, when set, is bound to the exception inside Body.
type CatchBlock struct {
	Test     Type
	Variable *Variable
	Body     Node
}

// Catch creates a handler bound to v, testing v's type.
func Catch(v *Variable, body Node) *CatchBlock {
	if v == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Catch: nil variable"))
	}
	return MakeCatch(v.typ, v, body)
}

// CatchType creates a handler without a variable.
func CatchType(t Type, body Node) *CatchBlock {
	return MakeCatch(t, nil, body)
}

// MakeCatch creates a handler.
func MakeCatch(t Type, v *Variable, body Node) *CatchBlock {
	requireNode("Catch", "body", body)
	if !IsError(t) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "Catch", Named(ErrorType), Named(t)))
	}
	if v != nil && !assignable(t, v.typ) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "Catch variable "+v.Name, Named(t), Named(v.typ)))
	}
	return &CatchBlock{Test: t, Variable: v, Body: body}
}

// Update returns c when variable and body are unchanged.
func (c *CatchBlock) Update(v *Variable, body Node) *CatchBlock {
	if v == c.Variable && body == c.Body {
		return c
	}
	return MakeCatch(c.Test, v, body)
}

// RewriteCatch passes a handler's declaration and body through v.
func RewriteCatch(v Visitor, c *CatchBlock) *CatchBlock {
	var nv *Variable
	if c.Variable != nil {
		nv = v.VisitVariable(c.Variable)
	}
	return c.Update(nv, v.Visit(c.Body))
}

// TryNode runs Body under Handlers; Finally runs on every exit from the node.
type TryNode struct {
	Body     Node
	Handlers []*CatchBlock
	Finally  Node
	typ      Type
}

// Try creates a try typed by its body.
func Try(body, finally Node, handlers ...*CatchBlock) *TryNode {
	requireNode("Try", "body", body)
	return TryTyped(body.Type(), body, finally, handlers...)
}

// TryTyped creates a try with an explicit type.
func TryTyped(t Type, body, finally Node, handlers ...*CatchBlock) *TryNode {
	if t == nil {
		t = Void
	}
	requireNode("Try", "body", body)
	if len(handlers) == 0 && finally == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Try: requires a handler or a finally block"))
	}
	RequireType("Try body", body, t)
	for _, h := range handlers {
		if h == nil {
			fail(errors.InvalidInput(errors.PhaseConstruct, "Try: nil handler"))
		}
		RequireType("Catch body", h.Body, t)
	}
	if len(handlers) == 0 {
		handlers = nil
	}
	return &TryNode{Body: body, Handlers: handlers, Finally: finally, typ: t}
}

func (n *TryNode) Kind() Kind { return KindTry }
func (n *TryNode) Type() Type { return n.typ }

func (n *TryNode) RewriteChildren(v Visitor) Node {
	body := v.Visit(n.Body)
	var hs []*CatchBlock
	for i, h := range n.Handlers {
		nh := RewriteCatch(v, h)
		if hs == nil && nh != h {
			hs = make([]*CatchBlock, len(n.Handlers))
			copy(hs, n.Handlers[:i])
		}
		if hs != nil {
			hs[i] = nh
		}
	}
	if hs == nil {
		hs = n.Handlers
	}
	return n.Update(body, hs, visitOpt(v, n.Finally))
}

// Update returns n when all children are unchanged.
func (n *TryNode) Update(body Node, handlers []*CatchBlock, finally Node) *TryNode {
	if body == n.Body && finally == n.Finally && sameHandlers(handlers, n.Handlers) {
		return n
	}
	return TryTyped(n.typ, body, finally, handlers...)
}

func sameHandlers(a, b []*CatchBlock) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ThrowNode raises Value. A nil Value rethrows the exception being handled.
type ThrowNode struct {
	Value Node
	typ   Type
}

// Throw raises value as a void statement.
func Throw(value Node) *ThrowNode {
	requireNode("Throw", "value", value)
	return ThrowTyped(value, Void)
}

// Rethrow re-raises the exception of the enclosing handler.
func Rethrow() *ThrowNode {
	return ThrowTyped(nil, Void)
}

// ThrowTyped raises value at a position of type t.
func ThrowTyped(value Node, t Type) *ThrowNode {
	if t == nil {
		t = Void
	}
	if value != nil && !IsError(value.Type()) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "Throw", Named(ErrorType), Named(value.Type())))
	}
	return &ThrowNode{Value: value, typ: t}
}

func (n *ThrowNode) Kind() Kind { return KindThrow }
func (n *ThrowNode) Type() Type { return n.typ }

func (n *ThrowNode) RewriteChildren(v Visitor) Node {
	return n.Update(visitOpt(v, n.Value))
}

// Update returns n when the value is unchanged.
func (n *ThrowNode) Update(value Node) *ThrowNode {
	if value == n.Value {
		return n
	}
	return ThrowTyped(value, n.typ)
}
