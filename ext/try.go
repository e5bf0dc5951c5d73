package ext

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// CatchBlock is a handler with an optional filter. The filter runs with
// Variable bound; a false filter passes the exception to the next handler.
type CatchBlock struct {
	Test     expr.Type
	Variable *expr.Variable
	Filter   expr.Node
	Body     expr.Node
}

// Catch creates an unfiltered handler bound to v.
func Catch(v *expr.Variable, body expr.Node) *CatchBlock {
	if v == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Catch: nil variable"))
	}
	return MakeCatch(v.Type(), v, nil, body)
}

// CatchIf creates a handler bound to v that only handles exceptions for which
// filter holds.
func CatchIf(v *expr.Variable, filter, body expr.Node) *CatchBlock {
	if v == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Catch: nil variable"))
	}
	return MakeCatch(v.Type(), v, filter, body)
}

// MakeCatch creates a handler. v and filter are optional.
func MakeCatch(t expr.Type, v *expr.Variable, filter, body expr.Node) *CatchBlock {
	require("Catch", "body", body)
	if !expr.IsError(t) {
		expr.Fail(errors.TypeMismatch(errors.PhaseConstruct, "Catch", expr.Named(expr.ErrorType), expr.Named(t)))
	}
	if v != nil && !expr.Assignable(t, v.Type()) {
		expr.Fail(errors.TypeMismatch(errors.PhaseConstruct, "Catch variable "+v.Name, expr.Named(t), expr.Named(v.Type())))
	}
	if filter != nil {
		expr.RequireBool("Catch filter", filter)
	}
	return &CatchBlock{Test: t, Variable: v, Filter: filter, Body: body}
}

// RewriteCatch passes a handler's declaration, filter and body through v.
func RewriteCatch(v expr.Visitor, c *CatchBlock) *CatchBlock {
	var nv *expr.Variable
	if c.Variable != nil {
		nv = v.VisitVariable(c.Variable)
	}
	filter := visitOpt(v, c.Filter)
	body := v.Visit(c.Body)
	if nv == c.Variable && filter == c.Filter && body == c.Body {
		return c
	}
	return MakeCatch(c.Test, nv, filter, body)
}

// TryNode is try/catch/finally with filtered handlers.
type TryNode struct {
	Body     expr.Node
	Handlers []*CatchBlock
	Finally  expr.Node
	typ      expr.Type
}

// Try creates a try typed by its body.
func Try(body, finally expr.Node, handlers ...*CatchBlock) *TryNode {
	require("Try", "body", body)
	return TryTyped(body.Type(), body, finally, handlers...)
}

// TryTyped creates a try with an explicit type.
func TryTyped(t expr.Type, body, finally expr.Node, handlers ...*CatchBlock) *TryNode {
	if t == nil {
		t = expr.Void
	}
	require("Try", "body", body)
	if len(handlers) == 0 && finally == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Try: requires a handler or a finally block"))
	}
	expr.RequireType("Try body", body, t)
	for _, h := range handlers {
		if h == nil {
			expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Try: nil handler"))
		}
		expr.RequireType("Catch body", h.Body, t)
	}
	if len(handlers) == 0 {
		handlers = nil
	}
	return &TryNode{Body: body, Handlers: handlers, Finally: finally, typ: t}
}

func (n *TryNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *TryNode) Type() expr.Type       { return n.typ }
func (n *TryNode) ExtensionName() string { return "Try" }

func (n *TryNode) RewriteChildren(v expr.Visitor) expr.Node {
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
	finally := visitOpt(v, n.Finally)
	if body == n.Body && hs == nil && finally == n.Finally {
		return n
	}
	if hs == nil {
		hs = n.Handlers
	}
	return TryTyped(n.typ, body, finally, hs...)
}

// Update returns n when all children are unchanged.
func (n *TryNode) Update(body expr.Node, handlers []*CatchBlock, finally expr.Node) *TryNode {
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
