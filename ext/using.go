package ext

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// UsingNode evaluates Resource, runs Body and closes the resource on every
// exit. Variable, when set, is bound to the resource inside Body.
type UsingNode struct {
	Variable *expr.Variable
	Resource expr.Node
	Body     expr.Node
	Close    *expr.Method
}

// Using creates a resource scope. v may be nil.
func Using(v *expr.Variable, resource, body expr.Node) *UsingNode {
	require("Using", "resource", resource)
	require("Using", "body", body)
	t := resource.Type()
	if v != nil {
		expr.RequireType("Using "+v.Name, resource, v.Type())
		t = v.Type()
	}
	closer := resolveClose(t)
	if closer == nil {
		expr.Fail(errors.PatternNotFound(errors.PhaseConstruct, "Using", expr.Named(t), "Close"))
	}
	return &UsingNode{Variable: v, Resource: resource, Body: body, Close: closer}
}

func (n *UsingNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *UsingNode) Type() expr.Type       { return n.Body.Type() }
func (n *UsingNode) ExtensionName() string { return "Using" }

func (n *UsingNode) RewriteChildren(v expr.Visitor) expr.Node {
	var nv *expr.Variable
	if n.Variable != nil {
		nv = v.VisitVariable(n.Variable)
	}
	return n.Update(nv, v.Visit(n.Resource), v.Visit(n.Body))
}

// Update returns n when all children are unchanged.
func (n *UsingNode) Update(variable *expr.Variable, resource, body expr.Node) *UsingNode {
	if variable == n.Variable && resource == n.Resource && body == n.Body {
		return n
	}
	return Using(variable, resource, body)
}

// LockNode runs Body while holding the lock of Object.
type LockNode struct {
	Object expr.Node
	Body   expr.Node
	Lock   *expr.Method
	Unlock *expr.Method
}

// Lock creates a locked region. The object must have Lock() and Unlock()
// methods, as sync.Locker does.
func Lock(obj, body expr.Node) *LockNode {
	require("Lock", "object", obj)
	require("Lock", "body", body)
	lock, unlock := resolveLocker(obj.Type())
	if lock == nil || unlock == nil {
		expr.Fail(errors.PatternNotFound(errors.PhaseConstruct, "Lock", expr.Named(obj.Type()), "Lock/Unlock"))
	}
	return &LockNode{Object: obj, Body: body, Lock: lock, Unlock: unlock}
}

func resolveLocker(t expr.Type) (*expr.Method, *expr.Method) {
	l, ok := expr.LookupMethod(t, "Lock")
	if !ok || len(l.Params) != 0 || !expr.IsVoid(l.Result) || l.Raises {
		return nil, nil
	}
	u, ok := expr.LookupMethod(t, "Unlock")
	if !ok || len(u.Params) != 0 || !expr.IsVoid(u.Result) || u.Raises {
		return nil, nil
	}
	return l, u
}

func (n *LockNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *LockNode) Type() expr.Type       { return n.Body.Type() }
func (n *LockNode) ExtensionName() string { return "Lock" }

func (n *LockNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(v.Visit(n.Object), v.Visit(n.Body))
}

// Update returns n when object and body are unchanged.
func (n *LockNode) Update(obj, body expr.Node) *LockNode {
	if obj == n.Object && body == n.Body {
		return n
	}
	return Lock(obj, body)
}
