package expr

import "github.com/wippyai/exprtree/errors"

// CallNode calls a host method. Object is nil for free functions.
type CallNode struct {
	Method *Method
	Object Node
	Args   []Node
}

// Call creates a call of a free host function.
func Call(m *Method, args ...Node) *CallNode {
	return MakeCall(nil, m, args...)
}

// CallMethod creates a call of m on obj.
func CallMethod(obj Node, m *Method, args ...Node) *CallNode {
	requireNode("Call", "receiver", obj)
	return MakeCall(obj, m, args...)
}

// MakeCall creates a call; obj must be set exactly when m has a receiver.
func MakeCall(obj Node, m *Method, args ...Node) *CallNode {
	if m == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Call: nil method"))
	}
	name := "Call " + m.String()
	switch {
	case m.Receiver != nil && obj == nil:
		fail(errors.InvalidInput(errors.PhaseConstruct, name+": missing receiver"))
	case m.Receiver == nil && obj != nil:
		fail(errors.InvalidInput(errors.PhaseConstruct, name+": free function called with a receiver"))
	case obj != nil:
		RequireType(name+" receiver", obj, m.Receiver)
	}
	if len(args) != len(m.Params) {
		fail(errors.Arity(errors.PhaseConstruct, name, len(m.Params), len(args)))
	}
	for i, a := range args {
		requireNode(name, "argument", a)
		RequireType(name+" argument", a, m.Params[i])
	}
	return &CallNode{Method: m, Object: obj, Args: args}
}

func (n *CallNode) Kind() Kind { return KindCall }
func (n *CallNode) Type() Type { return n.Method.Result }

func (n *CallNode) RewriteChildren(v Visitor) Node {
	return n.Update(visitOpt(v, n.Object), VisitList(v, n.Args))
}

// Update returns n when object and arguments are unchanged.
func (n *CallNode) Update(obj Node, args []Node) *CallNode {
	if obj == n.Object && SameNodes(args, n.Args) {
		return n
	}
	return MakeCall(obj, n.Method, args...)
}

// InvokeNode calls a Callable value.
type InvokeNode struct {
	Target Node
	Args   []Node
	typ    Type
}

// Invoke creates a call of target yielding a value of type t.
func Invoke(t Type, target Node, args ...Node) *InvokeNode {
	if t == nil {
		t = Void
	}
	requireNode("Invoke", "target", target)
	RequireType("Invoke target", target, CallableType)
	for _, a := range args {
		requireNode("Invoke", "argument", a)
		if IsVoid(a.Type()) {
			fail(errors.TypeMismatch(errors.PhaseConstruct, "Invoke argument", Named(AnyType), Named(Void)))
		}
	}
	return &InvokeNode{Target: target, Args: args, typ: t}
}

func (n *InvokeNode) Kind() Kind { return KindInvoke }
func (n *InvokeNode) Type() Type { return n.typ }

func (n *InvokeNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Target), VisitList(v, n.Args))
}

// Update returns n when target and arguments are unchanged.
func (n *InvokeNode) Update(target Node, args []Node) *InvokeNode {
	if target == n.Target && SameNodes(args, n.Args) {
		return n
	}
	return Invoke(n.typ, target, args...)
}

// LambdaNode is a function literal. Its value is a Callable closing over the
// variables in scope.
type LambdaNode struct {
	Name   string
	Params []*Variable
	Body   Node
	Result Type
}

// Lambda creates a function literal returning result.
func Lambda(name string, result Type, body Node, params ...*Variable) *LambdaNode {
	if result == nil {
		result = Void
	}
	requireNode("Lambda "+name, "body", body)
	CheckDeclarations("Lambda "+name, params)
	RequireType("Lambda "+name+" body", body, result)
	if len(params) == 0 {
		params = nil
	}
	return &LambdaNode{Name: name, Params: params, Body: body, Result: result}
}

func (n *LambdaNode) Kind() Kind { return KindLambda }
func (n *LambdaNode) Type() Type { return CallableType }

func (n *LambdaNode) RewriteChildren(v Visitor) Node {
	return n.Update(VisitVariables(v, n.Params), v.Visit(n.Body))
}

// Update returns n when parameters and body are unchanged.
func (n *LambdaNode) Update(params []*Variable, body Node) *LambdaNode {
	if body == n.Body && SameVariables(params, n.Params) {
		return n
	}
	return Lambda(n.Name, n.Result, body, params...)
}
