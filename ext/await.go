package ext

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/task"
)

// TaskType is the type of the value an async lambda returns when called.
var TaskType = expr.TypeOf[*task.Task]()

// continuationType is the parameter type of OnCompleted.
var continuationType = expr.TypeOf[func()]()

// AwaitInfo holds the awaiter protocol of an awaited type.
type AwaitInfo struct {
	GetAwaiter  *expr.Method
	IsCompleted *expr.Method
	GetResult   *expr.Method
	OnCompleted *expr.Method
	Awaiter     expr.Type
}

// ResolveAwaiter finds the awaiter pattern of t: GetAwaiter() A, where A has
// IsCompleted() bool, GetResult() and OnCompleted(func()).
func ResolveAwaiter(t expr.Type) (*AwaitInfo, bool) {
	get, ok := expr.LookupMethod(t, "GetAwaiter")
	if !ok || len(get.Params) != 0 || get.Raises || expr.IsVoid(get.Result) {
		return nil, false
	}
	at := get.Result
	done, ok := expr.LookupMethod(at, "IsCompleted")
	if !ok || len(done.Params) != 0 || done.Result != expr.BoolType {
		return nil, false
	}
	result, ok := expr.LookupMethod(at, "GetResult")
	if !ok || len(result.Params) != 0 {
		return nil, false
	}
	on, ok := expr.LookupMethod(at, "OnCompleted")
	if !ok || len(on.Params) != 1 || on.Params[0] != continuationType || !expr.IsVoid(on.Result) {
		return nil, false
	}
	return &AwaitInfo{GetAwaiter: get, IsCompleted: done, GetResult: result, OnCompleted: on, Awaiter: at}, true
}

// AwaitNode is a suspension point: it yields the result of Operand once the
// awaited operation has completed, raising its fault otherwise. It is only
// valid inside an async lambda.
type AwaitNode struct {
	Operand expr.Node
	Info    *AwaitInfo
}

// Await creates a suspension point on operand.
func Await(operand expr.Node) *AwaitNode {
	require("Await", "operand", operand)
	info, ok := ResolveAwaiter(operand.Type())
	if !ok {
		expr.Fail(errors.PatternNotFound(errors.PhaseConstruct, "Await", expr.Named(operand.Type()), "awaiter"))
	}
	return &AwaitNode{Operand: operand, Info: info}
}

// AwaitAs awaits operand and converts the result to t.
func AwaitAs(operand expr.Node, t expr.Type) expr.Node {
	a := Await(operand)
	if a.Type() == t {
		return a
	}
	return expr.Convert(a, t)
}

func (n *AwaitNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *AwaitNode) Type() expr.Type       { return n.Info.GetResult.Result }
func (n *AwaitNode) ExtensionName() string { return "Await" }

func (n *AwaitNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(v.Visit(n.Operand))
}

// Update returns n when the operand is unchanged.
func (n *AwaitNode) Update(operand expr.Node) *AwaitNode {
	if operand == n.Operand {
		return n
	}
	if operand.Type() == n.Operand.Type() {
		return &AwaitNode{Operand: operand, Info: n.Info}
	}
	return Await(operand)
}

// AsyncLambdaNode is a function literal whose body may contain suspension
// points. Calling its value returns a *task.Task completed with the body's
// value or faulted with the exception it raised.
type AsyncLambdaNode struct {
	Name   string
	Params []*expr.Variable
	Body   expr.Node
	Result expr.Type
}

// AsyncLambda creates an async function literal.
func AsyncLambda(name string, result expr.Type, body expr.Node, params ...*expr.Variable) *AsyncLambdaNode {
	if result == nil {
		result = expr.Void
	}
	require("AsyncLambda "+name, "body", body)
	expr.CheckDeclarations("AsyncLambda "+name, params)
	expr.RequireType("AsyncLambda "+name+" body", body, result)
	if len(params) == 0 {
		params = nil
	}
	return &AsyncLambdaNode{Name: name, Params: params, Body: body, Result: result}
}

func (n *AsyncLambdaNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *AsyncLambdaNode) Type() expr.Type       { return expr.CallableType }
func (n *AsyncLambdaNode) ExtensionName() string { return "AsyncLambda" }

func (n *AsyncLambdaNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(expr.VisitVariables(v, n.Params), v.Visit(n.Body))
}

// Update returns n when parameters and body are unchanged.
func (n *AsyncLambdaNode) Update(params []*expr.Variable, body expr.Node) *AsyncLambdaNode {
	if body == n.Body && expr.SameVariables(params, n.Params) {
		return n
	}
	return AsyncLambda(n.Name, n.Result, body, params...)
}
