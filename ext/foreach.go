package ext

import (
	"reflect"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// EnumeratorInfo holds the calls a foreach reduces to.
type EnumeratorInfo struct {
	// Acquire produces the enumerator. It is either a method of the
	// collection or a free function taking the collection.
	Acquire  *expr.Method
	MoveNext *expr.Method
	Current  *expr.Method
	// Close is nil when the enumerator holds no resources.
	Close *expr.Method
	// Type is the enumerator type; Element is the type of the sequence
	// elements, which may be narrower than Current's result.
	Type    expr.Type
	Element expr.Type
}

// ForEachNode runs Body once per element of Collection, with Variable bound
// to the element.
type ForEachNode struct {
	Variable   *expr.Variable
	Collection expr.Node
	Body       expr.Node
	Break      *expr.LabelTarget
	Continue   *expr.LabelTarget
	Enumerator *EnumeratorInfo
}

// ForEach creates a foreach loop, resolving the enumeration pattern of the
// collection type.
func ForEach(v *expr.Variable, collection, body expr.Node, brk, cont *expr.LabelTarget) *ForEachNode {
	if v == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "ForEach: nil variable"))
	}
	require("ForEach", "collection", collection)
	require("ForEach", "body", body)
	expr.RequireVoidLabel("ForEach break", brk)
	expr.RequireVoidLabel("ForEach continue", cont)
	info, ok := ResolveEnumerator(collection.Type())
	if !ok {
		expr.Fail(errors.PatternNotFound(errors.PhaseConstruct, "ForEach", expr.Named(collection.Type()), "enumerable"))
	}
	if !expr.Convertible(info.Element, v.Type()) {
		expr.Fail(errors.TypeMismatch(errors.PhaseConstruct, "ForEach variable "+v.Name, expr.Named(info.Element), expr.Named(v.Type())))
	}
	return &ForEachNode{Variable: v, Collection: collection, Body: body, Break: brk, Continue: cont, Enumerator: info}
}

func (n *ForEachNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *ForEachNode) Type() expr.Type       { return expr.Void }
func (n *ForEachNode) ExtensionName() string { return "ForEach" }

func (n *ForEachNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(v.VisitVariable(n.Variable), v.Visit(n.Collection), v.Visit(n.Body), visitLabel(v, n.Break), visitLabel(v, n.Continue))
}

// Update returns n when all children are unchanged.
func (n *ForEachNode) Update(variable *expr.Variable, collection, body expr.Node, brk, cont *expr.LabelTarget) *ForEachNode {
	if variable == n.Variable && collection == n.Collection && body == n.Body && brk == n.Break && cont == n.Continue {
		return n
	}
	if collection.Type() == n.Collection.Type() {
		expr.RequireVoidLabel("ForEach break", brk)
		expr.RequireVoidLabel("ForEach continue", cont)
		return &ForEachNode{Variable: variable, Collection: collection, Body: body, Break: brk, Continue: cont, Enumerator: n.Enumerator}
	}
	return ForEach(variable, collection, body, brk, cont)
}

// ResolveEnumerator finds how to enumerate values of t. The search order is
// an Enumerator method returning a MoveNext/Current enumerator, then
// iter.Seq-shaped functions, then the kinds Go can range over.
func ResolveEnumerator(t expr.Type) (*EnumeratorInfo, bool) {
	if expr.IsVoid(t) {
		return nil, false
	}
	if info, ok := resolveMethodPattern(t); ok {
		return info, true
	}
	if elem, ok := seqElement(t); ok {
		return adapterInfo(pullMethod, elem, true), true
	}
	if elem, ok := rangeElement(t); ok {
		return adapterInfo(rangeMethod, elem, false), true
	}
	return nil, false
}

func resolveMethodPattern(t expr.Type) (*EnumeratorInfo, bool) {
	acquire, ok := expr.LookupMethod(t, "Enumerator")
	if !ok || len(acquire.Params) != 0 || acquire.Raises || expr.IsVoid(acquire.Result) {
		return nil, false
	}
	et := acquire.Result
	moveNext, ok := expr.LookupMethod(et, "MoveNext")
	if !ok || len(moveNext.Params) != 0 || moveNext.Result != expr.BoolType {
		return nil, false
	}
	current, ok := expr.LookupMethod(et, "Current")
	if !ok || len(current.Params) != 0 || expr.IsVoid(current.Result) {
		return nil, false
	}
	return &EnumeratorInfo{
		Acquire:  acquire,
		MoveNext: moveNext,
		Current:  current,
		Close:    resolveClose(et),
		Type:     et,
		Element:  current.Result,
	}, true
}

// resolveClose finds a Close() or Close() error method.
func resolveClose(t expr.Type) *expr.Method {
	m, ok := expr.LookupMethod(t, "Close")
	if !ok || len(m.Params) != 0 || !expr.IsVoid(m.Result) {
		return nil
	}
	return m
}

func seqElement(t expr.Type) (expr.Type, bool) {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 || yield.Out(0) != expr.BoolType {
		return nil, false
	}
	return yield.In(0), true
}

func rangeElement(t expr.Type) (expr.Type, bool) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem(), true
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Array {
			return t.Elem().Elem(), true
		}
	case reflect.String:
		return expr.TypeOf[rune](), true
	case reflect.Map:
		return t.Key(), true
	case reflect.Chan:
		if t.ChanDir()&reflect.RecvDir != 0 {
			return t.Elem(), true
		}
	}
	return nil, false
}

var (
	enumeratorType = expr.TypeOf[*Enumerator]()
	pullMethod     = expr.FuncOf("ext.Pull", Pull)
	rangeMethod    = expr.FuncOf("ext.Range", Range)
	adapterMove    = expr.MethodByName(enumeratorType, "MoveNext")
	adapterCurrent = expr.MethodByName(enumeratorType, "Current")
	adapterClose   = expr.MethodByName(enumeratorType, "Close")
)

func adapterInfo(acquire *expr.Method, elem expr.Type, disposable bool) *EnumeratorInfo {
	info := &EnumeratorInfo{
		Acquire:  acquire,
		MoveNext: adapterMove,
		Current:  adapterCurrent,
		Type:     enumeratorType,
		Element:  elem,
	}
	if disposable {
		info.Close = adapterClose
	}
	return info
}
