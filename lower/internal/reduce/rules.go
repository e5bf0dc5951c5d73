package reduce

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

func orLabel(l *expr.LabelTarget, name string) *expr.LabelTarget {
	if l != nil {
		return l
	}
	return expr.VoidLabel(name)
}

// exitUnless jumps to brk when test is false.
func exitUnless(test expr.Node, brk *expr.LabelTarget) expr.Node {
	return expr.IfThen(expr.Not(test), expr.Break(brk))
}

// Block places the return label after the last expression. A typed label
// takes the last expression as its fall-through value.
func Block(n *ext.BlockNode) expr.Node {
	if n.Return == nil {
		return expr.BlockTyped(n.Type(), n.Variables, n.Exprs...)
	}
	if expr.IsVoid(n.Return.Type()) {
		exprs := append(append([]expr.Node(nil), n.Exprs...), expr.Label(n.Return, nil))
		return expr.BlockTyped(expr.Void, n.Variables, exprs...)
	}
	last := len(n.Exprs) - 1
	exprs := append(append([]expr.Node(nil), n.Exprs[:last]...), expr.Label(n.Return, n.Exprs[last]))
	return expr.BlockTyped(n.Type(), n.Variables, exprs...)
}

// While tests before every iteration.
func While(n *ext.WhileNode) expr.Node {
	brk := orLabel(n.Break, "break")
	body := expr.BlockTyped(expr.Void, nil, exitUnless(n.Test, brk), n.Body)
	return expr.Loop(body, brk, n.Continue)
}

// DoWhile places the continue label before the test.
func DoWhile(n *ext.DoWhileNode) expr.Node {
	brk := orLabel(n.Break, "break")
	exprs := []expr.Node{n.Body}
	if n.Continue != nil {
		exprs = append(exprs, expr.Label(n.Continue, nil))
	}
	exprs = append(exprs, exitUnless(n.Test, brk))
	return expr.Loop(expr.BlockTyped(expr.Void, nil, exprs...), brk, nil)
}

// For runs the initializers once and the iterators after the body and after
// every continue.
func For(n *ext.ForNode) expr.Node {
	brk := orLabel(n.Break, "break")
	var body []expr.Node
	if n.Test != nil {
		body = append(body, exitUnless(n.Test, brk))
	}
	body = append(body, n.Body)
	if n.Continue != nil {
		body = append(body, expr.Label(n.Continue, nil))
	}
	body = append(body, n.Iterators...)

	exprs := append([]expr.Node(nil), n.Initializers...)
	exprs = append(exprs, expr.Loop(expr.BlockTyped(expr.Void, nil, body...), brk, nil))
	return expr.BlockTyped(expr.Void, n.Variables, exprs...)
}

// ForEach acquires an enumerator and drives it with a while loop. Disposable
// enumerators are closed on every exit.
func ForEach(n *ext.ForEachNode) expr.Node {
	info := n.Enumerator
	e := expr.NewVariable(info.Type, "enumerator")

	var acquire expr.Node
	if info.Acquire.Receiver != nil {
		acquire = expr.CallMethod(n.Collection, info.Acquire)
	} else {
		acquire = expr.Call(info.Acquire, n.Collection)
	}

	var current expr.Node = expr.CallMethod(e, info.Current)
	if current.Type() != n.Variable.Type() {
		current = expr.Convert(current, n.Variable.Type())
	}
	step := expr.BlockVars([]*expr.Variable{n.Variable}, expr.Assign(n.Variable, current), n.Body)
	loop := ext.While(expr.CallMethod(e, info.MoveNext), step, n.Break, n.Continue)

	if info.Close != nil {
		return ext.Using(e, acquire, loop)
	}
	return expr.BlockVars([]*expr.Variable{e}, expr.Assign(e, acquire), loop)
}

// Try keeps unfiltered handlers native. A filter becomes a conditional
// rethrow when its handler is last, otherwise the filtered handler and all
// after it move into one catch-all that tests them in order.
func Try(n *ext.TryNode) expr.Node {
	t := n.Type()
	first := len(n.Handlers)
	for i, h := range n.Handlers {
		if h.Filter != nil {
			first = i
			break
		}
	}

	handlers := make([]*expr.CatchBlock, 0, first+1)
	for _, h := range n.Handlers[:first] {
		handlers = append(handlers, expr.MakeCatch(h.Test, h.Variable, h.Body))
	}

	switch rest := n.Handlers[first:]; len(rest) {
	case 0:
	case 1:
		h := rest[0]
		body := expr.BlockTyped(t, nil, expr.IfThen(expr.Not(h.Filter), expr.Rethrow()), h.Body)
		handlers = append(handlers, expr.MakeCatch(h.Test, h.Variable, body))
	default:
		ex := expr.NewVariable(expr.ErrorType, "exception")
		handlers = append(handlers, expr.Catch(ex, dispatch(t, ex, rest)))
	}
	return expr.TryTyped(t, n.Body, n.Finally, handlers...)
}

// dispatch tests handlers against the caught exception ex and rethrows it
// when none accepts.
func dispatch(t expr.Type, ex *expr.Variable, handlers []*ext.CatchBlock) expr.Node {
	if len(handlers) == 0 {
		return expr.ThrowTyped(nil, t)
	}
	h := handlers[0]
	v := h.Variable
	if v == nil {
		v = expr.NewVariable(h.Test, "exception")
	}
	var accept expr.Node = expr.Constant(true)
	if h.Filter != nil {
		accept = h.Filter
	}
	test := expr.AndAlso(
		expr.TypeIs(ex, h.Test),
		expr.BlockTyped(expr.BoolType, nil, expr.Assign(v, expr.Convert(ex, h.Test)), accept),
	)
	return expr.BlockTyped(t, []*expr.Variable{v},
		expr.ConditionTyped(t, test, h.Body, dispatch(t, ex, handlers[1:])))
}

// Using closes the resource in a finally block. The resource is acquired
// before the protected region so the finally block sees it.
func Using(n *ext.UsingNode) expr.Node {
	v := n.Variable
	if v == nil {
		v = expr.NewVariable(n.Resource.Type(), "resource")
	}
	var closer expr.Node = expr.CallMethod(v, n.Close)
	if expr.Nillable(v.Type()) {
		closer = expr.IfThen(expr.Not(expr.IsNil(v)), closer)
	}
	return expr.BlockVars([]*expr.Variable{v},
		expr.Assign(v, n.Resource),
		expr.TryTyped(n.Type(), n.Body, closer),
	)
}

// Lock releases the lock in a finally block, only when it was taken.
func Lock(n *ext.LockNode) expr.Node {
	t := n.Type()
	obj := expr.NewVariable(n.Object.Type(), "lock")
	taken := expr.NewVariable(expr.BoolType, "taken")
	body := expr.BlockTyped(t, nil,
		expr.CallMethod(obj, n.Lock),
		expr.Assign(taken, expr.Constant(true)),
		n.Body,
	)
	return expr.BlockVars([]*expr.Variable{obj, taken},
		expr.Assign(obj, n.Object),
		expr.Assign(taken, expr.Constant(false)),
		expr.TryTyped(t, body, expr.IfThen(taken, expr.CallMethod(obj, n.Unlock))),
	)
}

// ConditionalAccess evaluates the receiver once into a variable standing for
// the placeholder.
func ConditionalAccess(n *ext.ConditionalAccessNode) expr.Node {
	recv := expr.NewVariable(n.Receiver.Type(), "receiver")
	access := expr.Transform(n.WhenNotNull, func(c expr.Node) expr.Node {
		if c == expr.Node(n.Placeholder) {
			return recv
		}
		return c
	})

	t := n.Type()
	if expr.IsVoid(t) {
		return expr.BlockVars([]*expr.Variable{recv},
			expr.Assign(recv, n.Receiver),
			expr.IfThen(expr.Not(expr.IsNil(recv)), access),
		)
	}
	if access.Type() != t {
		access = expr.Convert(access, t)
	}
	return expr.BlockVars([]*expr.Variable{recv},
		expr.Assign(recv, n.Receiver),
		expr.ConditionTyped(t, expr.IsNil(recv), expr.Default(t), access),
	)
}
