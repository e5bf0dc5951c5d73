package percolate

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// Into rewrites v := c one level deep. It reports false when c is not a
// value-producing control-flow construct. The result is void.
func Into(v *expr.Variable, c expr.Node) (expr.Node, bool) {
	if expr.IsVoid(c.Type()) {
		return nil, false
	}
	assign := func(x expr.Node) expr.Node { return expr.Assign(v, x) }

	switch c := c.(type) {
	case *expr.BlockNode:
		last := len(c.Exprs) - 1
		if l, ok := c.Exprs[last].(*expr.LabelNode); ok {
			return intoLabel(v, c.Variables, c.Exprs[:last], l), true
		}
		exprs := make([]expr.Node, 0, len(c.Exprs))
		exprs = append(exprs, c.Exprs[:last]...)
		exprs = append(exprs, assign(c.Exprs[last]))
		return expr.BlockTyped(expr.Void, c.Variables, exprs...), true

	case *expr.ConditionalNode:
		return expr.ConditionTyped(expr.Void, c.Test, assign(c.IfTrue), assign(c.IfFalse)), true

	case *expr.TryNode:
		handlers := make([]*expr.CatchBlock, len(c.Handlers))
		for i, h := range c.Handlers {
			handlers[i] = expr.MakeCatch(h.Test, h.Variable, assign(h.Body))
		}
		return expr.TryTyped(expr.Void, assign(c.Body), c.Finally, handlers...), true

	case *ext.TryNode:
		handlers := make([]*ext.CatchBlock, len(c.Handlers))
		for i, h := range c.Handlers {
			handlers[i] = ext.MakeCatch(h.Test, h.Variable, h.Filter, assign(h.Body))
		}
		return ext.TryTyped(expr.Void, assign(c.Body), c.Finally, handlers...), true

	case *expr.SwitchNode:
		cases := make([]*expr.SwitchCase, len(c.Cases))
		for i, sc := range c.Cases {
			cases[i] = expr.Case(assign(sc.Body), sc.TestValues...)
		}
		return expr.Switch(expr.Void, c.Value, assign(c.DefaultBody), cases...), true

	case *ext.UsingNode:
		return ext.Using(c.Variable, c.Resource, assign(c.Body)), true

	case *ext.LockNode:
		return ext.Lock(c.Object, assign(c.Body)), true

	case *ext.BlockNode:
		last := len(c.Exprs) - 1
		if c.Return == nil {
			exprs := append(append([]expr.Node(nil), c.Exprs[:last]...), assign(c.Exprs[last]))
			return ext.Block(nil, c.Variables, exprs...), true
		}
		ret := expr.VoidLabel(c.Return.Name)
		exprs := make([]expr.Node, 0, len(c.Exprs))
		for _, e := range c.Exprs[:last] {
			exprs = append(exprs, retarget(e, c.Return, ret, v))
		}
		exprs = append(exprs, assign(retarget(c.Exprs[last], c.Return, ret, v)))
		return ext.Block(ret, c.Variables, exprs...), true

	case *expr.LoopNode:
		brk := expr.VoidLabel(c.Break.Name)
		return expr.Loop(retarget(c.Body, c.Break, brk, v), brk, c.Continue), true

	}
	return nil, false
}

// Assign returns v := c with c percolated when it is control flow.
func Assign(v *expr.Variable, c expr.Node) expr.Node {
	if out, ok := Into(v, c); ok {
		return out
	}
	return expr.Assign(v, c)
}

// IsControlFlow reports whether Into would rewrite an assignment of n.
func IsControlFlow(n expr.Node) bool {
	if expr.IsVoid(n.Type()) {
		return false
	}
	switch n.(type) {
	case *expr.BlockNode, *expr.ConditionalNode, *expr.TryNode, *expr.SwitchNode,
		*expr.LoopNode,
		*ext.TryNode, *ext.UsingNode, *ext.LockNode, *ext.BlockNode:
		return true
	}
	return false
}

// intoLabel handles stmts followed by a typed label: jumps carrying a value
// store it and jump to a void copy of the label, falling through stores the
// label default.
func intoLabel(v *expr.Variable, vars []*expr.Variable, stmts []expr.Node, l *expr.LabelNode) expr.Node {
	target := expr.VoidLabel(l.Target.Name)
	exprs := make([]expr.Node, 0, len(stmts)+2)
	for _, s := range stmts {
		exprs = append(exprs, retarget(s, l.Target, target, v))
	}
	exprs = append(exprs,
		expr.Assign(v, retarget(l.Default, l.Target, target, v)),
		expr.Label(target, nil),
	)
	return expr.BlockTyped(expr.Void, vars, exprs...)
}

// retarget rewrites every jump to from into v := value; goto to.
func retarget(n expr.Node, from, to *expr.LabelTarget, v *expr.Variable) expr.Node {
	return expr.Transform(n, func(c expr.Node) expr.Node {
		g, ok := c.(*expr.GotoNode)
		if !ok || g.Target != from {
			return c
		}
		jump := expr.MakeGoto(g.Flavor, to, nil, g.Type())
		return expr.BlockTyped(g.Type(), nil, expr.Assign(v, g.Value), jump)
	})
}
