package spill

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/lower/internal/percolate"
	"github.com/wippyai/exprtree/lower/internal/reduce"
)

// Stack rewrites n so that no barrier runs with a non-empty evaluation stack.
// It returns n itself when nothing had to be spilled.
func Stack(n expr.Node) expr.Node {
	s := &spiller{memo: make(map[expr.Node]bool)}
	return s.stmt(n)
}

type spiller struct {
	memo map[expr.Node]bool
}

// barrier reports whether n itself requires an empty stack.
func barrier(n expr.Node) bool {
	switch n := n.(type) {
	case *ext.AwaitNode, *expr.TryNode, *ext.TryNode, *expr.LoopNode,
		*ext.WhileNode, *ext.DoWhileNode, *ext.ForNode, *ext.ForEachNode,
		*expr.GotoNode, *expr.LabelNode, *ext.SwitchNode,
		*ext.GotoCaseNode, *ext.GotoDefaultNode, *ext.UsingNode, *ext.LockNode:
		return true
	case *ext.BlockNode:
		return n.Return != nil
	}
	return false
}

func isLambda(n expr.Node) bool {
	switch n.(type) {
	case *expr.LambdaNode, *ext.AsyncLambdaNode:
		return true
	}
	return false
}

// needsEmpty reports whether evaluating n reaches a barrier. Lambda bodies
// run on their own stack and are not inspected.
func (s *spiller) needsEmpty(n expr.Node) bool {
	if n == nil || isLambda(n) {
		return false
	}
	if r, ok := s.memo[n]; ok {
		return r
	}
	r := barrier(n)
	if !r {
		n.RewriteChildren(&expr.Rewriter{Node: func(c expr.Node) expr.Node {
			if !r && s.needsEmpty(c) {
				r = true
			}
			return c
		}})
	}
	s.memo[n] = r
	return r
}

// exempt reports whether hoisting n cannot be observed.
func exempt(n expr.Node) bool {
	switch n.(type) {
	case *expr.ConstantNode, *expr.DefaultNode, *expr.LambdaNode,
		*ext.AsyncLambdaNode, *ext.ConditionalReceiver:
		return true
	}
	return false
}

// stmt rewrites n assuming the stack is empty when n starts.
func (s *spiller) stmt(n expr.Node) expr.Node {
	if n == nil {
		return nil
	}
	if !s.needsEmpty(n) {
		return s.lambdas(n)
	}
	switch n := n.(type) {
	case *expr.CallNode:
		ops := n.Args
		if n.Object != nil {
			ops = append([]expr.Node{n.Object}, n.Args...)
		}
		return s.spilled(ops, func(out []expr.Node) expr.Node {
			if n.Object != nil {
				return n.Update(out[0], out[1:])
			}
			return n.Update(nil, out)
		})
	case *expr.InvokeNode:
		ops := append([]expr.Node{n.Target}, n.Args...)
		return s.spilled(ops, func(out []expr.Node) expr.Node {
			return n.Update(out[0], out[1:])
		})
	case *expr.BinaryNode:
		if n.Op.ShortCircuit() {
			if !s.needsEmpty(n.Right) {
				return n.Update(s.stmt(n.Left), s.lambdas(n.Right))
			}
			if n.Op == expr.OpAndAlso {
				return s.stmt(expr.ConditionTyped(expr.BoolType, n.Left, n.Right, expr.Constant(false)))
			}
			return s.stmt(expr.ConditionTyped(expr.BoolType, n.Left, expr.Constant(true), n.Right))
		}
		return s.spilled([]expr.Node{n.Left, n.Right}, func(out []expr.Node) expr.Node {
			return n.Update(out[0], out[1])
		})
	case *expr.ConditionalNode:
		if s.needsEmpty(n.Test) {
			return s.hoisted(n.Test, func(tmp *expr.Variable) expr.Node {
				return n.Update(tmp, s.stmt(n.IfTrue), s.stmt(n.IfFalse))
			})
		}
	case *expr.SwitchNode:
		return s.switchNode(n)
	case *ext.SwitchNode:
		if s.needsEmpty(n.Value) {
			return s.hoisted(n.Value, func(tmp *expr.Variable) expr.Node {
				return ext.Switch(tmp, n.Break, n.Variables, n.Cases...).RewriteChildren(&expr.Rewriter{Node: s.stmt})
			})
		}
	case *ext.WhileNode:
		if s.needsEmpty(n.Test) {
			brk := breakLabel(n.Break)
			body := expr.Block(s.exitUnless(n.Test, brk), s.stmt(n.Body))
			return ext.While(expr.Constant(true), body, brk, n.Continue)
		}
	case *ext.DoWhileNode:
		if s.needsEmpty(n.Test) {
			brk := breakLabel(n.Break)
			exprs := []expr.Node{s.stmt(n.Body)}
			if n.Continue != nil {
				exprs = append(exprs, expr.Label(n.Continue, nil))
			}
			exprs = append(exprs, s.exitUnless(n.Test, brk))
			return ext.While(expr.Constant(true), expr.Block(exprs...), brk, nil)
		}
	case *ext.ForNode:
		if s.needsEmpty(n.Test) {
			brk := breakLabel(n.Break)
			inits := make([]expr.Node, len(n.Initializers))
			for i, e := range n.Initializers {
				inits[i] = s.stmt(e)
			}
			iters := make([]expr.Node, len(n.Iterators))
			for i, e := range n.Iterators {
				iters[i] = s.stmt(e)
			}
			body := expr.Block(s.exitUnless(n.Test, brk), s.stmt(n.Body))
			return ext.For(n.Variables, inits, nil, iters, body, brk, n.Continue)
		}
	case *ext.ConditionalAccessNode:
		if s.needsEmpty(n.WhenNotNull) {
			return s.stmt(reduce.ConditionalAccess(n))
		}
	}
	return n.RewriteChildren(&expr.Rewriter{Node: s.stmt})
}

// spilled rewrites an operand list evaluated left to right and rebuilds the
// node with build. Operands up to the last one needing an empty stack are
// stored in temporaries first.
func (s *spiller) spilled(ops []expr.Node, build func([]expr.Node) expr.Node) expr.Node {
	last := 0
	for i := 1; i < len(ops); i++ {
		if s.needsEmpty(ops[i]) {
			last = i
		}
	}

	out := make([]expr.Node, len(ops))
	if last == 0 {
		for i, op := range ops {
			if i == 0 {
				out[i] = s.stmt(op)
			} else {
				out[i] = s.lambdas(op)
			}
		}
		return build(out)
	}

	var temps []*expr.Variable
	var pre []expr.Node
	for i, op := range ops {
		switch {
		case i > last:
			out[i] = s.lambdas(op)
		case exempt(op):
			out[i] = s.lambdas(op)
		default:
			tmp := expr.NewVariable(op.Type(), "spill")
			temps = append(temps, tmp)
			pre = append(pre, s.stmt(percolate.Statement(percolate.Assign(tmp, op))))
			out[i] = tmp
		}
	}
	return expr.BlockVars(temps, append(pre, build(out))...)
}

// hoisted stores v in a temporary before the node built around it runs.
func (s *spiller) hoisted(v expr.Node, build func(tmp *expr.Variable) expr.Node) expr.Node {
	tmp := expr.NewVariable(v.Type(), "spill")
	return expr.BlockVars([]*expr.Variable{tmp},
		s.stmt(percolate.Statement(percolate.Assign(tmp, v))),
		build(tmp),
	)
}

// exitUnless evaluates a loop test as a statement and leaves through brk
// when it is false.
func (s *spiller) exitUnless(test expr.Node, brk *expr.LabelTarget) expr.Node {
	return s.hoisted(test, func(tmp *expr.Variable) expr.Node {
		return expr.IfThen(expr.Not(tmp), expr.Break(brk))
	})
}

func breakLabel(l *expr.LabelTarget) *expr.LabelTarget {
	if l != nil {
		return l
	}
	return expr.VoidLabel("brk")
}

// switchNode spills the switch value when it or a test value needs an empty
// stack. Test values needing one are compared in statement position, in
// order and only until a case matches, and the switch then dispatches on the
// index of the matching case.
func (s *spiller) switchNode(n *expr.SwitchNode) expr.Node {
	tests := false
	for _, c := range n.Cases {
		for _, tv := range c.TestValues {
			if s.needsEmpty(tv) {
				tests = true
			}
		}
	}
	if !tests {
		if !s.needsEmpty(n.Value) {
			return n.RewriteChildren(&expr.Rewriter{Node: s.stmt})
		}
		return s.hoisted(n.Value, func(tmp *expr.Variable) expr.Node {
			return n.Update(tmp, n.Cases, n.DefaultBody).RewriteChildren(&expr.Rewriter{Node: s.stmt})
		})
	}

	value := expr.NewVariable(n.Value.Type(), "spill")
	match := expr.NewVariable(expr.IntType, "match")
	exprs := []expr.Node{
		s.stmt(percolate.Statement(percolate.Assign(value, n.Value))),
		expr.Assign(match, expr.Constant(-1)),
	}
	cases := make([]*expr.SwitchCase, len(n.Cases))
	for i, c := range n.Cases {
		for _, tv := range c.TestValues {
			found := expr.Assign(match, expr.Constant(i))
			var check expr.Node
			if s.needsEmpty(tv) {
				check = s.hoisted(tv, func(tmp *expr.Variable) expr.Node {
					return expr.IfThen(expr.Equal(value, tmp), found)
				})
			} else {
				check = expr.IfThen(expr.Equal(value, s.lambdas(tv)), found)
			}
			exprs = append(exprs, expr.IfThen(expr.Equal(match, expr.Constant(-1)), check))
		}
		cases[i] = expr.Case(s.stmt(c.Body), expr.Constant(i))
	}
	exprs = append(exprs, expr.Switch(n.Type(), match, s.stmt(n.DefaultBody), cases...))
	return expr.BlockVars([]*expr.Variable{value, match}, exprs...)
}

// lambdas rewrites only the bodies of lambdas nested in n.
func (s *spiller) lambdas(n expr.Node) expr.Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *expr.LambdaNode:
		return n.Update(n.Params, s.stmt(n.Body))
	case *ext.AsyncLambdaNode:
		return n.Update(n.Params, s.stmt(n.Body))
	}
	return n.RewriteChildren(&expr.Rewriter{Node: s.lambdas})
}
