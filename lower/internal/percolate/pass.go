package percolate

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// Assignments percolates every assignment whose source is control flow. An
// assignment whose value is used is kept as a block yielding the variable.
// It returns n itself when nothing was rewritten.
func Assignments(n expr.Node) expr.Node {
	return visit(n, false)
}

// Statement is Assignments for a node whose value is discarded.
func Statement(n expr.Node) expr.Node {
	return visit(n, true)
}

func visit(n expr.Node, stmt bool) expr.Node {
	if n == nil {
		return nil
	}
	out := rewriteChildren(n)
	a, ok := out.(*expr.AssignNode)
	if !ok {
		return out
	}
	p, ok := Into(a.Target, a.Value)
	if !ok {
		return out
	}
	p = visit(p, true)
	if stmt {
		return p
	}
	return expr.BlockTyped(a.Target.Type(), nil, p, a.Target)
}

// rewriteChildren visits the children of n, telling each whether its value
// is discarded. A child object occurring both as a statement and as a value
// is treated as a value.
func rewriteChildren(n expr.Node) expr.Node {
	stmts := statements(n)
	if len(stmts) == 0 {
		return n.RewriteChildren(&expr.Rewriter{Node: func(c expr.Node) expr.Node { return visit(c, false) }})
	}
	asStmt := make(map[expr.Node]int, len(stmts))
	for _, s := range stmts {
		if s != nil {
			asStmt[s]++
		}
	}
	all := make(map[expr.Node]int, len(stmts))
	n.RewriteChildren(&expr.Rewriter{Node: func(c expr.Node) expr.Node {
		all[c]++
		return c
	}})
	return n.RewriteChildren(&expr.Rewriter{Node: func(c expr.Node) expr.Node {
		return visit(c, asStmt[c] > 0 && asStmt[c] == all[c])
	}})
}

// statements lists the children of n whose value is discarded.
func statements(n expr.Node) []expr.Node {
	switch n := n.(type) {
	case *expr.BlockNode:
		return blockStatements(n.Type(), n.Exprs)
	case *ext.BlockNode:
		return blockStatements(n.Type(), n.Exprs)
	case *expr.LoopNode:
		return []expr.Node{n.Body}
	case *expr.ConditionalNode:
		if expr.IsVoid(n.Type()) {
			return []expr.Node{n.IfTrue, n.IfFalse}
		}
	case *expr.TryNode:
		out := []expr.Node{n.Finally}
		if expr.IsVoid(n.Type()) {
			out = append(out, n.Body)
			for _, h := range n.Handlers {
				out = append(out, h.Body)
			}
		}
		return out
	case *ext.TryNode:
		out := []expr.Node{n.Finally}
		if expr.IsVoid(n.Type()) {
			out = append(out, n.Body)
			for _, h := range n.Handlers {
				out = append(out, h.Body)
			}
		}
		return out
	case *expr.SwitchNode:
		if expr.IsVoid(n.Type()) {
			out := []expr.Node{n.DefaultBody}
			for _, c := range n.Cases {
				out = append(out, c.Body)
			}
			return out
		}
	case *expr.LambdaNode:
		if expr.IsVoid(n.Result) {
			return []expr.Node{n.Body}
		}
	case *ext.AsyncLambdaNode:
		if expr.IsVoid(n.Result) {
			return []expr.Node{n.Body}
		}
	case *expr.LabelNode:
		if expr.IsVoid(n.Type()) {
			return []expr.Node{n.Default}
		}
	case *ext.WhileNode:
		return []expr.Node{n.Body}
	case *ext.DoWhileNode:
		return []expr.Node{n.Body}
	case *ext.ForNode:
		out := append([]expr.Node{n.Body}, n.Initializers...)
		return append(out, n.Iterators...)
	case *ext.ForEachNode:
		return []expr.Node{n.Body}
	case *ext.SwitchNode:
		out := make([]expr.Node, len(n.Cases))
		for i, c := range n.Cases {
			out[i] = c.Body
		}
		return out
	case *ext.UsingNode:
		if expr.IsVoid(n.Type()) {
			return []expr.Node{n.Body}
		}
	case *ext.LockNode:
		if expr.IsVoid(n.Type()) {
			return []expr.Node{n.Body}
		}
	}
	return nil
}

func blockStatements(t expr.Type, exprs []expr.Node) []expr.Node {
	if len(exprs) == 0 {
		return nil
	}
	if expr.IsVoid(t) {
		return exprs
	}
	return exprs[:len(exprs)-1]
}
