package async

import (
	"github.com/wippyai/exprtree/expr"
)

// cell holds one hoisted local captured by a nested lambda.
type cell struct {
	v any
}

var (
	cellType = expr.TypeOf[*cell]()

	newCell   = expr.FuncOf("async.newCell", func(v any) *cell { return &cell{v: v} })
	loadCell  = expr.FuncOf("async.load", func(c *cell) any { return c.v })
	storeCell = expr.FuncOf("async.store", func(c *cell, v any) any {
		c.v = v
		return v
	})
)

func box(n expr.Node) expr.Node {
	if n.Type() == expr.AnyType {
		return n
	}
	return expr.Convert(n, expr.AnyType)
}

func unbox(n expr.Node, t expr.Type) expr.Node {
	if t == expr.AnyType {
		return n
	}
	return expr.Convert(n, t)
}

// celler redirects reads and writes of captured locals to their cells. Each
// lambda copies the cells it uses when it is created, so it keeps the cells
// of the block entry it was made in.
type celler struct {
	cells map[*expr.Variable]*expr.Variable
	// inner is set inside a lambda, whose cell variables never change.
	inner bool
}

func (r *celler) visit(n expr.Node) expr.Node {
	switch x := n.(type) {
	case nil:
		return nil
	case *expr.Variable:
		if c, ok := r.cells[x]; ok {
			return unbox(expr.Call(loadCell, c), x.Type())
		}
		return x
	case *expr.AssignNode:
		if c, ok := r.cells[x.Target]; ok {
			return unbox(expr.Call(storeCell, c, box(r.visit(x.Value))), x.Target.Type())
		}
	case *expr.LambdaNode:
		if !r.inner {
			return r.lambda(x)
		}
	}
	return n.RewriteChildren(&expr.Rewriter{Node: r.visit})
}

func (r *celler) lambda(l *expr.LambdaNode) expr.Node {
	inner := &celler{cells: make(map[*expr.Variable]*expr.Variable), inner: true}
	var snaps []*expr.Variable
	var exprs []expr.Node
	expr.Walk(l.Body, func(c expr.Node) bool {
		var v *expr.Variable
		switch c := c.(type) {
		case *expr.Variable:
			v = c
		case *expr.AssignNode:
			v = c.Target
		}
		cur, ok := r.cells[v]
		if !ok || inner.cells[v] != nil {
			return true
		}
		snap := expr.NewVariable(cellType, cur.Name)
		inner.cells[v] = snap
		snaps = append(snaps, snap)
		exprs = append(exprs, expr.Assign(snap, cur))
		return true
	})
	if len(snaps) == 0 {
		return l
	}
	exprs = append(exprs, l.Update(l.Params, inner.visit(l.Body)))
	return expr.BlockVars(snaps, exprs...)
}
