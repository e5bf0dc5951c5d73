package async

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// hasAwait reports whether n contains a suspension point outside nested
// lambdas.
func hasAwait(n expr.Node) bool {
	return countAwaits(n) > 0
}

func countAwaits(n expr.Node) int {
	count := 0
	expr.Walk(n, func(c expr.Node) bool {
		switch c.(type) {
		case *ext.AwaitNode:
			count++
		case *expr.LambdaNode, *ext.AsyncLambdaNode:
			return false
		}
		return true
	})
	return count
}

// hoister removes the declarations of blocks spanning a suspension point.
// Each such block starts by resetting its variables, so a block entered again
// from the top still sees fresh locals. A variable that a nested lambda
// captures is moved into a cell allocated on every entry, so closures made
// in different iterations do not share it.
type hoister struct {
	index   map[*expr.Variable]uint32
	vars    []*expr.Variable
	hoisted *BitSet
	boxed   *BitSet
}

func newHoister() *hoister {
	return &hoister{
		index:   make(map[*expr.Variable]uint32),
		hoisted: NewBitSet(0),
		boxed:   NewBitSet(0),
	}
}

func (h *hoister) id(v *expr.Variable) uint32 {
	if i, ok := h.index[v]; ok {
		return i
	}
	i := uint32(len(h.vars))
	h.index[v] = i
	h.vars = append(h.vars, v)
	return i
}

func (h *hoister) visit(n expr.Node) expr.Node {
	switch n.(type) {
	case nil:
		return nil
	case *expr.LambdaNode, *ext.AsyncLambdaNode:
		return n
	}
	out := n.RewriteChildren(&expr.Rewriter{Node: h.visit})
	b, ok := out.(*expr.BlockNode)
	if !ok || len(b.Variables) == 0 || !hasAwait(b) {
		return out
	}

	captured := h.captured(b)
	local := NewBitSet(len(h.vars) + 2*len(b.Variables))
	cells := make(map[*expr.Variable]*expr.Variable)
	exprs := make([]expr.Node, 0, len(b.Variables)+len(b.Exprs))
	for _, v := range b.Variables {
		if !captured.Has(h.id(v)) {
			local.Set(h.id(v))
			exprs = append(exprs, expr.Assign(v, expr.Default(v.Type())))
			continue
		}
		c := expr.NewVariable(cellType, v.Name)
		cells[v] = c
		local.Set(h.id(c))
		h.boxed.Set(h.id(v))
		exprs = append(exprs, expr.Assign(c, expr.Call(newCell, box(expr.Default(v.Type())))))
	}
	h.hoisted.Union(local)

	if len(cells) > 0 {
		r := &celler{cells: cells}
		for _, e := range b.Exprs {
			exprs = append(exprs, r.visit(e))
		}
	} else {
		exprs = append(exprs, b.Exprs...)
	}
	return expr.BlockTyped(b.Type(), nil, exprs...)
}

// captured returns the variables referenced inside lambdas nested in n.
func (h *hoister) captured(n expr.Node) *BitSet {
	set := NewBitSet(len(h.vars))
	note := func(c expr.Node) bool {
		switch c := c.(type) {
		case *expr.Variable:
			set.Set(h.id(c))
		case *expr.AssignNode:
			set.Set(h.id(c.Target))
		}
		return true
	}
	expr.Walk(n, func(c expr.Node) bool {
		if l, ok := c.(*expr.LambdaNode); ok {
			expr.Walk(l.Body, note)
			return false
		}
		return true
	})
	return set
}

// variables returns the hoisted variables in discovery order.
func (h *hoister) variables() []*expr.Variable {
	ids := h.hoisted.ToSlice()
	out := make([]*expr.Variable, len(ids))
	for i, id := range ids {
		out[i] = h.vars[id]
	}
	return out
}
