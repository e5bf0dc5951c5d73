package ext

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// BlockNode is a block with an optional return label. A jump to Return leaves
// the block, carrying the block's value when the label is typed.
type BlockNode struct {
	Variables []*expr.Variable
	Exprs     []expr.Node
	Return    *expr.LabelTarget
	typ       expr.Type
}

// Block creates a block. With a typed return label, falling off the end
// yields the last expression.
func Block(ret *expr.LabelTarget, vars []*expr.Variable, exprs ...expr.Node) *BlockNode {
	expr.CheckDeclarations("Block", vars)
	for _, e := range exprs {
		if e == nil {
			expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Block: nil expression"))
		}
	}
	var t expr.Type = expr.Void
	switch {
	case ret != nil:
		t = ret.Type()
	case len(exprs) > 0:
		t = exprs[len(exprs)-1].Type()
	}
	if !expr.IsVoid(t) {
		if len(exprs) == 0 {
			expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Block: typed block without expressions"))
		}
		expr.RequireType("Block", exprs[len(exprs)-1], t)
	}
	if len(vars) == 0 {
		vars = nil
	}
	return &BlockNode{Variables: vars, Exprs: exprs, Return: ret, typ: t}
}

func (n *BlockNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *BlockNode) Type() expr.Type       { return n.typ }
func (n *BlockNode) ExtensionName() string { return "Block" }

func (n *BlockNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(expr.VisitVariables(v, n.Variables), expr.VisitList(v, n.Exprs), visitLabel(v, n.Return))
}

// Update returns n when all children are unchanged.
func (n *BlockNode) Update(vars []*expr.Variable, exprs []expr.Node, ret *expr.LabelTarget) *BlockNode {
	if ret == n.Return && expr.SameVariables(vars, n.Variables) && expr.SameNodes(exprs, n.Exprs) {
		return n
	}
	return Block(ret, vars, exprs...)
}

func visitLabel(v expr.Visitor, l *expr.LabelTarget) *expr.LabelTarget {
	if l == nil {
		return nil
	}
	return v.VisitLabel(l)
}

func visitOpt(v expr.Visitor, n expr.Node) expr.Node {
	if n == nil {
		return nil
	}
	return v.Visit(n)
}
