package expr

import (
	"fmt"

	"github.com/wippyai/exprtree/errors"
)

// BlockNode evaluates Exprs in order inside the scope of Variables. Its value is
// the value of the last expression unless the block is void.
type BlockNode struct {
	Variables []*Variable
	Exprs     []Node
	typ       Type
}

// Block creates a block typed by its last expression.
func Block(exprs ...Node) *BlockNode {
	return BlockVars(nil, exprs...)
}

// BlockVars creates a block declaring vars, typed by its last expression.
func BlockVars(vars []*Variable, exprs ...Node) *BlockNode {
	t := Void
	if len(exprs) > 0 && exprs[len(exprs)-1] != nil {
		t = exprs[len(exprs)-1].Type()
	}
	return BlockTyped(t, vars, exprs...)
}

// BlockTyped creates a block with an explicit result type; a void block
// discards the value of its last expression.
func BlockTyped(t Type, vars []*Variable, exprs ...Node) *BlockNode {
	if t == nil {
		t = Void
	}
	CheckDeclarations("Block", vars)
	for i, e := range exprs {
		if e == nil {
			fail(errors.InvalidInput(errors.PhaseConstruct, fmt.Sprintf("Block: expression %d is nil", i)))
		}
	}
	if !IsVoid(t) {
		if len(exprs) == 0 {
			fail(errors.InvalidInput(errors.PhaseConstruct, "Block: typed block without expressions"))
		}
		RequireType("Block", exprs[len(exprs)-1], t)
	}
	if len(vars) == 0 {
		vars = nil
	}
	return &BlockNode{Variables: vars, Exprs: exprs, typ: t}
}

func (n *BlockNode) Kind() Kind { return KindBlock }
func (n *BlockNode) Type() Type { return n.typ }

// Result is the expression whose value the block yields, or nil.
func (n *BlockNode) Result() Node {
	if len(n.Exprs) == 0 {
		return nil
	}
	return n.Exprs[len(n.Exprs)-1]
}

func (n *BlockNode) RewriteChildren(v Visitor) Node {
	return n.Update(VisitVariables(v, n.Variables), VisitList(v, n.Exprs))
}

// Update returns n when vars and exprs are unchanged.
func (n *BlockNode) Update(vars []*Variable, exprs []Node) *BlockNode {
	if SameVariables(vars, n.Variables) && SameNodes(exprs, n.Exprs) {
		return n
	}
	return BlockTyped(n.typ, vars, exprs...)
}
