package ext

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// WhileNode runs Body while Test holds, testing before every iteration.
type WhileNode struct {
	Test     expr.Node
	Body     expr.Node
	Break    *expr.LabelTarget
	Continue *expr.LabelTarget
}

// While creates a pre-tested loop. Nil labels are synthesized on reduction.
func While(test, body expr.Node, brk, cont *expr.LabelTarget) *WhileNode {
	require("While", "test", test)
	require("While", "body", body)
	expr.RequireBool("While test", test)
	expr.RequireVoidLabel("While break", brk)
	expr.RequireVoidLabel("While continue", cont)
	return &WhileNode{Test: test, Body: body, Break: brk, Continue: cont}
}

func (n *WhileNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *WhileNode) Type() expr.Type       { return expr.Void }
func (n *WhileNode) ExtensionName() string { return "While" }

func (n *WhileNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(v.Visit(n.Test), v.Visit(n.Body), visitLabel(v, n.Break), visitLabel(v, n.Continue))
}

// Update returns n when all children are unchanged.
func (n *WhileNode) Update(test, body expr.Node, brk, cont *expr.LabelTarget) *WhileNode {
	if test == n.Test && body == n.Body && brk == n.Break && cont == n.Continue {
		return n
	}
	return While(test, body, brk, cont)
}

// DoWhileNode runs Body at least once, testing after every iteration. A jump
// to Continue proceeds to the test.
type DoWhileNode struct {
	Body     expr.Node
	Test     expr.Node
	Break    *expr.LabelTarget
	Continue *expr.LabelTarget
}

// DoWhile creates a post-tested loop.
func DoWhile(body, test expr.Node, brk, cont *expr.LabelTarget) *DoWhileNode {
	require("DoWhile", "body", body)
	require("DoWhile", "test", test)
	expr.RequireBool("DoWhile test", test)
	expr.RequireVoidLabel("DoWhile break", brk)
	expr.RequireVoidLabel("DoWhile continue", cont)
	return &DoWhileNode{Body: body, Test: test, Break: brk, Continue: cont}
}

func (n *DoWhileNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *DoWhileNode) Type() expr.Type       { return expr.Void }
func (n *DoWhileNode) ExtensionName() string { return "DoWhile" }

func (n *DoWhileNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(v.Visit(n.Body), v.Visit(n.Test), visitLabel(v, n.Break), visitLabel(v, n.Continue))
}

// Update returns n when all children are unchanged.
func (n *DoWhileNode) Update(body, test expr.Node, brk, cont *expr.LabelTarget) *DoWhileNode {
	if test == n.Test && body == n.Body && brk == n.Break && cont == n.Continue {
		return n
	}
	return DoWhile(body, test, brk, cont)
}

// ForNode is a C-style loop. Variables are scoped to the whole loop; a nil Test
// loops until a break. A jump to Continue proceeds to the iterators.
type ForNode struct {
	Variables    []*expr.Variable
	Initializers []expr.Node
	Test         expr.Node
	Iterators    []expr.Node
	Body         expr.Node
	Break        *expr.LabelTarget
	Continue     *expr.LabelTarget
}

// For creates a C-style loop.
func For(vars []*expr.Variable, inits []expr.Node, test expr.Node, iters []expr.Node, body expr.Node, brk, cont *expr.LabelTarget) *ForNode {
	expr.CheckDeclarations("For", vars)
	require("For", "body", body)
	if test != nil {
		expr.RequireBool("For test", test)
	}
	for _, e := range inits {
		require("For", "initializer", e)
	}
	for _, e := range iters {
		require("For", "iterator", e)
	}
	expr.RequireVoidLabel("For break", brk)
	expr.RequireVoidLabel("For continue", cont)
	if len(vars) == 0 {
		vars = nil
	}
	return &ForNode{
		Variables:    vars,
		Initializers: inits,
		Test:         test,
		Iterators:    iters,
		Body:         body,
		Break:        brk,
		Continue:     cont,
	}
}

func (n *ForNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *ForNode) Type() expr.Type       { return expr.Void }
func (n *ForNode) ExtensionName() string { return "For" }

func (n *ForNode) RewriteChildren(v expr.Visitor) expr.Node {
	return n.Update(
		expr.VisitVariables(v, n.Variables),
		expr.VisitList(v, n.Initializers),
		visitOpt(v, n.Test),
		expr.VisitList(v, n.Iterators),
		v.Visit(n.Body),
		visitLabel(v, n.Break),
		visitLabel(v, n.Continue),
	)
}

// Update returns n when all children are unchanged.
func (n *ForNode) Update(vars []*expr.Variable, inits []expr.Node, test expr.Node, iters []expr.Node, body expr.Node, brk, cont *expr.LabelTarget) *ForNode {
	if test == n.Test && body == n.Body && brk == n.Break && cont == n.Continue &&
		expr.SameVariables(vars, n.Variables) && expr.SameNodes(inits, n.Initializers) &&
		expr.SameNodes(iters, n.Iterators) {
		return n
	}
	return For(vars, inits, test, iters, body, brk, cont)
}

func require(node, what string, n expr.Node) {
	if n == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, node+": "+what+" is nil"))
	}
}
