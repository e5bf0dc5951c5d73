package reduce

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// Tree reduces every extended node of n except Await and AsyncLambda. It
// returns n itself when n holds no reducible node.
func Tree(n expr.Node) (expr.Node, error) {
	r := &reducer{}
	out := r.Visit(n)
	if r.err != nil {
		return nil, r.err
	}
	return out, nil
}

type reducer struct {
	// switches holds the statement switches enclosing the current node,
	// innermost last.
	switches []*switchContext
	err      error
}

type switchContext struct {
	labels []*expr.LabelTarget // per section
	def    *expr.LabelTarget   // nil without a default section
	cases  []*ext.SwitchCase
}

func (r *reducer) fail(err *errors.Error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reducer) VisitVariable(v *expr.Variable) *expr.Variable    { return v }
func (r *reducer) VisitLabel(l *expr.LabelTarget) *expr.LabelTarget { return l }

func (r *reducer) Visit(n expr.Node) expr.Node {
	if n == nil || r.err != nil {
		return n
	}
	switch x := n.(type) {
	case *expr.LambdaNode, *ext.AsyncLambdaNode:
		saved := r.switches
		r.switches = nil
		out := n.RewriteChildren(r)
		r.switches = saved
		return out
	case *ext.SwitchNode:
		return r.switchNode(x)
	}

	out := n.RewriteChildren(r)
	if r.err != nil {
		return out
	}
	red := r.rule(out)
	if red == out {
		return out
	}
	return r.Visit(red)
}

// rule applies the reduction of a node whose children are already reduced.
func (r *reducer) rule(n expr.Node) expr.Node {
	switch n := n.(type) {
	case *ext.BlockNode:
		return Block(n)
	case *ext.WhileNode:
		return While(n)
	case *ext.DoWhileNode:
		return DoWhile(n)
	case *ext.ForNode:
		return For(n)
	case *ext.ForEachNode:
		return ForEach(n)
	case *ext.TryNode:
		return Try(n)
	case *ext.UsingNode:
		return Using(n)
	case *ext.LockNode:
		return Lock(n)
	case *ext.ConditionalAccessNode:
		return ConditionalAccess(n)
	case *ext.GotoCaseNode:
		return r.gotoCase(n)
	case *ext.GotoDefaultNode:
		return r.gotoDefault(n)
	}
	return n
}

func (r *reducer) current() *switchContext {
	if len(r.switches) == 0 {
		return nil
	}
	return r.switches[len(r.switches)-1]
}

func (r *reducer) gotoCase(n *ext.GotoCaseNode) expr.Node {
	if sc := r.current(); sc != nil {
		for i, c := range sc.cases {
			for _, v := range c.Values {
				if v.Value == n.Value {
					return expr.Goto(sc.labels[i])
				}
			}
		}
	}
	r.fail(errors.UnresolvedGoto(n.String()))
	return n
}

func (r *reducer) gotoDefault(n *ext.GotoDefaultNode) expr.Node {
	if sc := r.current(); sc != nil && sc.def != nil {
		return expr.Goto(sc.def)
	}
	r.fail(errors.UnresolvedGoto(n.String()))
	return n
}

// switchNode allocates the section labels before reducing the sections so
// that goto case and goto default inside them resolve.
func (r *reducer) switchNode(n *ext.SwitchNode) expr.Node {
	value := r.Visit(n.Value)

	sc := &switchContext{labels: make([]*expr.LabelTarget, len(n.Cases)), cases: n.Cases}
	for i, c := range n.Cases {
		if c.IsDefault {
			sc.labels[i] = expr.VoidLabel("default")
			sc.def = sc.labels[i]
			continue
		}
		sc.labels[i] = expr.VoidLabel("case")
	}

	r.switches = append(r.switches, sc)
	bodies := make([]expr.Node, len(n.Cases))
	for i, c := range n.Cases {
		bodies[i] = r.Visit(c.Body)
	}
	r.switches = r.switches[:len(r.switches)-1]
	if r.err != nil {
		return n
	}

	var cases []*expr.SwitchCase
	var def expr.Node
	for i, c := range n.Cases {
		body := expr.BlockTyped(expr.Void, nil, expr.Label(sc.labels[i], nil), bodies[i])
		if c.IsDefault {
			def = body
			if len(c.Values) > 0 {
				cases = append(cases, expr.Case(expr.Goto(sc.labels[i]), values(c)...))
			}
			continue
		}
		cases = append(cases, expr.Case(body, values(c)...))
	}

	exprs := []expr.Node{expr.Switch(expr.Void, value, def, cases...)}
	if n.Break != nil {
		exprs = append(exprs, expr.Label(n.Break, nil))
	}
	return expr.BlockTyped(expr.Void, n.Variables, exprs...)
}

func values(c *ext.SwitchCase) []expr.Node {
	out := make([]expr.Node, len(c.Values))
	for i, v := range c.Values {
		out[i] = v
	}
	return out
}
