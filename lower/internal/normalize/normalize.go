package normalize

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// Aliases gives every declaring scope identities that no earlier declaration
// in the traversal used. It returns n itself when nothing was reused.
func Aliases(n expr.Node) expr.Node {
	return newNormalizer(false).visit(n)
}

// Shadows gives fresh identities to declarations that redeclare an identity of
// an enclosing scope. It returns n itself when nothing is shadowed.
func Shadows(n expr.Node) expr.Node {
	return newNormalizer(true).visit(n)
}

type normalizer struct {
	// seen counts live declarations of each *expr.Variable or *expr.LabelTarget.
	// Without scoping entries are never removed.
	seen   map[any]int
	scoped bool
	r      *expr.Rewriter
}

func newNormalizer(scoped bool) *normalizer {
	z := &normalizer{seen: make(map[any]int), scoped: scoped}
	z.r = &expr.Rewriter{Node: z.visit}
	return z
}

// scope is one set of declarations and the nodes they are visible in. Nil
// parts are allowed and stay nil.
type scope struct {
	vars   []*expr.Variable
	labels []*expr.LabelTarget
	parts  []expr.Node
}

// enter clones redeclared identities, substitutes them in the scope parts,
// marks the declarations and visits the parts. The returned scope holds the
// new declarations and visited parts.
func (z *normalizer) enter(s scope) scope {
	subst := make(map[any]any)
	for _, v := range s.vars {
		if v != nil && z.seen[v] > 0 {
			subst[v] = v.Clone()
		}
	}
	for _, l := range s.labels {
		if l != nil && z.seen[l] > 0 {
			subst[l] = l.Clone()
		}
	}

	out := scope{vars: s.vars, labels: s.labels, parts: s.parts}
	if len(subst) > 0 {
		out.vars = make([]*expr.Variable, len(s.vars))
		for i, v := range s.vars {
			out.vars[i] = v
			if nv, ok := subst[v]; ok {
				out.vars[i] = nv.(*expr.Variable)
			}
		}
		out.labels = make([]*expr.LabelTarget, len(s.labels))
		for i, l := range s.labels {
			out.labels[i] = l
			if nl, ok := subst[l]; ok {
				out.labels[i] = nl.(*expr.LabelTarget)
			}
		}
		out.parts = make([]expr.Node, len(s.parts))
		for i, p := range s.parts {
			out.parts[i] = Substitute(p, subst)
		}
	}

	for _, v := range out.vars {
		if v != nil {
			z.seen[v]++
		}
	}
	for _, l := range out.labels {
		if l != nil {
			z.seen[l]++
		}
	}

	out.parts = expr.VisitList(z.r, out.parts)

	if z.scoped {
		for _, v := range out.vars {
			if v != nil {
				z.seen[v]--
			}
		}
		for _, l := range out.labels {
			if l != nil {
				z.seen[l]--
			}
		}
	}
	return out
}

func (z *normalizer) visit(n expr.Node) expr.Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *expr.Variable:
		return n
	case *expr.BlockNode:
		s := z.enter(scope{vars: n.Variables, parts: n.Exprs})
		return n.Update(s.vars, s.parts)
	case *expr.LambdaNode:
		s := z.enter(scope{vars: n.Params, parts: []expr.Node{n.Body}})
		return n.Update(s.vars, s.parts[0])
	case *expr.LoopNode:
		s := z.enter(scope{labels: []*expr.LabelTarget{n.Break, n.Continue}, parts: []expr.Node{n.Body}})
		return n.Update(s.parts[0], s.labels[0], s.labels[1])
	case *expr.TryNode:
		body := z.visit(n.Body)
		handlers := n.Handlers
		for i, h := range n.Handlers {
			s := z.enter(scope{vars: []*expr.Variable{h.Variable}, parts: []expr.Node{h.Body}})
			nh := h.Update(s.vars[0], s.parts[0])
			if nh != h {
				if &handlers[0] == &n.Handlers[0] {
					handlers = append([]*expr.CatchBlock(nil), n.Handlers...)
				}
				handlers[i] = nh
			}
		}
		return n.Update(body, handlers, z.visit(n.Finally))
	case *ext.BlockNode:
		s := z.enter(scope{vars: n.Variables, labels: []*expr.LabelTarget{n.Return}, parts: n.Exprs})
		return n.Update(s.vars, s.parts, s.labels[0])
	case *ext.WhileNode:
		s := z.enter(scope{labels: []*expr.LabelTarget{n.Break, n.Continue}, parts: []expr.Node{n.Test, n.Body}})
		return n.Update(s.parts[0], s.parts[1], s.labels[0], s.labels[1])
	case *ext.DoWhileNode:
		s := z.enter(scope{labels: []*expr.LabelTarget{n.Break, n.Continue}, parts: []expr.Node{n.Body, n.Test}})
		return n.Update(s.parts[0], s.parts[1], s.labels[0], s.labels[1])
	case *ext.ForNode:
		parts := make([]expr.Node, 0, len(n.Initializers)+len(n.Iterators)+2)
		parts = append(parts, n.Initializers...)
		parts = append(parts, n.Test)
		parts = append(parts, n.Iterators...)
		parts = append(parts, n.Body)
		s := z.enter(scope{vars: n.Variables, labels: []*expr.LabelTarget{n.Break, n.Continue}, parts: parts})
		ni, nt := len(n.Initializers), len(n.Iterators)
		inits := keep(n.Initializers, s.parts[:ni])
		iters := keep(n.Iterators, s.parts[ni+1:ni+1+nt])
		return n.Update(s.vars, inits, s.parts[ni], iters, s.parts[ni+1+nt], s.labels[0], s.labels[1])
	case *ext.ForEachNode:
		coll := z.visit(n.Collection)
		s := z.enter(scope{
			vars:   []*expr.Variable{n.Variable},
			labels: []*expr.LabelTarget{n.Break, n.Continue},
			parts:  []expr.Node{n.Body},
		})
		return n.Update(s.vars[0], coll, s.parts[0], s.labels[0], s.labels[1])
	case *ext.SwitchNode:
		value := z.visit(n.Value)
		parts := make([]expr.Node, len(n.Cases))
		for i, c := range n.Cases {
			parts[i] = c.Body
		}
		s := z.enter(scope{vars: n.Variables, labels: []*expr.LabelTarget{n.Break}, parts: parts})
		cases := n.Cases
		for i, c := range n.Cases {
			if nc := c.Update(s.parts[i]); nc != c {
				if &cases[0] == &n.Cases[0] {
					cases = append([]*ext.SwitchCase(nil), n.Cases...)
				}
				cases[i] = nc
			}
		}
		return n.Update(value, s.vars, cases, s.labels[0])
	case *ext.TryNode:
		body := z.visit(n.Body)
		handlers := n.Handlers
		for i, h := range n.Handlers {
			s := z.enter(scope{vars: []*expr.Variable{h.Variable}, parts: []expr.Node{h.Filter, h.Body}})
			if s.vars[0] != h.Variable || s.parts[0] != h.Filter || s.parts[1] != h.Body {
				if &handlers[0] == &n.Handlers[0] {
					handlers = append([]*ext.CatchBlock(nil), n.Handlers...)
				}
				handlers[i] = ext.MakeCatch(h.Test, s.vars[0], s.parts[0], s.parts[1])
			}
		}
		return n.Update(body, handlers, z.visit(n.Finally))
	case *ext.UsingNode:
		res := z.visit(n.Resource)
		s := z.enter(scope{vars: []*expr.Variable{n.Variable}, parts: []expr.Node{n.Body}})
		return n.Update(s.vars[0], res, s.parts[0])
	case *ext.AsyncLambdaNode:
		s := z.enter(scope{vars: n.Params, parts: []expr.Node{n.Body}})
		return n.Update(s.vars, s.parts[0])
	}
	return n.RewriteChildren(z.r)
}

// keep returns orig when parts holds the same nodes.
func keep(orig, parts []expr.Node) []expr.Node {
	if expr.SameNodes(orig, parts) {
		return orig
	}
	return parts
}
