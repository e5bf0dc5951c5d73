package normalize

import "github.com/wippyai/exprtree/expr"

// Substitute replaces every occurrence of the variables and labels keyed in m,
// declarations included, by their mapped values.
func Substitute(n expr.Node, m map[any]any) expr.Node {
	if n == nil || len(m) == 0 {
		return n
	}
	r := &expr.Rewriter{
		Variable: func(v *expr.Variable) *expr.Variable {
			if nv, ok := m[v]; ok {
				return nv.(*expr.Variable)
			}
			return v
		},
		Label: func(l *expr.LabelTarget) *expr.LabelTarget {
			if nl, ok := m[l]; ok {
				return nl.(*expr.LabelTarget)
			}
			return l
		},
	}
	r.Node = func(c expr.Node) expr.Node {
		if v, ok := c.(*expr.Variable); ok {
			return r.Variable(v)
		}
		return c.RewriteChildren(r)
	}
	return r.Node(n)
}
