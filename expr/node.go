package expr

// Node is an immutable expression tree node.
type Node interface {
	Kind() Kind
	Type() Type
	// RewriteChildren rebuilds the node from children passed through v.
	// It returns the receiver when nothing changed.
	RewriteChildren(v Visitor) Node
}

// Visitor supplies replacements for the parts of a node.
type Visitor interface {
	// Visit is called for every child node, including variable references.
	Visit(n Node) Node
	// VisitVariable is called for every variable declaration site.
	VisitVariable(v *Variable) *Variable
	// VisitLabel is called for every label occurrence, declaring or referencing.
	VisitLabel(l *LabelTarget) *LabelTarget
}

// Rewriter is a Visitor built from optional functions. A nil function is the
// identity.
type Rewriter struct {
	Node     func(Node) Node
	Variable func(*Variable) *Variable
	Label    func(*LabelTarget) *LabelTarget
}

func (r *Rewriter) Visit(n Node) Node {
	if n == nil || r.Node == nil {
		return n
	}
	return r.Node(n)
}

func (r *Rewriter) VisitVariable(v *Variable) *Variable {
	if v == nil || r.Variable == nil {
		return v
	}
	return r.Variable(v)
}

func (r *Rewriter) VisitLabel(l *LabelTarget) *LabelTarget {
	if l == nil || r.Label == nil {
		return l
	}
	return r.Label(l)
}

// Walk calls fn for n and its descendants in pre-order. Children of a node are
// skipped when fn returns false for it.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	n.RewriteChildren(walker{fn: fn})
}

type walker struct {
	fn func(Node) bool
}

func (w walker) Visit(n Node) Node {
	Walk(n, w.fn)
	return n
}

func (w walker) VisitVariable(v *Variable) *Variable    { return v }
func (w walker) VisitLabel(l *LabelTarget) *LabelTarget { return l }

// Transform rebuilds n bottom-up, replacing every node by fn applied to the
// node with already transformed children.
func Transform(n Node, fn func(Node) Node) Node {
	if n == nil {
		return nil
	}
	r := &Rewriter{}
	r.Node = func(c Node) Node { return Transform(c, fn) }
	return fn(n.RewriteChildren(r))
}

// Contains reports whether pred holds for n or any descendant.
func Contains(n Node, pred func(Node) bool) bool {
	found := false
	Walk(n, func(c Node) bool {
		if found {
			return false
		}
		if pred(c) {
			found = true
			return false
		}
		return true
	})
	return found
}

// VisitReference passes a variable reference through v. The replacement must
// still be a variable.
func VisitReference(v Visitor, x *Variable) *Variable {
	n := v.Visit(x)
	nv, ok := n.(*Variable)
	if !ok {
		panic("expr: variable reference rewritten to " + n.Kind().String())
	}
	return nv
}

// VisitList passes every node of list through v and returns the original
// slice when nothing changed.
func VisitList(v Visitor, list []Node) []Node {
	var out []Node
	for i, n := range list {
		r := v.Visit(n)
		if out == nil && r != n {
			out = make([]Node, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return list
	}
	return out
}

// VisitVariables passes declarations through v and returns the original slice
// when nothing changed.
func VisitVariables(v Visitor, vars []*Variable) []*Variable {
	var out []*Variable
	for i, x := range vars {
		r := v.VisitVariable(x)
		if out == nil && r != x {
			out = make([]*Variable, len(vars))
			copy(out, vars[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return vars
	}
	return out
}

// visitOpt visits an optional child.
func visitOpt(v Visitor, n Node) Node {
	if n == nil {
		return nil
	}
	return v.Visit(n)
}

// SameNodes reports whether a and b hold reference-identical nodes.
func SameNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SameVariables reports whether a and b hold reference-identical variables.
func SameVariables(a, b []*Variable) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Extension is implemented by nodes outside the native vocabulary. They
// report KindExtension and must be reduced before compilation.
type Extension interface {
	Node
	ExtensionName() string
}

// IsExtension reports whether n is an extension node.
func IsExtension(n Node) bool {
	return n != nil && n.Kind() == KindExtension
}
