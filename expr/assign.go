package expr

// AssignNode stores Value into Target and yields the stored value.
type AssignNode struct {
	Target *Variable
	Value  Node
}

// Assign creates Target := Value.
func Assign(target *Variable, value Node) *AssignNode {
	requireNode("Assign", "target", target)
	requireNode("Assign", "value", value)
	RequireType("Assign "+target.Name, value, target.typ)
	return &AssignNode{Target: target, Value: value}
}

func (n *AssignNode) Kind() Kind { return KindAssign }
func (n *AssignNode) Type() Type { return n.Target.typ }

func (n *AssignNode) RewriteChildren(v Visitor) Node {
	return n.Update(VisitReference(v, n.Target), v.Visit(n.Value))
}

// Update returns n when target and value are unchanged.
func (n *AssignNode) Update(target *Variable, value Node) *AssignNode {
	if target == n.Target && value == n.Value {
		return n
	}
	return Assign(target, value)
}
