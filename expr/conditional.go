package expr

// ConditionalNode evaluates Test and then exactly one of its branches.
type ConditionalNode struct {
	Test    Node
	IfTrue  Node
	IfFalse Node
	typ     Type
}

// Condition creates a value-producing conditional typed by ifTrue.
func Condition(test, ifTrue, ifFalse Node) *ConditionalNode {
	requireNode("Conditional", "true branch", ifTrue)
	return ConditionTyped(ifTrue.Type(), test, ifTrue, ifFalse)
}

// ConditionTyped creates a conditional with an explicit type; a void
// conditional discards branch values.
func ConditionTyped(t Type, test, ifTrue, ifFalse Node) *ConditionalNode {
	if t == nil {
		t = Void
	}
	requireNode("Conditional", "test", test)
	requireNode("Conditional", "true branch", ifTrue)
	requireNode("Conditional", "false branch", ifFalse)
	RequireBool("Conditional test", test)
	RequireType("Conditional true branch", ifTrue, t)
	RequireType("Conditional false branch", ifFalse, t)
	return &ConditionalNode{Test: test, IfTrue: ifTrue, IfFalse: ifFalse, typ: t}
}

// IfThen creates a void conditional without an else branch.
func IfThen(test, ifTrue Node) *ConditionalNode {
	return ConditionTyped(Void, test, ifTrue, Empty())
}

// IfThenElse creates a void conditional.
func IfThenElse(test, ifTrue, ifFalse Node) *ConditionalNode {
	return ConditionTyped(Void, test, ifTrue, ifFalse)
}

func (n *ConditionalNode) Kind() Kind { return KindConditional }
func (n *ConditionalNode) Type() Type { return n.typ }

func (n *ConditionalNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Test), v.Visit(n.IfTrue), v.Visit(n.IfFalse))
}

// Update returns n when all children are unchanged.
func (n *ConditionalNode) Update(test, ifTrue, ifFalse Node) *ConditionalNode {
	if test == n.Test && ifTrue == n.IfTrue && ifFalse == n.IfFalse {
		return n
	}
	return ConditionTyped(n.typ, test, ifTrue, ifFalse)
}
