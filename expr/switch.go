package expr

import "github.com/wippyai/exprtree/errors"

// SwitchCase is one arm of a native switch.
type SwitchCase struct {
	TestValues []Node
	Body       Node
}

// Case creates a switch arm.
func Case(body Node, tests ...Node) *SwitchCase {
	requireNode("SwitchCase", "body", body)
	if len(tests) == 0 {
		fail(errors.Arity(errors.PhaseConstruct, "SwitchCase", 1, 0))
	}
	for _, t := range tests {
		requireNode("SwitchCase", "test value", t)
	}
	return &SwitchCase{TestValues: tests, Body: body}
}

// Update returns c when tests and body are unchanged.
func (c *SwitchCase) Update(tests []Node, body Node) *SwitchCase {
	if body == c.Body && SameNodes(tests, c.TestValues) {
		return c
	}
	return Case(body, tests...)
}

// SwitchNode evaluates Value once, then the first case with an equal test
// value or DefaultBody. Cases do not fall through.
type SwitchNode struct {
	Value       Node
	Cases       []*SwitchCase
	DefaultBody Node
	typ         Type
}

// Switch creates a switch of type t. defaultBody may be nil for a void switch.
func Switch(t Type, value, defaultBody Node, cases ...*SwitchCase) *SwitchNode {
	if t == nil {
		t = Void
	}
	requireNode("Switch", "value", value)
	if IsVoid(value.Type()) || !value.Type().Comparable() {
		fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node("Switch").
			Type(TypeString(value.Type())).
			Detail("switch value must be comparable").
			Build())
	}
	for _, c := range cases {
		if c == nil {
			fail(errors.InvalidInput(errors.PhaseConstruct, "Switch: nil case"))
		}
		for _, tv := range c.TestValues {
			if tv.Type() != value.Type() {
				fail(errors.TypeMismatch(errors.PhaseConstruct, "Switch case value", Named(value.Type()), Named(tv.Type())))
			}
		}
		RequireType("Switch case body", c.Body, t)
	}
	if defaultBody == nil && !IsVoid(t) {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Switch: typed switch requires a default body"))
	}
	if defaultBody != nil {
		RequireType("Switch default body", defaultBody, t)
	}
	return &SwitchNode{Value: value, Cases: cases, DefaultBody: defaultBody, typ: t}
}

func (n *SwitchNode) Kind() Kind { return KindSwitch }
func (n *SwitchNode) Type() Type { return n.typ }

func (n *SwitchNode) RewriteChildren(v Visitor) Node {
	value := v.Visit(n.Value)
	var cases []*SwitchCase
	for i, c := range n.Cases {
		nc := c.Update(VisitList(v, c.TestValues), v.Visit(c.Body))
		if cases == nil && nc != c {
			cases = make([]*SwitchCase, len(n.Cases))
			copy(cases, n.Cases[:i])
		}
		if cases != nil {
			cases[i] = nc
		}
	}
	if cases == nil {
		cases = n.Cases
	}
	return n.Update(value, cases, visitOpt(v, n.DefaultBody))
}

// Update returns n when all children are unchanged.
func (n *SwitchNode) Update(value Node, cases []*SwitchCase, defaultBody Node) *SwitchNode {
	if value == n.Value && defaultBody == n.DefaultBody && sameCases(cases, n.Cases) {
		return n
	}
	return Switch(n.typ, value, defaultBody, cases...)
}

func sameCases(a, b []*SwitchCase) bool {
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
