package ext

import (
	"fmt"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

// SwitchCase is one section of a statement switch. Values are constants; a
// default section may also list values.
type SwitchCase struct {
	Values    []*expr.ConstantNode
	IsDefault bool
	Body      expr.Node
}

// Case creates a section matching values.
func Case(body expr.Node, values ...any) *SwitchCase {
	require("SwitchCase", "body", body)
	if len(values) == 0 {
		expr.Fail(errors.Arity(errors.PhaseConstruct, "SwitchCase", 1, 0))
	}
	return &SwitchCase{Values: constants(values), Body: body}
}

// DefaultCase creates the default section, optionally matching values too.
func DefaultCase(body expr.Node, values ...any) *SwitchCase {
	require("SwitchCase", "body", body)
	return &SwitchCase{Values: constants(values), IsDefault: true, Body: body}
}

func constants(values []any) []*expr.ConstantNode {
	if len(values) == 0 {
		return nil
	}
	out := make([]*expr.ConstantNode, len(values))
	for i, v := range values {
		if c, ok := v.(*expr.ConstantNode); ok {
			out[i] = c
			continue
		}
		out[i] = expr.Constant(v)
	}
	return out
}

// Update returns c when the body is unchanged.
func (c *SwitchCase) Update(body expr.Node) *SwitchCase {
	if body == c.Body {
		return c
	}
	return &SwitchCase{Values: c.Values, IsDefault: c.IsDefault, Body: body}
}

// SwitchNode is a statement switch. Sections do not fall through; GotoCase
// and GotoDefault jump between sections and a jump to Break leaves the
// switch. Variables are scoped to all sections.
type SwitchNode struct {
	Value     expr.Node
	Variables []*expr.Variable
	Cases     []*SwitchCase
	Break     *expr.LabelTarget
}

// Switch creates a statement switch.
func Switch(value expr.Node, brk *expr.LabelTarget, vars []*expr.Variable, cases ...*SwitchCase) *SwitchNode {
	require("Switch", "value", value)
	expr.RequireVoidLabel("Switch break", brk)
	expr.CheckDeclarations("Switch", vars)
	vt := value.Type()
	if expr.IsVoid(vt) || !vt.Comparable() {
		expr.Fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node("Switch").
			Type(expr.TypeString(vt)).
			Detail("switch value must be comparable").
			Build())
	}
	seen := make(map[any]struct{})
	defaults := 0
	for _, c := range cases {
		if c == nil {
			expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Switch: nil case"))
		}
		if c.IsDefault {
			defaults++
		}
		for _, v := range c.Values {
			if v.Type() != vt {
				expr.Fail(errors.TypeMismatch(errors.PhaseConstruct, "Switch case", expr.Named(vt), expr.Named(v.Type())))
			}
			if _, dup := seen[v.Value]; dup {
				expr.Fail(errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
					Node("Switch").
					Detail("duplicate case %v", v.Value).
					Build())
			}
			seen[v.Value] = struct{}{}
		}
	}
	if defaults > 1 {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "Switch: more than one default section"))
	}
	if len(vars) == 0 {
		vars = nil
	}
	return &SwitchNode{Value: value, Variables: vars, Cases: cases, Break: brk}
}

func (n *SwitchNode) Kind() expr.Kind       { return expr.KindExtension }
func (n *SwitchNode) Type() expr.Type       { return expr.Void }
func (n *SwitchNode) ExtensionName() string { return "Switch" }

// Default returns the default section or nil.
func (n *SwitchNode) Default() *SwitchCase {
	for _, c := range n.Cases {
		if c.IsDefault {
			return c
		}
	}
	return nil
}

func (n *SwitchNode) RewriteChildren(v expr.Visitor) expr.Node {
	value := v.Visit(n.Value)
	vars := expr.VisitVariables(v, n.Variables)
	var cases []*SwitchCase
	for i, c := range n.Cases {
		nc := c.Update(v.Visit(c.Body))
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
	return n.Update(value, vars, cases, visitLabel(v, n.Break))
}

// Update returns n when all children are unchanged.
func (n *SwitchNode) Update(value expr.Node, vars []*expr.Variable, cases []*SwitchCase, brk *expr.LabelTarget) *SwitchNode {
	if value == n.Value && brk == n.Break && expr.SameVariables(vars, n.Variables) && sameCases(cases, n.Cases) {
		return n
	}
	return Switch(value, brk, vars, cases...)
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

// GotoCaseNode jumps to the section of the nearest enclosing switch matching
// Value.
type GotoCaseNode struct {
	Value any
}

// GotoCase creates a jump to the section matching v.
func GotoCase(v any) *GotoCaseNode {
	if c, ok := v.(*expr.ConstantNode); ok {
		v = c.Value
	}
	if v == nil {
		expr.Fail(errors.InvalidInput(errors.PhaseConstruct, "GotoCase: nil value"))
	}
	return &GotoCaseNode{Value: v}
}

func (n *GotoCaseNode) Kind() expr.Kind                        { return expr.KindExtension }
func (n *GotoCaseNode) Type() expr.Type                        { return expr.Void }
func (n *GotoCaseNode) ExtensionName() string                  { return "GotoCase" }
func (n *GotoCaseNode) RewriteChildren(expr.Visitor) expr.Node { return n }
func (n *GotoCaseNode) String() string                         { return fmt.Sprintf("goto case %v", n.Value) }

// GotoDefaultNode jumps to the default section of the nearest enclosing switch.
type GotoDefaultNode struct{}

// GotoDefault creates a jump to the default section.
func GotoDefault() *GotoDefaultNode {
	return &GotoDefaultNode{}
}

func (n *GotoDefaultNode) Kind() expr.Kind                        { return expr.KindExtension }
func (n *GotoDefaultNode) Type() expr.Type                        { return expr.Void }
func (n *GotoDefaultNode) ExtensionName() string                  { return "GotoDefault" }
func (n *GotoDefaultNode) RewriteChildren(expr.Visitor) expr.Node { return n }
func (n *GotoDefaultNode) String() string                         { return "goto default" }
