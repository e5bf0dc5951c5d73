package expr

import "github.com/wippyai/exprtree/errors"

// LoopNode repeats Body until a jump to Break. Its value is the value carried
// by the break jump.
type LoopNode struct {
	Body     Node
	Break    *LabelTarget
	Continue *LabelTarget
}

// Loop creates an infinite loop. Either label may be nil.
func Loop(body Node, brk, cont *LabelTarget) *LoopNode {
	requireNode("Loop", "body", body)
	RequireVoidLabel("Loop continue", cont)
	return &LoopNode{Body: body, Break: brk, Continue: cont}
}

func (n *LoopNode) Kind() Kind { return KindLoop }

func (n *LoopNode) Type() Type {
	if n.Break == nil {
		return Void
	}
	return n.Break.typ
}

func (n *LoopNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Body), v.VisitLabel(n.Break), v.VisitLabel(n.Continue))
}

// Update returns n when body and labels are unchanged.
func (n *LoopNode) Update(body Node, brk, cont *LabelTarget) *LoopNode {
	if body == n.Body && brk == n.Break && cont == n.Continue {
		return n
	}
	return Loop(body, brk, cont)
}

// GotoFlavor records how a jump was written; all flavors behave the same.
type GotoFlavor uint8

const (
	FlavorGoto GotoFlavor = iota
	FlavorBreak
	FlavorContinue
	FlavorReturn
)

func (f GotoFlavor) String() string {
	switch f {
	case FlavorBreak:
		return "Break"
	case FlavorContinue:
		return "Continue"
	case FlavorReturn:
		return "Return"
	}
	return "Goto"
}

// GotoNode transfers control to Target, optionally carrying Value.
type GotoNode struct {
	Flavor GotoFlavor
	Target *LabelTarget
	Value  Node
	typ    Type
}

// MakeGoto creates a jump of the given flavor. The node never yields, so t
// only serves to fit the jump into a typed position.
func MakeGoto(flavor GotoFlavor, target *LabelTarget, value Node, t Type) *GotoNode {
	if target == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, flavor.String()+": nil target"))
	}
	if t == nil {
		t = Void
	}
	switch {
	case IsVoid(target.typ) && value != nil:
		fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node(flavor.String() + " " + target.Name).
			Detail("void label cannot receive a value").
			Build())
	case !IsVoid(target.typ) && value == nil:
		fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node(flavor.String() + " " + target.Name).
			Detail("label of type %s requires a value", TypeString(target.typ)).
			Build())
	case value != nil:
		RequireType(flavor.String()+" "+target.Name, value, target.typ)
	}
	return &GotoNode{Flavor: flavor, Target: target, Value: value, typ: t}
}

// Goto jumps to a void label.
func Goto(target *LabelTarget) *GotoNode {
	return MakeGoto(FlavorGoto, target, nil, Void)
}

// GotoValue jumps to a typed label carrying value.
func GotoValue(target *LabelTarget, value Node) *GotoNode {
	return MakeGoto(FlavorGoto, target, value, Void)
}

// Break jumps to a loop's break label.
func Break(target *LabelTarget) *GotoNode {
	return MakeGoto(FlavorBreak, target, nil, Void)
}

// Continue jumps to a loop's continue label.
func Continue(target *LabelTarget) *GotoNode {
	return MakeGoto(FlavorContinue, target, nil, Void)
}

// Return jumps to a function's return label, with an optional value.
func Return(target *LabelTarget, value Node) *GotoNode {
	return MakeGoto(FlavorReturn, target, value, Void)
}

func (n *GotoNode) Kind() Kind { return KindGoto }
func (n *GotoNode) Type() Type { return n.typ }

func (n *GotoNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.VisitLabel(n.Target), visitOpt(v, n.Value))
}

// Update returns n when target and value are unchanged.
func (n *GotoNode) Update(target *LabelTarget, value Node) *GotoNode {
	if target == n.Target && value == n.Value {
		return n
	}
	return MakeGoto(n.Flavor, target, value, n.typ)
}

// WithType returns the same jump fitted to type t.
func (n *GotoNode) WithType(t Type) *GotoNode {
	if t == n.typ {
		return n
	}
	return MakeGoto(n.Flavor, n.Target, n.Value, t)
}

// LabelNode marks the position of Target. Falling into it yields Default;
// jumping to it yields the carried value.
type LabelNode struct {
	Target  *LabelTarget
	Default Node
}

// Label places target. A typed label without a default yields the zero value.
func Label(target *LabelTarget, def Node) *LabelNode {
	if target == nil {
		fail(errors.InvalidInput(errors.PhaseConstruct, "Label: nil target"))
	}
	if IsVoid(target.typ) {
		if def != nil && !IsVoid(def.Type()) {
			fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
				Node("Label " + target.Name).
				Detail("void label cannot have a default value").
				Build())
		}
	} else {
		if def == nil {
			def = Default(target.typ)
		}
		RequireType("Label "+target.Name, def, target.typ)
	}
	return &LabelNode{Target: target, Default: def}
}

func (n *LabelNode) Kind() Kind { return KindLabel }
func (n *LabelNode) Type() Type { return n.Target.typ }

func (n *LabelNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.VisitLabel(n.Target), visitOpt(v, n.Default))
}

// Update returns n when target and default are unchanged.
func (n *LabelNode) Update(target *LabelTarget, def Node) *LabelNode {
	if target == n.Target && def == n.Default {
		return n
	}
	return Label(target, def)
}
