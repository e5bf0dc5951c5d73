package expr

import (
	"reflect"

	"github.com/wippyai/exprtree/errors"
)

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpAndAlso
	OpOrElse
)

var binaryNames = [...]string{
	OpAdd:                "Add",
	OpSubtract:           "Subtract",
	OpMultiply:           "Multiply",
	OpDivide:             "Divide",
	OpModulo:             "Modulo",
	OpEqual:              "Equal",
	OpNotEqual:           "NotEqual",
	OpLessThan:           "LessThan",
	OpLessThanOrEqual:    "LessThanOrEqual",
	OpGreaterThan:        "GreaterThan",
	OpGreaterThanOrEqual: "GreaterThanOrEqual",
	OpAndAlso:            "AndAlso",
	OpOrElse:             "OrElse",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return "BinaryOp(?)"
}

// ShortCircuit reports whether the right operand is evaluated conditionally.
func (op BinaryOp) ShortCircuit() bool {
	return op == OpAndAlso || op == OpOrElse
}

// BinaryNode applies Op to Left and Right, evaluated left to right.
type BinaryNode struct {
	Op    BinaryOp
	Left  Node
	Right Node
	typ   Type
}

// MakeBinary creates a binary operation.
func MakeBinary(op BinaryOp, left, right Node) *BinaryNode {
	requireNode(op.String(), "left operand", left)
	requireNode(op.String(), "right operand", right)
	lt, rt := left.Type(), right.Type()
	var t Type
	switch op {
	case OpAndAlso, OpOrElse:
		RequireBool(op.String(), left)
		RequireBool(op.String(), right)
		t = BoolType
	case OpEqual, OpNotEqual:
		if IsVoid(lt) || IsVoid(rt) || !(assignable(lt, rt) || assignable(rt, lt)) || !lt.Comparable() {
			fail(errors.TypeMismatch(errors.PhaseConstruct, op.String(), Named(lt), Named(rt)))
		}
		t = BoolType
	case OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual:
		if lt != rt || !(isNumeric(lt) || lt.Kind() == reflect.String) {
			fail(errors.TypeMismatch(errors.PhaseConstruct, op.String(), Named(lt), Named(rt)))
		}
		t = BoolType
	case OpAdd:
		if lt != rt || !(isNumeric(lt) || lt.Kind() == reflect.String) {
			fail(errors.TypeMismatch(errors.PhaseConstruct, op.String(), Named(lt), Named(rt)))
		}
		t = lt
	case OpSubtract, OpMultiply, OpDivide, OpModulo:
		if lt != rt || !isNumeric(lt) {
			fail(errors.TypeMismatch(errors.PhaseConstruct, op.String(), Named(lt), Named(rt)))
		}
		t = lt
	default:
		fail(errors.InvalidInput(errors.PhaseConstruct, "unknown binary operator "+op.String()))
	}
	return &BinaryNode{Op: op, Left: left, Right: right, typ: t}
}

func Add(l, r Node) *BinaryNode                { return MakeBinary(OpAdd, l, r) }
func Subtract(l, r Node) *BinaryNode           { return MakeBinary(OpSubtract, l, r) }
func Multiply(l, r Node) *BinaryNode           { return MakeBinary(OpMultiply, l, r) }
func Divide(l, r Node) *BinaryNode             { return MakeBinary(OpDivide, l, r) }
func Modulo(l, r Node) *BinaryNode             { return MakeBinary(OpModulo, l, r) }
func Equal(l, r Node) *BinaryNode              { return MakeBinary(OpEqual, l, r) }
func NotEqual(l, r Node) *BinaryNode           { return MakeBinary(OpNotEqual, l, r) }
func LessThan(l, r Node) *BinaryNode           { return MakeBinary(OpLessThan, l, r) }
func LessThanOrEqual(l, r Node) *BinaryNode    { return MakeBinary(OpLessThanOrEqual, l, r) }
func GreaterThan(l, r Node) *BinaryNode        { return MakeBinary(OpGreaterThan, l, r) }
func GreaterThanOrEqual(l, r Node) *BinaryNode { return MakeBinary(OpGreaterThanOrEqual, l, r) }
func AndAlso(l, r Node) *BinaryNode            { return MakeBinary(OpAndAlso, l, r) }
func OrElse(l, r Node) *BinaryNode             { return MakeBinary(OpOrElse, l, r) }

func (n *BinaryNode) Kind() Kind { return KindBinary }
func (n *BinaryNode) Type() Type { return n.typ }

func (n *BinaryNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Left), v.Visit(n.Right))
}

// Update returns n when both operands are unchanged.
func (n *BinaryNode) Update(left, right Node) *BinaryNode {
	if left == n.Left && right == n.Right {
		return n
	}
	return MakeBinary(n.Op, left, right)
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpNegate
	OpIsNil
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "Not"
	case OpNegate:
		return "Negate"
	case OpIsNil:
		return "IsNil"
	}
	return "UnaryOp(?)"
}

// UnaryNode applies Op to Operand.
type UnaryNode struct {
	Op      UnaryOp
	Operand Node
	typ     Type
}

// MakeUnary creates a unary operation.
func MakeUnary(op UnaryOp, operand Node) *UnaryNode {
	requireNode(op.String(), "operand", operand)
	t := operand.Type()
	switch op {
	case OpNot:
		RequireBool("Not", operand)
	case OpNegate:
		if !isNumeric(t) {
			fail(errors.TypeMismatch(errors.PhaseConstruct, "Negate", Named(Float64Type), Named(t)))
		}
	case OpIsNil:
		if !Nillable(t) {
			fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
				Node("IsNil").
				Type(TypeString(t)).
				Detail("operand cannot be nil").
				Build())
		}
		t = BoolType
	default:
		fail(errors.InvalidInput(errors.PhaseConstruct, "unknown unary operator"))
	}
	return &UnaryNode{Op: op, Operand: operand, typ: t}
}

func Not(x Node) *UnaryNode    { return MakeUnary(OpNot, x) }
func Negate(x Node) *UnaryNode { return MakeUnary(OpNegate, x) }
func IsNil(x Node) *UnaryNode  { return MakeUnary(OpIsNil, x) }

func (n *UnaryNode) Kind() Kind { return KindUnary }
func (n *UnaryNode) Type() Type { return n.typ }

func (n *UnaryNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Operand))
}

// Update returns n when the operand is unchanged.
func (n *UnaryNode) Update(operand Node) *UnaryNode {
	if operand == n.Operand {
		return n
	}
	return MakeUnary(n.Op, operand)
}

// ConvertNode converts Operand to its type. Supported conversions are numeric
// conversions, assignment (boxing into interfaces), assertion from an
// interface and lifting a value T to *T.
type ConvertNode struct {
	Operand Node
	typ     Type
}

// Convert creates a conversion of x to t.
func Convert(x Node, t Type) *ConvertNode {
	requireNode("Convert", "operand", x)
	if !Convertible(x.Type(), t) {
		fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node("Convert").
			Type(TypeString(x.Type())).
			Detail("cannot convert to %s", TypeString(t)).
			Build())
	}
	return &ConvertNode{Operand: x, typ: t}
}

// Convertible reports whether Convert accepts from and to.
func Convertible(from, to Type) bool {
	switch {
	case IsVoid(from) || IsVoid(to):
		return false
	case assignable(from, to):
		return true
	case isNumeric(from) && isNumeric(to):
		return true
	case from.Kind() == reflect.Interface:
		return to.Kind() == reflect.Interface || to.Implements(from)
	case to.Kind() == reflect.Pointer && to.Elem() == from:
		return true
	}
	return false
}

func (n *ConvertNode) Kind() Kind { return KindConvert }
func (n *ConvertNode) Type() Type { return n.typ }

func (n *ConvertNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Operand))
}

// Update returns n when the operand is unchanged.
func (n *ConvertNode) Update(operand Node) *ConvertNode {
	if operand == n.Operand {
		return n
	}
	return Convert(operand, n.typ)
}

// TypeIsNode reports whether Operand is non-nil and its dynamic type is
// assignable to Test.
type TypeIsNode struct {
	Operand Node
	Test    Type
}

// TypeIs creates a dynamic type test.
func TypeIs(x Node, t Type) *TypeIsNode {
	requireNode("TypeIs", "operand", x)
	if IsVoid(t) || IsVoid(x.Type()) {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "TypeIs", Named(AnyType), Named(Void)))
	}
	return &TypeIsNode{Operand: x, Test: t}
}

func (n *TypeIsNode) Kind() Kind { return KindTypeIs }
func (n *TypeIsNode) Type() Type { return BoolType }

func (n *TypeIsNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Operand))
}

// Update returns n when the operand is unchanged.
func (n *TypeIsNode) Update(operand Node) *TypeIsNode {
	if operand == n.Operand {
		return n
	}
	return TypeIs(operand, n.Test)
}

// MemberNode reads an exported field of a struct or struct pointer.
type MemberNode struct {
	Object Node
	Field  string
	Index  []int
	typ    Type
}

// Member creates a field read.
func Member(obj Node, field string) *MemberNode {
	requireNode("Member", "object", obj)
	t := obj.Type()
	st := t
	if !IsVoid(st) && st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if IsVoid(st) || st.Kind() != reflect.Struct {
		fail(errors.TypeMismatch(errors.PhaseConstruct, "Member "+field, Named(reflect.TypeFor[struct{}]()), Named(t)))
	}
	f, ok := st.FieldByName(field)
	if !ok || !f.IsExported() {
		fail(errors.NotFound(errors.PhaseConstruct, "field of "+TypeString(st), field))
	}
	return &MemberNode{Object: obj, Field: field, Index: f.Index, typ: f.Type}
}

func (n *MemberNode) Kind() Kind { return KindMember }
func (n *MemberNode) Type() Type { return n.typ }

func (n *MemberNode) RewriteChildren(v Visitor) Node {
	return n.Update(v.Visit(n.Object))
}

// Update returns n when the object is unchanged.
func (n *MemberNode) Update(obj Node) *MemberNode {
	if obj == n.Object {
		return n
	}
	return Member(obj, n.Field)
}
