package expr

import "github.com/wippyai/exprtree/errors"

// Variable is a storage location identified by reference identity.
type Variable struct {
	Name string
	typ  Type
}

// NewVariable creates a fresh variable of type t.
func NewVariable(t Type, name string) *Variable {
	if IsVoid(t) {
		fail(errors.New(errors.PhaseConstruct, errors.KindTypeMismatch).
			Node("Variable " + name).
			Detail("variable cannot be void").
			Build())
	}
	return &Variable{Name: name, typ: t}
}

func (v *Variable) Kind() Kind                   { return KindVariable }
func (v *Variable) Type() Type                   { return v.typ }
func (v *Variable) RewriteChildren(Visitor) Node { return v }
func (v *Variable) String() string               { return v.Name }

// Clone returns a distinct variable with the same name and type.
func (v *Variable) Clone() *Variable {
	return &Variable{Name: v.Name, typ: v.typ}
}

// LabelTarget is a jump destination identified by reference identity.
type LabelTarget struct {
	Name string
	typ  Type
}

// NewLabel creates a label receiving values of type t; nil or Void makes a
// statement label.
func NewLabel(t Type, name string) *LabelTarget {
	if t == nil {
		t = Void
	}
	return &LabelTarget{Name: name, typ: t}
}

// VoidLabel creates a statement label.
func VoidLabel(name string) *LabelTarget {
	return NewLabel(Void, name)
}

func (l *LabelTarget) Type() Type     { return l.typ }
func (l *LabelTarget) String() string { return l.Name }

// Clone returns a distinct label with the same name and type.
func (l *LabelTarget) Clone() *LabelTarget {
	return &LabelTarget{Name: l.Name, typ: l.typ}
}

// CheckDeclarations fails construction when vars holds the same variable twice.
func CheckDeclarations(node string, vars []*Variable) {
	if len(vars) < 2 {
		return
	}
	seen := make(map[*Variable]struct{}, len(vars))
	for _, v := range vars {
		if v == nil {
			fail(errors.InvalidInput(errors.PhaseConstruct, node+": nil variable declaration"))
		}
		if _, dup := seen[v]; dup {
			fail(errors.DuplicateDeclaration(errors.PhaseConstruct, node, v.Name))
		}
		seen[v] = struct{}{}
	}
}

// RequireVoidLabel fails construction when l carries a value.
func RequireVoidLabel(node string, l *LabelTarget) {
	if l != nil && !IsVoid(l.typ) {
		fail(errors.NonVoidLabel(errors.PhaseConstruct, node, l.Name))
	}
}
