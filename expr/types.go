package expr

import "reflect"

// Type is the static type of a node.
type Type = reflect.Type

type voidType struct{}

// Common types.
var (
	Void         = reflect.TypeFor[voidType]()
	AnyType      = reflect.TypeFor[any]()
	BoolType     = reflect.TypeFor[bool]()
	IntType      = reflect.TypeFor[int]()
	Int64Type    = reflect.TypeFor[int64]()
	Float64Type  = reflect.TypeFor[float64]()
	StringType   = reflect.TypeFor[string]()
	ErrorType    = reflect.TypeFor[error]()
	CallableType = reflect.TypeFor[Callable]()
)

// Callable is the run-time value of a lambda.
type Callable interface {
	Call(args ...any) (any, error)
}

// TypeOf returns the Type of T.
func TypeOf[T any]() Type {
	return reflect.TypeFor[T]()
}

// IsVoid reports whether t carries no value.
func IsVoid(t Type) bool {
	return t == nil || t == Void
}

// Nillable reports whether values of t can be nil.
func Nillable(t Type) bool {
	if IsVoid(t) {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// IsError reports whether t can be raised as an exception.
func IsError(t Type) bool {
	return !IsVoid(t) && t.Implements(ErrorType)
}

// TypeString renders t for diagnostics and dumps.
func TypeString(t Type) string {
	if IsVoid(t) {
		return "void"
	}
	return t.String()
}

// assignable reports whether a value of type from may be stored into to.
func assignable(from, to Type) bool {
	if IsVoid(to) {
		return true
	}
	if IsVoid(from) {
		return false
	}
	return from.AssignableTo(to)
}

func isNumeric(t Type) bool {
	if IsVoid(t) {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
