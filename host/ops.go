package host

import (
	"cmp"
	"math"
	"reflect"

	"github.com/wippyai/exprtree/expr"
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func equal(l, r any) bool {
	ln, rn := isNil(l), isNil(r)
	if ln || rn {
		return ln && rn
	}
	lt := reflect.TypeOf(l)
	if lt != reflect.TypeOf(r) || !lt.Comparable() {
		return false
	}
	return l == r
}

func unary(n *expr.UnaryNode, v any) (any, error) {
	switch n.Op {
	case expr.OpNot:
		b, _ := v.(bool)
		return !b, nil
	case expr.OpIsNil:
		return isNil(v), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fault(n, "negate of nil")
	}
	out := reflect.New(rv.Type()).Elem()
	switch k := rv.Kind(); {
	case isInt(k):
		out.SetInt(-rv.Int())
	case isUint(k):
		out.SetUint(-rv.Uint())
	case isFloat(k):
		out.SetFloat(-rv.Float())
	default:
		return nil, fault(n, "cannot negate %s", rv.Type())
	}
	return out.Interface(), nil
}

func binary(n *expr.BinaryNode, l, r any) (any, error) {
	switch n.Op {
	case expr.OpEqual:
		return equal(l, r), nil
	case expr.OpNotEqual:
		return !equal(l, r), nil
	}
	lv, rv := reflect.ValueOf(l), reflect.ValueOf(r)
	if !lv.IsValid() || !rv.IsValid() {
		return nil, fault(n, "%s of nil operand", n.Op)
	}
	t := lv.Type()
	out := reflect.New(t).Elem()
	switch k := t.Kind(); {
	case isInt(k):
		a, b := lv.Int(), rv.Int()
		if c, ok := compare(n.Op, a, b); ok {
			return c, nil
		}
		if (n.Op == expr.OpDivide || n.Op == expr.OpModulo) && b == 0 {
			return nil, fault(n, "integer division by zero")
		}
		x, ok := integer(n.Op, a, b)
		if !ok {
			break
		}
		out.SetInt(x)
		return out.Interface(), nil
	case isUint(k):
		a, b := lv.Uint(), rv.Uint()
		if c, ok := compare(n.Op, a, b); ok {
			return c, nil
		}
		if (n.Op == expr.OpDivide || n.Op == expr.OpModulo) && b == 0 {
			return nil, fault(n, "integer division by zero")
		}
		x, ok := integer(n.Op, a, b)
		if !ok {
			break
		}
		out.SetUint(x)
		return out.Interface(), nil
	case isFloat(k):
		a, b := lv.Float(), rv.Float()
		if c, ok := compare(n.Op, a, b); ok {
			return c, nil
		}
		var x float64
		switch n.Op {
		case expr.OpAdd:
			x = a + b
		case expr.OpSubtract:
			x = a - b
		case expr.OpMultiply:
			x = a * b
		case expr.OpDivide:
			x = a / b
		case expr.OpModulo:
			x = math.Mod(a, b)
		}
		out.SetFloat(x)
		return out.Interface(), nil
	case k == reflect.String:
		a, b := lv.String(), rv.String()
		if c, ok := compare(n.Op, a, b); ok {
			return c, nil
		}
		if n.Op == expr.OpAdd {
			out.SetString(a + b)
			return out.Interface(), nil
		}
	}
	return nil, fault(n, "%s is not defined on %s", n.Op, t)
}

func compare[T cmp.Ordered](op expr.BinaryOp, a, b T) (bool, bool) {
	switch op {
	case expr.OpLessThan:
		return a < b, true
	case expr.OpLessThanOrEqual:
		return a <= b, true
	case expr.OpGreaterThan:
		return a > b, true
	case expr.OpGreaterThanOrEqual:
		return a >= b, true
	}
	return false, false
}

func integer[T int64 | uint64](op expr.BinaryOp, a, b T) (T, bool) {
	switch op {
	case expr.OpAdd:
		return a + b, true
	case expr.OpSubtract:
		return a - b, true
	case expr.OpMultiply:
		return a * b, true
	case expr.OpDivide:
		return a / b, true
	case expr.OpModulo:
		return a % b, true
	}
	return 0, false
}

// convert applies the conversions accepted by expr.Convert to a run-time
// value.
func convert(n expr.Node, v any, t expr.Type) (any, error) {
	if isNil(v) {
		switch {
		case v != nil && reflect.TypeOf(v).AssignableTo(t):
			return v, nil
		case expr.Nillable(t):
			return zero(t), nil
		}
		return nil, fault(n, "cannot convert nil to %s", expr.TypeString(t))
	}
	rv := reflect.ValueOf(v)
	vt := rv.Type()
	switch {
	case vt == t:
		return v, nil
	case t.Kind() == reflect.Interface:
		if vt.Implements(t) {
			return v, nil
		}
		return nil, fault(n, "%s does not implement %s", vt, t)
	case t.Kind() == reflect.Pointer && t.Elem() == vt:
		ptr := reflect.New(vt)
		ptr.Elem().Set(rv)
		return ptr.Interface(), nil
	case isNumeric(vt.Kind()) && isNumeric(t.Kind()), vt.AssignableTo(t):
		return rv.Convert(t).Interface(), nil
	}
	return nil, fault(n, "value of type %s is not a %s", vt, expr.TypeString(t))
}

// argument binds a call argument to a parameter of type t. A nil argument
// is the zero value.
func argument(n expr.Node, v any, t expr.Type) (any, error) {
	if v == nil {
		return zero(t), nil
	}
	return convert(n, v, t)
}

func member(n *expr.MemberNode, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fault(n, "read of %s on nil", n.Field)
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fault(n, "read of %s on nil", n.Field)
		}
		rv = rv.Elem()
	}
	f, err := rv.FieldByIndexErr(n.Index)
	if err != nil {
		return nil, fault(n, "read of %s: %v", n.Field, err)
	}
	return f.Interface(), nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}
