package expr

import (
	"fmt"
	"reflect"

	"github.com/wippyai/exprtree/errors"
)

// Method is a host function callable from trees. A trailing error result is
// the raised-exception channel and is not part of the result type.
type Method struct {
	Name     string
	Receiver Type
	Params   []Type
	Result   Type
	Raises   bool

	fn      reflect.Value
	dynamic bool
}

// FuncOf binds a Go function as a free host function.
func FuncOf(name string, fn any) *Method {
	return bind(name, fn)
}

// MethodOf binds a Go function whose first parameter is the receiver.
func MethodOf(name string, fn any) *Method {
	m := bind(name, fn)
	if len(m.Params) == 0 {
		fail(errors.Arity(errors.PhaseConstruct, "Method "+name, 1, 0))
	}
	m.Receiver = m.Params[0]
	m.Params = m.Params[1:]
	return m
}

// MethodByName binds the method name of t. It fails construction when t has
// no such method.
func MethodByName(t Type, name string) *Method {
	m, ok := LookupMethod(t, name)
	if !ok {
		fail(errors.NotFound(errors.PhaseConstruct, "method of "+TypeString(t), name))
	}
	return m
}

// LookupMethod finds the method name of t. Methods of interface types are
// dispatched on the dynamic receiver.
func LookupMethod(t Type, name string) (*Method, bool) {
	if IsVoid(t) {
		return nil, false
	}
	rm, ok := t.MethodByName(name)
	if !ok {
		return nil, false
	}
	ft := rm.Type
	if ft.IsVariadic() {
		return nil, false
	}
	m := &Method{Name: name, Receiver: t}
	start := 1
	if t.Kind() == reflect.Interface {
		m.dynamic = true
		start = 0
	} else {
		m.fn = rm.Func
	}
	for i := start; i < ft.NumIn(); i++ {
		m.Params = append(m.Params, ft.In(i))
	}
	if !setResults(m, ft) {
		return nil, false
	}
	return m, true
}

func bind(name string, fn any) *Method {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		fail(errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Node("Method " + name).
			Detail("expected a func, got %T", fn).
			Build())
	}
	ft := v.Type()
	if ft.IsVariadic() {
		fail(errors.Unsupported(errors.PhaseConstruct, "variadic host function "+name))
	}
	m := &Method{Name: name, fn: v}
	for i := 0; i < ft.NumIn(); i++ {
		m.Params = append(m.Params, ft.In(i))
	}
	if !setResults(m, ft) {
		fail(errors.New(errors.PhaseConstruct, errors.KindArity).
			Node("Method " + name).
			Detail("expected at most one result besides error, got %d", ft.NumOut()).
			Build())
	}
	return m
}

func setResults(m *Method, ft reflect.Type) bool {
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == ErrorType {
		m.Raises = true
		n--
	}
	switch n {
	case 0:
		m.Result = Void
	case 1:
		m.Result = ft.Out(0)
	default:
		return false
	}
	return true
}

// String renders the signature for dumps.
func (m *Method) String() string {
	if m.Receiver != nil {
		return fmt.Sprintf("(%s).%s", TypeString(m.Receiver), m.Name)
	}
	return m.Name
}

// Invoke calls the bound function. recv is ignored for free functions.
func (m *Method) Invoke(recv any, args ...any) (any, error) {
	if len(args) != len(m.Params) {
		return nil, errors.Arity(errors.PhaseExecute, m.String(), len(m.Params), len(args))
	}
	in := make([]reflect.Value, 0, len(args)+1)
	fn := m.fn
	switch {
	case m.dynamic:
		if recv == nil {
			return nil, errors.RuntimeFault(m.String(), "nil receiver")
		}
		fn = reflect.ValueOf(recv).MethodByName(m.Name)
		if !fn.IsValid() {
			return nil, errors.RuntimeFault(m.String(), fmt.Sprintf("%T has no method %s", recv, m.Name))
		}
	case m.Receiver != nil:
		rv, err := argValue(m.String(), recv, m.Receiver)
		if err != nil {
			return nil, err
		}
		in = append(in, rv)
	}
	for i, a := range args {
		av, err := argValue(m.String(), a, m.Params[i])
		if err != nil {
			return nil, err
		}
		in = append(in, av)
	}
	out := fn.Call(in)
	if m.Raises {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func argValue(node string, a any, t Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Type()) && isNumeric(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, errors.RuntimeFault(node, fmt.Sprintf("cannot use %s as %s", v.Type(), TypeString(t)))
}
