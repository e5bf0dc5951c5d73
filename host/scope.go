package host

import (
	"reflect"

	"github.com/wippyai/exprtree/expr"
)

// scope holds the storage of one activation of a scope-bearing node.
type scope struct {
	vars   map[*expr.Variable]any
	parent *scope
	// exception is the exception being handled, for rethrow.
	exception error
	handling  bool
}

func newScope(parent *scope, vars []*expr.Variable) *scope {
	if len(vars) == 0 && parent != nil {
		return parent
	}
	s := &scope{parent: parent, vars: make(map[*expr.Variable]any, len(vars))}
	for _, v := range vars {
		s.vars[v] = zero(v.Type())
	}
	return s
}

func (s *scope) lookup(v *expr.Variable) (*scope, bool) {
	for c := s; c != nil; c = c.parent {
		if _, ok := c.vars[v]; ok {
			return c, true
		}
	}
	return nil, false
}

func (s *scope) get(v *expr.Variable) (any, error) {
	c, ok := s.lookup(v)
	if !ok {
		return nil, fault(v, "variable %s is not in scope", v.Name)
	}
	return c.vars[v], nil
}

func (s *scope) set(v *expr.Variable, x any) error {
	c, ok := s.lookup(v)
	if !ok {
		return fault(v, "variable %s is not in scope", v.Name)
	}
	c.vars[v] = x
	return nil
}

// handled returns the exception of the innermost enclosing handler.
func (s *scope) handled() (error, bool) {
	for c := s; c != nil; c = c.parent {
		if c.handling {
			return c.exception, true
		}
	}
	return nil, false
}

func zero(t expr.Type) any {
	if expr.IsVoid(t) {
		return nil
	}
	return reflect.Zero(t).Interface()
}
