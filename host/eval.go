package host

import (
	"reflect"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"go.uber.org/zap"
)

// eval evaluates n in s. When j is set, evaluation resumes at the label j
// targets, which must be placed under n; nodes with a single operand pass the
// resumption on unchanged. A jump raised inside n to a label placed under n
// re-enters n.
func (p *program) eval(n expr.Node, s *scope, j *jump) (any, error) {
	for {
		v, err := p.step(n, s, j)
		jj, ok := asJump(err)
		if !ok || !p.placed(n, jj.target) {
			return v, err
		}
		j = jj
	}
}

func (p *program) step(n expr.Node, s *scope, j *jump) (any, error) {
	switch n := n.(type) {
	case *expr.ConstantNode:
		return n.Value, nil
	case *expr.DefaultNode:
		return zero(n.Type()), nil
	case *expr.Variable:
		return s.get(n)
	case *expr.AssignNode:
		v, err := p.eval(n.Value, s, j)
		if err != nil {
			return nil, err
		}
		return v, s.set(n.Target, v)
	case *expr.BlockNode:
		return p.block(n, s, j)
	case *expr.ConditionalNode:
		return p.conditional(n, s, j)
	case *expr.LoopNode:
		return p.loop(n, s, j)
	case *expr.GotoNode:
		var v any
		if n.Value != nil {
			var err error
			if v, err = p.eval(n.Value, s, j); err != nil {
				return nil, err
			}
		} else if j != nil {
			return nil, cannotEnter(n, j.target)
		}
		return nil, &jump{target: n.Target, value: v}
	case *expr.LabelNode:
		switch {
		case j != nil && j.target == n.Target:
			return j.value, nil
		case n.Default == nil:
			return nil, nil
		}
		return p.eval(n.Default, s, j)
	case *expr.SwitchNode:
		return p.switchNode(n, s, j)
	case *expr.TryNode:
		return p.try(n, s, j)
	case *expr.ThrowNode:
		return p.throw(n, s, j)
	case *expr.CallNode:
		return p.call(n, s, j)
	case *expr.InvokeNode:
		return p.invoke(n, s, j)
	case *expr.LambdaNode:
		if j != nil {
			return nil, cannotEnter(n, j.target)
		}
		return &closure{prog: p, lambda: n, scope: s}, nil
	case *expr.BinaryNode:
		return p.binary(n, s, j)
	case *expr.UnaryNode:
		v, err := p.eval(n.Operand, s, j)
		if err != nil {
			return nil, err
		}
		return unary(n, v)
	case *expr.ConvertNode:
		v, err := p.eval(n.Operand, s, j)
		if err != nil {
			return nil, err
		}
		return convert(n, v, n.Type())
	case *expr.TypeIsNode:
		v, err := p.eval(n.Operand, s, j)
		if err != nil {
			return nil, err
		}
		return !isNil(v) && reflect.TypeOf(v).AssignableTo(n.Test), nil
	case *expr.MemberNode:
		v, err := p.eval(n.Object, s, j)
		if err != nil {
			return nil, err
		}
		return member(n, v)
	}
	return nil, errors.New(errors.PhaseExecute, errors.KindUnsupported).
		Node(n.Kind().String()).
		Detail("node cannot be evaluated").
		Build()
}

// operands evaluates ops left to right. A resumption must target the first
// operand.
func (p *program) operands(n expr.Node, s *scope, j *jump, ops []expr.Node) ([]any, error) {
	if j != nil && (len(ops) == 0 || !p.placed(ops[0], j.target)) {
		return nil, cannotEnter(n, j.target)
	}
	vals := make([]any, len(ops))
	for i, op := range ops {
		v, err := p.eval(op, s, j)
		if err != nil {
			return nil, err
		}
		j = nil
		vals[i] = v
	}
	return vals, nil
}

func (p *program) block(n *expr.BlockNode, s *scope, j *jump) (any, error) {
	bs := newScope(s, n.Variables)
	i := 0
	if j != nil {
		if i = p.child(n.Exprs, j.target); i < 0 {
			return nil, cannotEnter(n, j.target)
		}
	}
	var last any
	for i < len(n.Exprs) {
		v, err := p.eval(n.Exprs[i], bs, j)
		j = nil
		if err != nil {
			jj, ok := asJump(err)
			if !ok {
				return nil, err
			}
			k := p.child(n.Exprs, jj.target)
			if k < 0 {
				return nil, err
			}
			i, j = k, jj
			continue
		}
		last = v
		i++
	}
	if expr.IsVoid(n.Type()) {
		return nil, nil
	}
	return last, nil
}

// child returns the index of the expression placing l, or -1.
func (p *program) child(list []expr.Node, l *expr.LabelTarget) int {
	for i, c := range list {
		if p.placed(c, l) {
			return i
		}
	}
	return -1
}

func (p *program) conditional(n *expr.ConditionalNode, s *scope, j *jump) (any, error) {
	var branch expr.Node
	switch {
	case j == nil:
		t, err := p.eval(n.Test, s, nil)
		if err != nil {
			return nil, err
		}
		branch = n.IfFalse
		if b, _ := t.(bool); b {
			branch = n.IfTrue
		}
	case p.placed(n.IfTrue, j.target):
		branch = n.IfTrue
	case p.placed(n.IfFalse, j.target):
		branch = n.IfFalse
	default:
		return nil, cannotEnter(n, j.target)
	}
	v, err := p.eval(branch, s, j)
	if err != nil || expr.IsVoid(n.Type()) {
		return nil, err
	}
	return v, nil
}

func (p *program) loop(n *expr.LoopNode, s *scope, j *jump) (any, error) {
	for {
		_, err := p.eval(n.Body, s, j)
		j = nil
		if err == nil {
			continue
		}
		jj, ok := asJump(err)
		switch {
		case !ok:
			return nil, err
		case jj.target == n.Break:
			return jj.value, nil
		case jj.target == n.Continue:
		case p.placed(n.Body, jj.target):
			j = jj
		default:
			return nil, err
		}
	}
}

func (p *program) switchNode(n *expr.SwitchNode, s *scope, j *jump) (any, error) {
	var body expr.Node
	if j != nil {
		for _, c := range n.Cases {
			if p.placed(c.Body, j.target) {
				body = c.Body
				break
			}
		}
		if body == nil && p.placed(n.DefaultBody, j.target) {
			body = n.DefaultBody
		}
		if body == nil {
			return nil, cannotEnter(n, j.target)
		}
	} else {
		v, err := p.eval(n.Value, s, nil)
		if err != nil {
			return nil, err
		}
	cases:
		for _, c := range n.Cases {
			for _, tv := range c.TestValues {
				x, err := p.eval(tv, s, nil)
				if err != nil {
					return nil, err
				}
				if equal(v, x) {
					body = c.Body
					break cases
				}
			}
		}
		if body == nil {
			body = n.DefaultBody
		}
		if body == nil {
			return nil, nil
		}
	}
	v, err := p.eval(body, s, j)
	if err != nil || expr.IsVoid(n.Type()) {
		return nil, err
	}
	return v, nil
}

func (p *program) try(n *expr.TryNode, s *scope, j *jump) (any, error) {
	if j != nil && !p.placed(n.Body, j.target) {
		return nil, cannotEnter(n, j.target)
	}
	v, err := p.eval(n.Body, s, j)
	if err != nil {
		if _, ok := asJump(err); !ok {
			for _, h := range n.Handlers {
				if !catches(h.Test, err) {
					continue
				}
				hs := &scope{parent: s, vars: make(map[*expr.Variable]any, 1), exception: err, handling: true}
				if h.Variable != nil {
					hs.vars[h.Variable] = err
				}
				v, err = p.eval(h.Body, hs, nil)
				break
			}
		}
	}
	if n.Finally != nil {
		if _, ferr := p.eval(n.Finally, s, nil); ferr != nil {
			return nil, ferr
		}
	}
	if err != nil || expr.IsVoid(n.Type()) {
		return nil, err
	}
	return v, nil
}

func catches(t expr.Type, err error) bool {
	return reflect.TypeOf(err).AssignableTo(t)
}

func (p *program) throw(n *expr.ThrowNode, s *scope, j *jump) (any, error) {
	if n.Value == nil {
		if j != nil {
			return nil, cannotEnter(n, j.target)
		}
		exc, ok := s.handled()
		if !ok {
			return nil, fault(n, "rethrow outside a handler")
		}
		return nil, exc
	}
	v, err := p.eval(n.Value, s, j)
	if err != nil {
		return nil, err
	}
	exc, ok := v.(error)
	if !ok || isNil(v) {
		return nil, fault(n, "throw of a nil exception")
	}
	return nil, exc
}

func (p *program) call(n *expr.CallNode, s *scope, j *jump) (any, error) {
	ops := n.Args
	if n.Object != nil {
		ops = append([]expr.Node{n.Object}, n.Args...)
	}
	vals, err := p.operands(n, s, j, ops)
	if err != nil {
		return nil, err
	}
	var recv any
	if n.Object != nil {
		recv, vals = vals[0], vals[1:]
	}
	return invokeMethod(n.Method, recv, vals)
}

// invokeMethod calls a host function, converting a panic into an exception.
func invokeMethod(m *expr.Method, recv any, args []any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("recovered panic in host function",
				zap.String("method", m.String()),
				zap.Any("panic", r))
			v, err = nil, &PanicError{Method: m.String(), Value: r}
		}
	}()
	return m.Invoke(recv, args...)
}

func (p *program) invoke(n *expr.InvokeNode, s *scope, j *jump) (any, error) {
	vals, err := p.operands(n, s, j, append([]expr.Node{n.Target}, n.Args...))
	if err != nil {
		return nil, err
	}
	fn, ok := vals[0].(expr.Callable)
	if !ok || isNil(vals[0]) {
		return nil, fault(n, "invoke of a nil callable")
	}
	v, err := fn.Call(vals[1:]...)
	if err != nil || expr.IsVoid(n.Type()) {
		return nil, err
	}
	return convert(n, v, n.Type())
}

func (p *program) binary(n *expr.BinaryNode, s *scope, j *jump) (any, error) {
	if n.Op.ShortCircuit() {
		l, err := p.eval(n.Left, s, j)
		if err != nil {
			return nil, err
		}
		lb, _ := l.(bool)
		if lb == (n.Op == expr.OpOrElse) {
			return lb, nil
		}
		r, err := p.eval(n.Right, s, nil)
		if err != nil {
			return nil, err
		}
		rb, _ := r.(bool)
		return rb, nil
	}
	vals, err := p.operands(n, s, j, []expr.Node{n.Left, n.Right})
	if err != nil {
		return nil, err
	}
	return binary(n, vals[0], vals[1])
}

// closure is the run-time value of a lambda.
type closure struct {
	prog   *program
	lambda *expr.LambdaNode
	scope  *scope
}

// Call runs the lambda body in a fresh activation.
func (c *closure) Call(args ...any) (any, error) {
	l := c.lambda
	if len(args) != len(l.Params) {
		return nil, errors.Arity(errors.PhaseExecute, "Lambda "+l.Name, len(l.Params), len(args))
	}
	s := &scope{parent: c.scope, vars: make(map[*expr.Variable]any, len(l.Params))}
	for i, param := range l.Params {
		v, err := argument(l, args[i], param.Type())
		if err != nil {
			return nil, err
		}
		s.vars[param] = v
	}
	v, err := c.prog.eval(l.Body, s, nil)
	if j, ok := asJump(err); ok {
		return nil, fault(l, "jump to label %s leaves lambda %s", j.target.Name, l.Name)
	}
	if err != nil || expr.IsVoid(l.Result) {
		return nil, err
	}
	return v, nil
}

var _ expr.Callable = (*closure)(nil)
