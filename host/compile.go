package host

import (
	"context"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/task"
	"go.uber.org/zap"
)

type labelSet map[*expr.LabelTarget]struct{}

// program is the read-only compiled form shared by every call.
type program struct {
	root expr.Node
	// places maps a node to the labels placed in its subtree, excluding
	// nested lambdas.
	places map[expr.Node]labelSet
}

// Func is a compiled tree. A lambda root is called with its parameters; any
// other root is evaluated without arguments.
type Func struct {
	prog   *program
	lambda *expr.LambdaNode
}

// Compile compiles a native tree. It fails when the tree still holds
// extension nodes.
func Compile(n expr.Node) (*Func, error) {
	if n == nil {
		return nil, errors.InvalidInput(errors.PhaseCompile, "nil tree")
	}
	var found expr.Node
	expr.Walk(n, func(c expr.Node) bool {
		if found == nil && expr.IsExtension(c) {
			found = c
		}
		return found == nil
	})
	if found != nil {
		name := found.Kind().String()
		if x, ok := found.(expr.Extension); ok {
			name = x.ExtensionName()
		}
		err := errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Node(name).
			Detail("extension node must be reduced before compiling").
			Build()
		Logger().Debug("compile rejected", zap.Error(err))
		return nil, err
	}

	p := &program{root: n, places: make(map[expr.Node]labelSet)}
	p.index(n)
	f := &Func{prog: p}
	if l, ok := n.(*expr.LambdaNode); ok {
		f.lambda = l
	}
	return f, nil
}

// index records the labels placed under n and returns them.
func (p *program) index(n expr.Node) labelSet {
	if s, ok := p.places[n]; ok {
		return s
	}
	if l, ok := n.(*expr.LambdaNode); ok {
		p.places[n] = nil
		p.index(l.Body)
		return nil
	}
	var s labelSet
	if l, ok := n.(*expr.LabelNode); ok {
		s = labelSet{l.Target: {}}
	}
	n.RewriteChildren(&expr.Rewriter{Node: func(c expr.Node) expr.Node {
		for l := range p.index(c) {
			if s == nil {
				s = make(labelSet)
			}
			s[l] = struct{}{}
		}
		return c
	}})
	p.places[n] = s
	return s
}

// placed reports whether l is placed in the subtree of n.
func (p *program) placed(n expr.Node, l *expr.LabelTarget) bool {
	if n == nil {
		return false
	}
	_, ok := p.places[n][l]
	return ok
}

// Params returns the parameters of a lambda root.
func (f *Func) Params() []*expr.Variable {
	if f.lambda == nil {
		return nil
	}
	return f.lambda.Params
}

// Call evaluates the tree. Thrown exceptions and faults are returned as the
// error.
func (f *Func) Call(args ...any) (any, error) {
	if f.lambda == nil {
		if len(args) != 0 {
			return nil, errors.Arity(errors.PhaseExecute, "Func", 0, len(args))
		}
		v, err := f.prog.eval(f.prog.root, newScope(nil, nil), nil)
		if j, ok := asJump(err); ok {
			return nil, fault(f.prog.root, "jump to label %s leaves the tree", j.target.Name)
		}
		return v, err
	}
	c := &closure{prog: f.prog, lambda: f.lambda}
	return c.Call(args...)
}

// Wait calls the tree and, when it yields a task, waits for its outcome.
func (f *Func) Wait(ctx context.Context, args ...any) (any, error) {
	v, err := f.Call(args...)
	if err != nil {
		return nil, err
	}
	if t, ok := v.(*task.Task); ok {
		return task.Wait(ctx, t)
	}
	return v, nil
}

var _ expr.Callable = (*Func)(nil)
