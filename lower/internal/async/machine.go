package async

import (
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/task"
	"go.uber.org/zap"
)

const (
	stateRunning  = -1
	stateFinished = -2
)

var (
	sourceType = expr.TypeOf[*task.Source]()

	newSource    = expr.FuncOf("task.NewSource", task.NewSource)
	fromResult   = expr.FuncOf("task.FromResult", task.FromResult)
	fromError    = expr.FuncOf("task.FromError", task.FromError)
	sourceTask   = expr.MethodByName(sourceType, "Task")
	setResult    = expr.MethodByName(sourceType, "SetResult")
	setException = expr.MethodByName(sourceType, "SetException")
	asAction     = expr.FuncOf("async.continuation", continuation)
)

// continuation adapts a move-next closure to the awaiter callback shape.
func continuation(moveNext expr.Callable) func() {
	return func() {
		if _, err := moveNext.Call(); err != nil {
			Logger().Warn("state machine continuation failed", zap.Error(err))
		}
	}
}

// machine carries the variables shared by all suspension points of one async
// lambda.
type machine struct {
	state     *expr.Variable
	source    *expr.Variable
	moveNext  *expr.Variable
	suspended *expr.Variable
	exit      *expr.LabelTarget

	awaiters []*expr.Variable
	resumes  []*expr.LabelTarget
}

func newMachine() *machine {
	return &machine{
		state:     expr.NewVariable(expr.IntType, "state"),
		source:    expr.NewVariable(sourceType, "builder"),
		moveNext:  expr.NewVariable(expr.CallableType, "moveNext"),
		suspended: expr.NewVariable(expr.BoolType, "suspended"),
		exit:      expr.VoidLabel("exit"),
	}
}

// rewrite replaces suspension points outside nested lambdas and guards the
// finally blocks that enclose them.
func (m *machine) rewrite(n expr.Node) expr.Node {
	switch n.(type) {
	case nil:
		return nil
	case *expr.LambdaNode, *ext.AsyncLambdaNode:
		return n
	}
	out := n.RewriteChildren(&expr.Rewriter{Node: m.rewrite})
	switch x := out.(type) {
	case *ext.AwaitNode:
		return m.await(x)
	case *expr.TryNode:
		if x.Finally != nil && hasAwait(n.(*expr.TryNode).Body) {
			return x.Update(x.Body, x.Handlers, expr.IfThen(expr.Not(m.suspended), x.Finally))
		}
	}
	return out
}

// await expands suspension point k. Resuming jumps to the label after the
// suspension, where the result is fetched.
func (m *machine) await(n *ext.AwaitNode) expr.Node {
	k := len(m.resumes) + 1
	aw := expr.NewVariable(n.Info.Awaiter, "awaiter")
	resume := expr.VoidLabel("resume")
	m.awaiters = append(m.awaiters, aw)
	m.resumes = append(m.resumes, resume)

	suspend := expr.BlockTyped(expr.Void, nil,
		expr.Assign(m.state, expr.Constant(k)),
		expr.Assign(m.suspended, expr.Constant(true)),
		expr.CallMethod(aw, n.Info.OnCompleted, expr.Call(asAction, m.moveNext)),
		expr.Goto(m.exit),
	)
	return expr.BlockTyped(n.Type(), nil,
		expr.Assign(aw, expr.CallMethod(n.Operand, n.Info.GetAwaiter)),
		expr.IfThen(expr.Not(expr.CallMethod(aw, n.Info.IsCompleted)), suspend),
		expr.Label(resume, nil),
		expr.Assign(m.state, expr.Constant(stateRunning)),
		expr.CallMethod(aw, n.Info.GetResult),
	)
}

// dispatch jumps to the resume label of the current state.
func (m *machine) dispatch() expr.Node {
	cases := make([]*expr.SwitchCase, len(m.resumes))
	for i, l := range m.resumes {
		cases[i] = expr.Case(expr.Goto(l), expr.Constant(i+1))
	}
	return expr.Switch(expr.Void, m.state, nil, cases...)
}

// build assembles the outer lambda around the rewritten body.
func (m *machine) build(n *ext.AsyncLambdaNode, body expr.Node, hoisted []*expr.Variable) *expr.LambdaNode {
	e := expr.NewVariable(expr.ErrorType, "exception")
	locals := []*expr.Variable{m.suspended}

	run := body
	var value expr.Node = expr.ConstantOf(nil, expr.AnyType)
	if !expr.IsVoid(n.Result) {
		result := expr.NewVariable(n.Result, "result")
		locals = append(locals, result)
		run = expr.Assign(result, body)
		value = result
	}

	fault := expr.BlockTyped(expr.Void, nil,
		expr.Assign(m.state, expr.Constant(stateFinished)),
		expr.CallMethod(m.source, setException, e),
		expr.Goto(m.exit),
	)
	step := expr.BlockVars(locals,
		expr.TryTyped(expr.Void, expr.BlockTyped(expr.Void, nil, m.dispatch(), run), nil, expr.Catch(e, fault)),
		expr.Assign(m.state, expr.Constant(stateFinished)),
		expr.CallMethod(m.source, setResult, value),
		expr.Label(m.exit, nil),
	)

	// The task is read before the first step runs and kept outside the
	// machine scope, which a continuation may write from another goroutine
	// once the first step has suspended.
	t := expr.NewVariable(ext.TaskType, "task")
	vars := append([]*expr.Variable{m.state, m.source, m.moveNext}, hoisted...)
	vars = append(vars, m.awaiters...)
	start := expr.BlockVars(vars,
		expr.Assign(m.source, expr.Call(newSource)),
		expr.Assign(m.moveNext, expr.Lambda(n.Name+"$moveNext", expr.Void, step)),
		expr.Assign(t, expr.CallMethod(m.source, sourceTask)),
		expr.Invoke(expr.Void, m.moveNext),
	)
	outer := expr.BlockVars([]*expr.Variable{t}, start, t)
	return expr.Lambda(n.Name, ext.TaskType, outer, n.Params...)
}

// synchronous wraps a body without suspension points into a lambda returning
// a completed or faulted task.
func synchronous(n *ext.AsyncLambdaNode) *expr.LambdaNode {
	e := expr.NewVariable(expr.ErrorType, "exception")
	var done expr.Node
	if expr.IsVoid(n.Result) {
		done = expr.BlockTyped(ext.TaskType, nil, n.Body, expr.Call(fromResult, expr.ConstantOf(nil, expr.AnyType)))
	} else {
		done = expr.Call(fromResult, n.Body)
	}
	body := expr.TryTyped(ext.TaskType, done, nil, expr.Catch(e, expr.Call(fromError, e)))
	return expr.Lambda(n.Name, ext.TaskType, body, n.Params...)
}
