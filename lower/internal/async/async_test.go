package async

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/exprtree/dump"
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/task"
)

var ready = expr.FuncOf("ready", func() *task.Task { return task.FromResult(1) })

func await() *ext.AwaitNode {
	return ext.Await(expr.Call(ready))
}

func TestLambdas_NoAsync(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	tree := expr.Lambda("f", expr.IntType, x, x)
	got, err := Lambdas(tree)
	if err != nil {
		t.Fatalf("Lambdas: %v", err)
	}
	if got != tree {
		t.Errorf("tree without async lambdas was rebuilt")
	}
}

func TestLambdas_Errors(t *testing.T) {
	e := expr.NewVariable(expr.ErrorType, "e")

	tests := []struct {
		name  string
		tree  expr.Node
		phase errors.Phase
		kind  errors.Kind
	}{
		{
			name:  "await outside async lambda",
			tree:  expr.Lambda("f", expr.AnyType, await()),
			phase: errors.PhaseAsync,
			kind:  errors.KindInvalidInput,
		},
		{
			name: "await in nested plain lambda",
			tree: ext.AsyncLambda("f", expr.CallableType,
				expr.Lambda("g", expr.AnyType, await())),
			phase: errors.PhaseAsync,
			kind:  errors.KindInvalidInput,
		},
		{
			name: "await in catch",
			tree: ext.AsyncLambda("f", expr.Void,
				expr.Try(expr.Empty(), nil, expr.Catch(e, expr.BlockTyped(expr.Void, nil, await())))),
			phase: errors.PhaseAsync,
			kind:  errors.KindUnsupported,
		},
		{
			name: "await in finally",
			tree: ext.AsyncLambda("f", expr.Void,
				expr.Try(expr.Empty(), expr.BlockTyped(expr.Void, nil, await()))),
			phase: errors.PhaseAsync,
			kind:  errors.KindUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lambdas(tt.tree)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("got %v, want *errors.Error", err)
			}
			if e.Phase != tt.phase || e.Kind != tt.kind {
				t.Errorf("got [%s] %s, want [%s] %s", e.Phase, e.Kind, tt.phase, tt.kind)
			}
		})
	}
}

func TestLambda_Synchronous(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	got, err := Lambda(ext.AsyncLambda("f", expr.IntType, expr.Add(x, expr.Constant(1)), x))
	if err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if got.Result != ext.TaskType {
		t.Errorf("result %s, want task", expr.TypeString(got.Result))
	}
	if len(got.Params) != 1 || got.Params[0] != x {
		t.Errorf("parameters not preserved")
	}
	if _, ok := got.Body.(*expr.TryNode); !ok {
		t.Errorf("synchronous body should be protected:\n%s", dump.String(got))
	}
}

func TestLambda_StateMachine(t *testing.T) {
	local := expr.NewVariable(expr.AnyType, "local")
	cold := expr.NewVariable(expr.IntType, "cold")
	body := expr.BlockVars([]*expr.Variable{local},
		expr.BlockVars([]*expr.Variable{cold}, expr.Assign(cold, expr.Constant(1))),
		expr.Assign(local, await()),
		expr.Try(expr.Assign(local, await()), expr.Call(expr.FuncOf("done", func() {}))),
		local,
	)
	got, err := Lambda(ext.AsyncLambda("f", expr.AnyType, body))
	if err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	if expr.Contains(got, expr.IsExtension) {
		t.Fatalf("extension left:\n%s", dump.String(got))
	}

	outer := got.Body.(*expr.BlockNode).Exprs[0].(*expr.BlockNode)
	declared := make(map[*expr.Variable]bool)
	for _, v := range outer.Variables {
		declared[v] = true
	}
	if !declared[local] {
		t.Errorf("local spanning a suspension was not hoisted")
	}
	if declared[cold] {
		t.Errorf("local without suspension must stay in its block")
	}

	awaiters := 0
	for _, v := range outer.Variables {
		if v.Name == "awaiter" {
			awaiters++
		}
	}
	if awaiters != 2 {
		t.Errorf("got %d awaiter slots, want 2", awaiters)
	}

	guarded := false
	expr.Walk(got, func(n expr.Node) bool {
		if tn, ok := n.(*expr.TryNode); ok && tn.Finally != nil {
			if c, ok := tn.Finally.(*expr.ConditionalNode); ok {
				if u, ok := c.Test.(*expr.UnaryNode); ok && u.Op == expr.OpNot {
					guarded = true
				}
			}
		}
		return true
	})
	if !guarded {
		t.Errorf("finally enclosing a suspension is not guarded:\n%s", dump.String(got))
	}
}

func TestLambda_CapturedLocalsUseCells(t *testing.T) {
	keep := expr.FuncOf("keep", func(expr.Callable) {})
	x := expr.NewVariable(expr.IntType, "x")
	plain := expr.NewVariable(expr.IntType, "plain")
	body := expr.BlockVars([]*expr.Variable{x, plain},
		expr.Assign(x, expr.Constant(1)),
		expr.Assign(plain, expr.Constant(2)),
		expr.Call(keep, expr.Lambda("get", expr.IntType, x)),
		await(),
		expr.Add(x, plain),
	)
	got, err := Lambda(ext.AsyncLambda("f", expr.IntType, body))
	if err != nil {
		t.Fatalf("Lambda: %v", err)
	}

	outer := got.Body.(*expr.BlockNode).Exprs[0].(*expr.BlockNode)
	declared := make(map[*expr.Variable]bool)
	cells := 0
	for _, v := range outer.Variables {
		declared[v] = true
		if v.Type() == cellType {
			cells++
		}
	}
	if declared[x] {
		t.Errorf("captured local hoisted as a plain slot")
	}
	if !declared[plain] {
		t.Errorf("uncaptured local not hoisted")
	}
	if cells != 1 {
		t.Errorf("got %d cell slots, want 1", cells)
	}

	refs := 0
	snapshot := false
	expr.Walk(got, func(n expr.Node) bool {
		switch n := n.(type) {
		case *expr.Variable:
			if n == x {
				refs++
			}
		case *expr.BlockNode:
			if len(n.Variables) == 1 && n.Variables[0].Type() == cellType {
				_, snapshot = n.Exprs[len(n.Exprs)-1].(*expr.LambdaNode)
			}
		}
		return true
	})
	if refs != 0 {
		t.Errorf("captured local still referenced %d times:\n%s", refs, dump.String(got))
	}
	if !snapshot {
		t.Errorf("nested lambda does not copy its cell:\n%s", dump.String(got))
	}
}

func TestBuild_TaskReadBeforeFirstStep(t *testing.T) {
	got, err := Lambda(ext.AsyncLambda("f", expr.Void, expr.BlockTyped(expr.Void, nil, await())))
	if err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	outer, ok := got.Body.(*expr.BlockNode)
	if !ok || len(outer.Variables) != 1 || len(outer.Exprs) != 2 {
		t.Fatalf("unexpected outer shape:\n%s", dump.String(got))
	}
	slot := outer.Variables[0]
	if outer.Exprs[1] != slot {
		t.Errorf("outer block should yield the task slot:\n%s", dump.String(outer))
	}
	start := outer.Exprs[0].(*expr.BlockNode)
	last := len(start.Exprs) - 1
	if _, ok := start.Exprs[last].(*expr.InvokeNode); !ok {
		t.Fatalf("first step should run last:\n%s", dump.String(start))
	}
	read, ok := start.Exprs[last-1].(*expr.AssignNode)
	if !ok || read.Target != slot {
		t.Errorf("task must be read before the first step:\n%s", dump.String(start))
	}
	for _, v := range start.Variables {
		if v == slot {
			t.Errorf("task slot shares the machine scope")
		}
	}
}
