package lower

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/host"
	"github.com/wippyai/exprtree/task"
)

var later = expr.FuncOf("later", func(v any, delayed bool) *task.Task {
	if delayed {
		return task.After(time.Millisecond, v)
	}
	return task.FromResult(v)
})

var failLater = expr.FuncOf("failLater", func(delayed bool) *task.Task {
	if delayed {
		return task.Run(func() (any, error) {
			time.Sleep(time.Millisecond)
			return nil, errLate
		})
	}
	return task.FromError(errLate)
})

var errLate = stderrors.New("late")

// awaitOf awaits v through a task that completes inline or on a timer.
func awaitOf(v expr.Node, delayed bool) expr.Node {
	return ext.AwaitAs(expr.Call(later, expr.Convert(v, expr.AnyType), expr.Constant(delayed)), v.Type())
}

func compileAsync(t *testing.T, tree expr.Node) *host.Func {
	t.Helper()
	reduced, err := Reduce(tree, Config{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	f, err := host.Compile(reduced)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return f
}

func wait(t *testing.T, f *host.Func) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Wait(ctx)
}

func TestReduce_AwaitInControlPositions(t *testing.T) {
	one := expr.Constant(1)

	tests := []struct {
		name  string
		build func(delayed bool) expr.Node
		want  any
	}{
		{
			name: "conditional test",
			build: func(d bool) expr.Node {
				return expr.ConditionTyped(expr.IntType, awaitOf(expr.Constant(true), d), expr.Constant(1), expr.Constant(2))
			},
			want: 1,
		},
		{
			name: "short circuit left operand",
			build: func(d bool) expr.Node {
				return expr.AndAlso(awaitOf(expr.Constant(true), d), awaitOf(expr.Constant(false), d))
			},
			want: false,
		},
		{
			name: "while test",
			build: func(d bool) expr.Node {
				i := expr.NewVariable(expr.IntType, "i")
				return expr.BlockVars([]*expr.Variable{i},
					ext.While(awaitOf(expr.LessThan(i, expr.Constant(3)), d), expr.Assign(i, expr.Add(i, one)), nil, nil),
					i,
				)
			},
			want: 3,
		},
		{
			name: "do while test with continue",
			build: func(d bool) expr.Node {
				i := expr.NewVariable(expr.IntType, "i")
				n := expr.NewVariable(expr.IntType, "n")
				cont := expr.VoidLabel("cont")
				body := expr.Block(
					expr.Assign(i, expr.Add(i, one)),
					expr.IfThen(expr.Equal(i, expr.Constant(2)), expr.Continue(cont)),
					expr.Assign(n, expr.Add(n, one)),
				)
				return expr.BlockVars([]*expr.Variable{i, n},
					ext.DoWhile(body, awaitOf(expr.LessThan(i, expr.Constant(4)), d), nil, cont),
					expr.Add(expr.Multiply(i, expr.Constant(10)), n),
				)
			},
			want: 43,
		},
		{
			name: "for test",
			build: func(d bool) expr.Node {
				i := expr.NewVariable(expr.IntType, "i")
				sum := expr.NewVariable(expr.IntType, "sum")
				return expr.BlockVars([]*expr.Variable{sum},
					ext.For([]*expr.Variable{i},
						[]expr.Node{expr.Assign(i, expr.Constant(0))},
						awaitOf(expr.LessThan(i, expr.Constant(4)), d),
						[]expr.Node{expr.Assign(i, expr.Add(i, one))},
						expr.Assign(sum, expr.Add(sum, i)),
						nil, nil),
					sum,
				)
			},
			want: 6,
		},
		{
			name: "switch value",
			build: func(d bool) expr.Node {
				return expr.Switch(expr.IntType, awaitOf(expr.Constant(2), d), expr.Constant(0),
					expr.Case(expr.Constant(10), expr.Constant(1)),
					expr.Case(expr.Constant(20), expr.Constant(2)),
				)
			},
			want: 20,
		},
		{
			name: "switch test value",
			build: func(d bool) expr.Node {
				return expr.Switch(expr.IntType, expr.Constant(2), expr.Constant(0),
					expr.Case(expr.Constant(10), awaitOf(expr.Constant(1), d)),
					expr.Case(expr.Constant(20), expr.Constant(3), awaitOf(expr.Constant(2), d)),
				)
			},
			want: 20,
		},
		{
			name: "statement switch value",
			build: func(d bool) expr.Node {
				r := expr.NewVariable(expr.StringType, "r")
				return expr.BlockVars([]*expr.Variable{r},
					ext.Switch(awaitOf(expr.Constant("b"), d), nil, nil,
						ext.Case(expr.Assign(r, expr.Constant("A")), "a"),
						ext.Case(expr.Assign(r, expr.Constant("B")), "b"),
						ext.DefaultCase(expr.Assign(r, expr.Constant("?"))),
					),
					r,
				)
			},
			want: "B",
		},
		{
			name: "catch after suspension",
			build: func(d bool) expr.Node {
				r := expr.NewVariable(expr.IntType, "r")
				n := expr.NewVariable(expr.IntType, "n")
				e := expr.NewVariable(expr.ErrorType, "e")
				return expr.BlockVars([]*expr.Variable{r, n},
					expr.Try(
						expr.Block(
							expr.Assign(r, awaitOf(expr.Constant(1), d)),
							ext.Await(expr.Call(failLater, expr.Constant(d))),
							expr.Assign(r, expr.Constant(100)),
						),
						expr.Assign(n, expr.Add(n, one)),
						expr.Catch(e, expr.Assign(r, expr.Add(r, expr.Constant(10)))),
					),
					expr.Add(expr.Multiply(r, expr.Constant(10)), n),
				)
			},
			want: 111,
		},
	}
	for _, tt := range tests {
		for _, delayed := range []bool{false, true} {
			name := tt.name + "/inline"
			if delayed {
				name = tt.name + "/delayed"
			}
			t.Run(name, func(t *testing.T) {
				body := tt.build(delayed)
				f := compileAsync(t, ext.AsyncLambda("f", body.Type(), body))
				got, err := wait(t, f)
				if err != nil {
					t.Fatalf("Wait: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %#v, want %#v", got, tt.want)
				}
			})
		}
	}
}

func TestReduce_ClosuresKeepIterationLocals(t *testing.T) {
	for _, delayed := range []bool{false, true} {
		t.Run(fmt.Sprintf("delayed=%v", delayed), func(t *testing.T) {
			var kept []expr.Callable
			keep := expr.FuncOf("keep", func(c expr.Callable) { kept = append(kept, c) })
			collect := expr.FuncOf("collect", func() (string, error) {
				vals := make([]any, len(kept))
				for i, c := range kept {
					v, err := c.Call()
					if err != nil {
						return "", err
					}
					vals[i] = v
				}
				return fmt.Sprint(vals...), nil
			})

			i := expr.NewVariable(expr.IntType, "i")
			x := expr.NewVariable(expr.IntType, "x")
			iter := expr.BlockVars([]*expr.Variable{x},
				expr.Assign(x, expr.Multiply(i, expr.Constant(10))),
				expr.Call(keep, expr.Lambda("get", expr.IntType, x)),
				awaitOf(i, delayed),
				expr.Assign(x, expr.Add(x, expr.Constant(1))),
				expr.Assign(i, expr.Add(i, expr.Constant(1))),
			)
			body := expr.BlockVars([]*expr.Variable{i},
				ext.While(expr.LessThan(i, expr.Constant(3)), iter, nil, nil),
				expr.Call(collect),
			)
			f := compileAsync(t, ext.AsyncLambda("closures", expr.StringType, body))
			got, err := wait(t, f)
			if err != nil {
				t.Fatalf("Wait: %v", err)
			}
			if got != "1 11 21" {
				t.Errorf("got %q, want %q", got, "1 11 21")
			}
		})
	}
}

func TestReduce_DelayedConcurrentCalls(t *testing.T) {
	i := expr.NewVariable(expr.IntType, "i")
	sum := expr.NewVariable(expr.IntType, "sum")
	body := expr.BlockVars([]*expr.Variable{i, sum},
		ext.While(awaitOf(expr.LessThan(i, expr.Constant(5)), true), expr.Block(
			expr.Assign(sum, expr.Add(sum, awaitOf(i, true))),
			expr.Assign(i, expr.Add(i, expr.Constant(1))),
		), nil, nil),
		sum,
	)
	f := compileAsync(t, ext.AsyncLambda("sum", expr.IntType, body))

	const calls = 16
	var wg sync.WaitGroup
	results := make([]any, calls)
	errs := make([]error, calls)
	for k := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			results[k], errs[k] = f.Wait(ctx)
		}()
	}
	wg.Wait()
	for k := range calls {
		if errs[k] != nil {
			t.Errorf("call %d: %v", k, errs[k])
			continue
		}
		if results[k] != 10 {
			t.Errorf("call %d = %v, want 10", k, results[k])
		}
	}
}
