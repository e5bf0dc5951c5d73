package samples

import (
	"fmt"
	"time"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/task"
)

// complete yields v through a task that is either already done or finished
// by a timer goroutine.
var complete = expr.FuncOf("complete", func(v int, delayed bool) *task.Task {
	if delayed {
		return task.After(time.Millisecond, v)
	}
	return task.FromResult(v)
})

var completeAny = expr.FuncOf("completeAny", func(v any, delayed bool) *task.Task {
	if delayed {
		return task.After(time.Millisecond, v)
	}
	return task.FromResult(v)
})

var fail = expr.FuncOf("fail", func(delayed bool) *task.Task {
	if delayed {
		return task.Run(func() (any, error) {
			time.Sleep(time.Millisecond)
			return nil, errBoom
		})
	}
	return task.FromError(errBoom)
})

// awaited awaits the value of v through completeAny.
func awaited(v, delayed expr.Node) expr.Node {
	return ext.AwaitAs(expr.Call(completeAny, expr.Convert(v, expr.AnyType), delayed), v.Type())
}

var pair = expr.FuncOf("pair", func(a, b string) string { return a + b })

func init() {
	register(Sample{
		Name:        "coroutine-sum",
		Description: "async loop awaiting ten tasks, completed inline or on a timer",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			delayed := expr.NewVariable(expr.BoolType, "delayed")
			res := expr.NewVariable(expr.IntType, "res")
			i := expr.NewVariable(expr.IntType, "i")
			body := expr.BlockVars([]*expr.Variable{res},
				ext.For([]*expr.Variable{i},
					[]expr.Node{expr.Assign(i, expr.Constant(0))},
					expr.LessThan(i, expr.Constant(10)),
					[]expr.Node{expr.Assign(i, expr.Add(i, expr.Constant(1)))},
					expr.Assign(res, expr.Add(res, ext.AwaitAs(expr.Call(complete, i, delayed), expr.IntType))),
					nil, nil),
				res,
			)
			return ext.AsyncLambda("sum", expr.IntType, body, delayed), nil
		},
	})

	register(Sample{
		Name:        "spill-order",
		Description: "call arguments are evaluated left to right",
		Build: func(env *Env) (expr.Node, error) {
			return expr.Lambda("order", expr.StringType,
				expr.Call(pair, token(env, "X"), token(env, "Y"))), nil
		},
	})

	register(Sample{
		Name:        "spill-order-async",
		Description: "an await in the second argument keeps the first argument first",
		Build: func(env *Env) (expr.Node, error) {
			later := expr.FuncOf("later", func(s string) *task.Task {
				env.Log(s)
				return task.After(time.Millisecond, s)
			})
			awaited := ext.AwaitAs(expr.Call(later, expr.Constant("Y")), expr.StringType)
			return ext.AsyncLambda("order", expr.StringType,
				expr.Call(pair, token(env, "X"), awaited)), nil
		},
	})

	register(Sample{
		Name:        "async-branches",
		Description: "awaits in a conditional test and in a switch value",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			delayed := expr.NewVariable(expr.BoolType, "delayed")
			r := expr.NewVariable(expr.StringType, "r")
			body := expr.BlockVars([]*expr.Variable{r},
				expr.IfThenElse(awaited(expr.Constant(true), delayed), env.log("then"), env.log("else")),
				ext.Switch(awaited(expr.Constant(2), delayed), nil, nil,
					ext.Case(expr.Assign(r, expr.Constant("one")), 1),
					ext.Case(expr.Assign(r, expr.Constant("two")), 2),
					ext.DefaultCase(expr.Assign(r, expr.Constant("many"))),
				),
				r,
			)
			return ext.AsyncLambda("branches", expr.StringType, body, delayed), nil
		},
	})

	register(Sample{
		Name:        "async-loop",
		Description: "while loop whose test awaits",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			delayed := expr.NewVariable(expr.BoolType, "delayed")
			i := expr.NewVariable(expr.IntType, "i")
			body := expr.BlockVars([]*expr.Variable{i},
				ext.While(awaited(expr.LessThan(i, expr.Constant(3)), delayed), expr.Block(
					env.logValue("i=", i),
					expr.Assign(i, expr.Add(i, expr.Constant(1))),
				), nil, nil),
				i,
			)
			return ext.AsyncLambda("count", expr.IntType, body, delayed), nil
		},
	})

	register(Sample{
		Name:        "async-catch",
		Description: "a task faulting after a suspension is caught and finally runs once",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			delayed := expr.NewVariable(expr.BoolType, "delayed")
			e := expr.NewVariable(expr.ErrorType, "e")
			body := expr.Block(
				expr.Try(
					expr.Block(
						env.log("try"),
						ext.Await(expr.Call(fail, delayed)),
						env.log("unreached"),
					),
					env.log("finally"),
					expr.Catch(e, env.logValue("caught ", e)),
				),
				env.log("done"),
			)
			return ext.AsyncLambda("guarded", expr.Void, body, delayed), nil
		},
	})

	register(Sample{
		Name:        "async-closures",
		Description: "closures made in each iteration keep that iteration's locals across a suspension",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			var kept []expr.Callable
			keep := expr.FuncOf("keep", func(c expr.Callable) { kept = append(kept, c) })
			collect := expr.FuncOf("collect", func() (string, error) {
				defer func() { kept = nil }()
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

			delayed := expr.NewVariable(expr.BoolType, "delayed")
			i := expr.NewVariable(expr.IntType, "i")
			x := expr.NewVariable(expr.IntType, "x")
			iter := expr.BlockVars([]*expr.Variable{x},
				expr.Assign(x, expr.Multiply(i, expr.Constant(10))),
				expr.Call(keep, expr.Lambda("get", expr.IntType, x)),
				ext.Await(expr.Call(complete, i, delayed)),
				expr.Assign(x, expr.Add(x, expr.Constant(1))),
				expr.Assign(i, expr.Add(i, expr.Constant(1))),
			)
			body := expr.BlockVars([]*expr.Variable{i},
				ext.While(expr.LessThan(i, expr.Constant(3)), iter, nil, nil),
				expr.Call(collect),
			)
			return ext.AsyncLambda("closures", expr.StringType, body, delayed), nil
		},
	})

	register(Sample{
		Name:        "async-throw",
		Description: "exception raised after a suspension faults the task once finally ran",
		Build: func(env *Env) (expr.Node, error) {
			body := expr.Block(
				env.log("before"),
				ext.Await(expr.Call(complete, expr.Constant(1), expr.Constant(true))),
				env.log("after"),
				expr.Try(expr.Throw(expr.Constant(errBoom)), env.log("finally")),
			)
			return ext.AsyncLambda("fails", expr.Void, body), nil
		},
	})
}

func token(env *Env, s string) expr.Node {
	fn := expr.FuncOf("token", func(s string) string {
		env.Log(s)
		return s
	})
	return expr.Call(fn, expr.Constant(s))
}
