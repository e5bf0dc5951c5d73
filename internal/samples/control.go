package samples

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

var errBoom = stderrors.New("boom")

type codeError struct {
	Code int
}

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.Code) }

func init() {
	register(Sample{
		Name:        "switch-goto",
		Description: "switch whose first case jumps into the second with goto case",
		Runs:        [][]any{{1}, {2}, {5}},
		Build: func(env *Env) (expr.Node, error) {
			x := expr.NewVariable(expr.IntType, "x")
			brk := expr.VoidLabel("brk")
			sw := ext.Switch(x, brk, nil,
				ext.Case(expr.Block(env.log("A"), ext.GotoCase(2)), 1),
				ext.Case(expr.Block(env.log("B"), expr.Break(brk)), 2),
				ext.DefaultCase(env.log("D")),
			)
			return expr.Lambda("dispatch", expr.Void, sw, x), nil
		},
	})

	register(Sample{
		Name:        "do-while",
		Description: "do-while runs its body before the first test",
		Runs:        [][]any{{0}, {5}},
		Build: func(env *Env) (expr.Node, error) {
			start := expr.NewVariable(expr.IntType, "start")
			i := expr.NewVariable(expr.IntType, "i")
			body := expr.BlockVars([]*expr.Variable{i},
				expr.Assign(i, start),
				ext.DoWhile(
					expr.Block(env.logValue("i=", i), expr.Assign(i, expr.Add(i, expr.Constant(1)))),
					expr.LessThan(i, expr.Constant(3)),
					nil, nil),
				i,
			)
			return expr.Lambda("count", expr.IntType, body, start), nil
		},
	})

	register(Sample{
		Name:        "return-block",
		Description: "block with a typed return label leaves early with a value",
		Runs:        [][]any{{-3}, {4}},
		Build: func(env *Env) (expr.Node, error) {
			x := expr.NewVariable(expr.IntType, "x")
			ret := expr.NewLabel(expr.IntType, "ret")
			body := ext.Block(ret, nil,
				expr.IfThen(expr.LessThan(x, expr.Constant(0)), expr.Block(env.log("negative"), expr.Return(ret, expr.Negate(x)))),
				x,
			)
			return expr.Lambda("abs", expr.IntType, body, x), nil
		},
	})

	register(Sample{
		Name:        "try-filter",
		Description: "filtered handler ahead of a catch-all, with a finally",
		Runs:        [][]any{{0}, {1}, {2}},
		Build: func(env *Env) (expr.Node, error) {
			raise := expr.FuncOf("raise", func(code int) error {
				if code == 0 {
					return nil
				}
				return &codeError{Code: code}
			})
			code := expr.NewVariable(expr.IntType, "code")
			coded := expr.NewVariable(expr.TypeOf[*codeError](), "e")
			other := expr.NewVariable(expr.ErrorType, "e")
			body := ext.Try(expr.Call(raise, code), env.log("finally"),
				ext.CatchIf(coded, expr.Equal(expr.Member(coded, "Code"), expr.Constant(1)), env.log("code one")),
				ext.Catch(other, env.logValue("other: ", other)),
			)
			return expr.Lambda("filter", expr.Void, body, code), nil
		},
	})

	register(Sample{
		Name:        "percolate-try",
		Description: "assignment of a value-producing try",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			failing := expr.FuncOf("fail", func() (int, error) { return 0, errBoom })
			fail := expr.NewVariable(expr.BoolType, "fail")
			r := expr.NewVariable(expr.IntType, "r")
			e := expr.NewVariable(expr.ErrorType, "e")
			try := expr.TryTyped(expr.IntType,
				expr.Condition(fail, expr.Call(failing), expr.Constant(1)),
				nil,
				expr.Catch(e, expr.Block(env.logValue("caught ", e), expr.Constant(2))),
			)
			body := expr.BlockVars([]*expr.Variable{r},
				expr.Assign(r, try),
				expr.Add(r, expr.Constant(10)),
			)
			return expr.Lambda("recover", expr.IntType, body, fail), nil
		},
	})
}
