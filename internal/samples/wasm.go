package samples

import (
	"context"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/host/wasmfn"
)

// addModule exports add(i32, i32) i32.
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

func init() {
	register(Sample{
		Name:        "wasm-sum",
		Description: "for loop accumulating through a WebAssembly export",
		Runs:        [][]any{{int32(10)}, {int32(0)}},
		Build: func(env *Env) (expr.Node, error) {
			ctx := context.Background()
			mod, err := wasmfn.Load(ctx, addModule)
			if err != nil {
				return nil, err
			}
			env.Defer(mod.Close)
			add, err := mod.Func("add")
			if err != nil {
				return nil, err
			}
			i32 := expr.TypeOf[int32]()
			n := expr.NewVariable(i32, "n")
			acc := expr.NewVariable(i32, "acc")
			i := expr.NewVariable(i32, "i")
			body := expr.BlockVars([]*expr.Variable{acc},
				ext.For([]*expr.Variable{i},
					[]expr.Node{expr.Assign(i, expr.Constant(int32(1)))},
					expr.LessThanOrEqual(i, n),
					[]expr.Node{expr.Assign(i, expr.Add(i, expr.Constant(int32(1))))},
					expr.Assign(acc, expr.Call(add, acc, i)),
					nil, nil),
				acc,
			)
			return expr.Lambda("triangle", i32, body, n), nil
		},
	})
}
