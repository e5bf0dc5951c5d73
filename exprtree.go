package exprtree

import (
	"context"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/host"
	"github.com/wippyai/exprtree/lower"
)

// Compile reduces n to native nodes and compiles the result.
func Compile(n expr.Node, cfg lower.Config) (*host.Func, error) {
	native, err := lower.Reduce(n, cfg)
	if err != nil {
		return nil, err
	}
	return host.Compile(native)
}

// Run compiles n, calls it with args and waits for the outcome when the call
// yields a task.
func Run(ctx context.Context, n expr.Node, cfg lower.Config, args ...any) (any, error) {
	fn, err := Compile(n, cfg)
	if err != nil {
		return nil, err
	}
	return fn.Wait(ctx, args...)
}
