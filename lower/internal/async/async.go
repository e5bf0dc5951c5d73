package async

import (
	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"go.uber.org/zap"
)

// Lambdas lowers every async lambda of n, innermost first. A suspension point
// outside any async lambda is an error. It returns n itself when n holds no
// async lambda.
func Lambdas(n expr.Node) (expr.Node, error) {
	var err error
	out := expr.Transform(n, func(c expr.Node) expr.Node {
		a, ok := c.(*ext.AsyncLambdaNode)
		if !ok || err != nil {
			return c
		}
		l, lerr := Lambda(a)
		if lerr != nil {
			err = lerr
			return c
		}
		return l
	})
	if err != nil {
		return nil, err
	}
	if expr.Contains(out, func(c expr.Node) bool { _, ok := c.(*ext.AwaitNode); return ok }) {
		return nil, errors.InvalidInput(errors.PhaseAsync, "await outside an async lambda")
	}
	return out, nil
}

// Lambda lowers one async lambda whose nested async lambdas are already
// lowered.
func Lambda(n *ext.AsyncLambdaNode) (*expr.LambdaNode, error) {
	if err := checkPlacement(n.Body); err != nil {
		return nil, err
	}
	if !hasAwait(n.Body) {
		return synchronous(n), nil
	}

	h := newHoister()
	body := h.visit(n.Body)
	hoisted := h.variables()

	m := newMachine()
	body = m.rewrite(body)
	Logger().Debug("lowered async lambda",
		zap.String("name", n.Name),
		zap.Int("suspensions", len(m.resumes)),
		zap.Int("hoisted", h.hoisted.Count()),
		zap.Int("boxed", h.boxed.Count()),
	)
	return m.build(n, body, hoisted), nil
}

// checkPlacement rejects suspension points inside handlers and finally
// blocks.
func checkPlacement(n expr.Node) error {
	var err error
	expr.Walk(n, func(c expr.Node) bool {
		if err != nil {
			return false
		}
		switch c := c.(type) {
		case *expr.LambdaNode, *ext.AsyncLambdaNode:
			return false
		case *expr.TryNode:
			for _, h := range c.Handlers {
				if hasAwait(h.Body) {
					err = errors.Unsupported(errors.PhaseAsync, "await inside a catch block")
					return false
				}
			}
			if c.Finally != nil && hasAwait(c.Finally) {
				err = errors.Unsupported(errors.PhaseAsync, "await inside a finally block")
				return false
			}
		}
		return true
	})
	return err
}
