package lower

import (
	"time"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/lower/internal/async"
	"github.com/wippyai/exprtree/lower/internal/normalize"
	"github.com/wippyai/exprtree/lower/internal/percolate"
	"github.com/wippyai/exprtree/lower/internal/reduce"
	"github.com/wippyai/exprtree/lower/internal/spill"
	"go.uber.org/zap"
)

// Stage identifies one pass of the pipeline.
type Stage uint8

const (
	StageAliases Stage = iota
	StageShadows
	StagePercolate
	StageSpill
	StageReduce
	StageAsync
)

var stageNames = [...]string{
	StageAliases:   "aliases",
	StageShadows:   "shadows",
	StagePercolate: "percolate",
	StageSpill:     "spill",
	StageReduce:    "reduce",
	StageAsync:     "async",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "Stage(?)"
}

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageAliases, StageShadows, StagePercolate, StageSpill, StageReduce, StageAsync}
}

// ParseStage returns the stage with the given name.
func ParseStage(name string) (Stage, bool) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), true
		}
	}
	return 0, false
}

// Phase returns the error phase reported by the stage.
func (s Stage) Phase() errors.Phase {
	switch s {
	case StageAliases, StageShadows:
		return errors.PhaseNormalize
	case StagePercolate:
		return errors.PhasePercolate
	case StageSpill:
		return errors.PhaseSpill
	case StageReduce:
		return errors.PhaseReduce
	}
	return errors.PhaseAsync
}

// Config configures a reduction.
type Config struct {
	// Logger overrides the package logger for this call.
	Logger *zap.Logger
	// Observer receives the tree after every stage that ran.
	Observer func(Stage, expr.Node)
	// SkipShadow skips shadow normalization for trees known to be free of
	// nested redeclarations.
	SkipShadow bool
	// MaxDepth rejects trees nested deeper than the limit. Zero means no limit.
	MaxDepth int
}

type pass struct {
	stage Stage
	run   func(expr.Node) (expr.Node, error)
}

func total(fn func(expr.Node) expr.Node) func(expr.Node) (expr.Node, error) {
	return func(n expr.Node) (expr.Node, error) { return fn(n), nil }
}

func (cfg Config) passes() []pass {
	ps := []pass{{StageAliases, total(normalize.Aliases)}}
	if !cfg.SkipShadow {
		ps = append(ps, pass{StageShadows, total(normalize.Shadows)})
	}
	return append(ps,
		pass{StagePercolate, total(percolate.Assignments)},
		pass{StageSpill, total(spill.Stack)},
		pass{StageReduce, reduce.Tree},
		pass{StageAsync, async.Lambdas},
	)
}

// Reduce lowers n to a tree of native nodes only. The first failing stage
// aborts the reduction.
func Reduce(n expr.Node, cfg Config) (expr.Node, error) {
	if n == nil {
		return nil, errors.InvalidInput(errors.PhaseNormalize, "nil tree")
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	if cfg.MaxDepth > 0 {
		if d := Depth(n); d > cfg.MaxDepth {
			err := errors.New(errors.PhaseNormalize, errors.KindInvalidInput).
				Detail("tree depth %d exceeds limit %d", d, cfg.MaxDepth).
				Build()
			log.Warn("reduction rejected", zap.Error(err))
			return nil, err
		}
	}

	for _, p := range cfg.passes() {
		start := time.Now()
		out, err := runPass(p, n)
		if err != nil {
			log.Warn("reduction failed", zap.String("stage", p.stage.String()), zap.Error(err))
			return nil, err
		}
		log.Debug("stage done",
			zap.String("stage", p.stage.String()),
			zap.Bool("changed", out != n),
			zap.Duration("elapsed", time.Since(start)),
		)
		if cfg.Observer != nil {
			cfg.Observer(p.stage, out)
		}
		n = out
	}
	return n, nil
}

// runPass converts construction failures raised while rebuilding nodes into
// errors of the stage.
func runPass(p pass, n expr.Node) (out expr.Node, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(*errors.Error)
		if !ok {
			panic(r)
		}
		out, err = nil, errors.Wrap(p.stage.Phase(), e.Kind, e, "stage "+p.stage.String()+" produced an invalid node")
	}()
	return p.run(n)
}

// Depth returns the nesting depth of n, counting n itself.
func Depth(n expr.Node) int {
	deepest := 0
	var visit func(expr.Node, int)
	visit = func(c expr.Node, d int) {
		if d > deepest {
			deepest = d
		}
		c.RewriteChildren(&expr.Rewriter{Node: func(x expr.Node) expr.Node {
			visit(x, d+1)
			return x
		}})
	}
	if n != nil {
		visit(n, 1)
	}
	return deepest
}
