package lower

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
	"github.com/wippyai/exprtree/task"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReduce_NativeUnchanged(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	tree := expr.Lambda("f", expr.IntType,
		expr.BlockVars([]*expr.Variable{x}, expr.Assign(x, expr.Constant(2)), expr.Add(x, x)))

	got, err := Reduce(tree, Config{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got != tree {
		t.Errorf("native tree was rebuilt")
	}
}

func TestReduce_Observer(t *testing.T) {
	i := expr.NewVariable(expr.IntType, "i")
	tree := expr.BlockVars([]*expr.Variable{i},
		ext.While(expr.LessThan(i, expr.Constant(3)), expr.Assign(i, expr.Add(i, expr.Constant(1))), nil, nil),
		i,
	)

	tests := []struct {
		name string
		cfg  Config
		want []Stage
	}{
		{"all stages", Config{}, Stages()},
		{"skip shadow", Config{SkipShadow: true}, []Stage{StageAliases, StagePercolate, StageSpill, StageReduce, StageAsync}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []Stage
			var last expr.Node
			tt.cfg.Observer = func(s Stage, n expr.Node) {
				seen = append(seen, s)
				last = n
			}
			got, err := Reduce(tree, tt.cfg)
			if err != nil {
				t.Fatalf("Reduce: %v", err)
			}
			if len(seen) != len(tt.want) {
				t.Fatalf("observed %v, want %v", seen, tt.want)
			}
			for k := range seen {
				if seen[k] != tt.want[k] {
					t.Errorf("stage %d = %s, want %s", k, seen[k], tt.want[k])
				}
			}
			if last != got {
				t.Errorf("last snapshot differs from result")
			}
			if expr.Contains(got, expr.IsExtension) {
				t.Errorf("extension left after reduction")
			}
			if got.Type() != expr.IntType {
				t.Errorf("type %s, want int", expr.TypeString(got.Type()))
			}
		})
	}
}

func TestReduce_Errors(t *testing.T) {
	deep := expr.Node(expr.Constant(1))
	for range 10 {
		deep = expr.Negate(deep)
	}

	tests := []struct {
		name  string
		tree  expr.Node
		cfg   Config
		phase errors.Phase
		kind  errors.Kind
	}{
		{
			name:  "nil tree",
			phase: errors.PhaseNormalize,
			kind:  errors.KindInvalidInput,
		},
		{
			name:  "depth limit",
			tree:  deep,
			cfg:   Config{MaxDepth: 5},
			phase: errors.PhaseNormalize,
			kind:  errors.KindInvalidInput,
		},
		{
			name:  "goto case outside switch",
			tree:  ext.GotoCase(1),
			phase: errors.PhaseReduce,
			kind:  errors.KindUnresolvedGoto,
		},
		{
			name:  "await outside async lambda",
			tree:  ext.Await(expr.Constant(taskOf(1))),
			phase: errors.PhaseAsync,
			kind:  errors.KindInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			tt.cfg.Logger = zap.New(core)

			_, err := Reduce(tt.tree, tt.cfg)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("got %v, want *errors.Error", err)
			}
			if e.Phase != tt.phase || e.Kind != tt.kind {
				t.Errorf("got [%s] %s, want [%s] %s", e.Phase, e.Kind, tt.phase, tt.kind)
			}
			if tt.tree != nil && logs.Len() != 1 {
				t.Errorf("got %d warnings, want 1", logs.Len())
			}
		})
	}
}

func TestReduce_DepthWithinLimit(t *testing.T) {
	tree := expr.Negate(expr.Negate(expr.Constant(1)))
	if d := Depth(tree); d != 3 {
		t.Fatalf("Depth = %d, want 3", d)
	}
	if _, err := Reduce(tree, Config{MaxDepth: 3}); err != nil {
		t.Errorf("Reduce: %v", err)
	}
}

func TestStage_Names(t *testing.T) {
	for _, s := range Stages() {
		got, ok := ParseStage(s.String())
		if !ok || got != s {
			t.Errorf("ParseStage(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseStage("compile"); ok {
		t.Errorf("unknown stage parsed")
	}
}

func taskOf(v any) *task.Task { return task.FromResult(v) }
