package samples

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/exprtree/expr"
)

func TestAll_SortedAndUnique(t *testing.T) {
	names := Names()
	if !slices.IsSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	if len(slices.Compact(slices.Clone(names))) != len(names) {
		t.Errorf("duplicate names: %v", names)
	}
	for _, n := range names {
		s, ok := Lookup(n)
		if !ok || s.Description == "" {
			t.Errorf("%s: lookup ok=%v description=%q", n, ok, s.Description)
		}
	}
	if _, ok := Lookup("missing"); ok {
		t.Error("Lookup(missing) succeeded")
	}
}

func TestEnv_CloseOrder(t *testing.T) {
	env := NewEnv()
	errClose := stderrors.New("second")
	env.Defer(func(context.Context) error { env.Log("first"); return nil })
	env.Defer(func(context.Context) error { env.Log("second"); return errClose })
	err := env.Close(context.Background())
	if !stderrors.Is(err, errClose) {
		t.Errorf("Close error = %v", err)
	}
	if got := strings.Join(env.Lines(), ","); got != "second,first" {
		t.Errorf("close order = %s", got)
	}
	if err := env.Close(context.Background()); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestPrepare_ConstructionError(t *testing.T) {
	s := Sample{
		Name: "broken",
		Build: func(env *Env) (expr.Node, error) {
			return expr.Add(expr.Constant(1), expr.Constant("x")), nil
		},
	}
	if _, err := s.Prepare(context.Background()); err == nil {
		t.Fatal("expected construction error")
	}
}

func TestOutcome_String(t *testing.T) {
	o := Outcome{Args: []any{1, "a"}, Value: 3, Lines: []string{"x"}}
	if got, want := o.String(), "call(1, \"a\") = 3\n  x\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	o = Outcome{Err: stderrors.New("boom")}
	if got, want := o.String(), "call() error: boom\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
