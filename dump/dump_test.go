package dump

import (
	"strings"
	"testing"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

func TestString_Native(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	tree := expr.BlockVars([]*expr.Variable{x},
		expr.Assign(x, expr.Constant(1)),
		expr.Add(x, expr.Constant(2)),
	)
	want := strings.Join([]string{
		"Block [x#1 int] : int",
		"  Assign x#1",
		"    Constant 1 : int",
		"  Add : int",
		"    Variable x#1",
		"    Constant 2 : int",
		"",
	}, "\n")
	if got := String(tree); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestString_DistinguishesIdentities(t *testing.T) {
	a := expr.NewVariable(expr.IntType, "v")
	b := expr.NewVariable(expr.IntType, "v")
	got := String(expr.BlockVars([]*expr.Variable{a, b}, expr.Assign(a, b)))
	if !strings.Contains(got, "v#1 int, v#2 int") || !strings.Contains(got, "Assign v#1") {
		t.Errorf("identities not numbered:\n%s", got)
	}
}

func TestString_Extension(t *testing.T) {
	brk := expr.VoidLabel("brk")
	tree := ext.While(expr.Constant(true), expr.Break(brk), brk, nil)
	want := strings.Join([]string{
		"ext.While break=brk#1 continue=-",
		"  test: Constant true : bool",
		"  body: Break brk#1",
		"",
	}, "\n")
	if got := String(tree); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestString_GotoCase(t *testing.T) {
	if got := String(ext.GotoCase(7)); got != "ext.GotoCase 7\n" {
		t.Errorf("got %q", got)
	}
}
