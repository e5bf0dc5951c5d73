package percolate

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/exprtree/dump"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

func lines(s ...string) string {
	return strings.Join(append(s, ""), "\n")
}

func TestAssignments(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	y := expr.NewVariable(expr.IntType, "y")
	c := expr.NewVariable(expr.BoolType, "c")
	l := expr.NewLabel(expr.IntType, "L")

	tests := []struct {
		name string
		tree expr.Node
		want string
	}{
		{
			name: "conditional",
			tree: expr.BlockVars([]*expr.Variable{x, c},
				expr.Assign(x, expr.Condition(c, expr.Constant(1), expr.Constant(2))),
				x,
			),
			want: lines(
				"Block [x#1 int, c#1 bool] : int",
				"  Conditional",
				"    test: Variable c#1",
				"    then: Assign x#1",
				"      Constant 1 : int",
				"    else: Assign x#1",
				"      Constant 2 : int",
				"  Variable x#1",
			),
		},
		{
			name: "block trailing value",
			tree: expr.BlockVars([]*expr.Variable{x},
				expr.Assign(x, expr.BlockVars([]*expr.Variable{y},
					expr.Assign(y, expr.Constant(3)),
					expr.Add(y, expr.Constant(1)),
				)),
				x,
			),
			want: lines(
				"Block [x#1 int] : int",
				"  Block [y#1 int]",
				"    Assign y#1",
				"      Constant 3 : int",
				"    Assign x#1",
				"      Add : int",
				"        Variable y#1",
				"        Constant 1 : int",
				"  Variable x#1",
			),
		},
		{
			name: "value position keeps the variable",
			tree: expr.BlockVars([]*expr.Variable{x, c},
				expr.Add(
					expr.Assign(x, expr.Condition(c, expr.Constant(1), expr.Constant(2))),
					expr.Constant(10),
				),
			),
			want: lines(
				"Block [x#1 int, c#1 bool] : int",
				"  Add : int",
				"    Block : int",
				"      Conditional",
				"        test: Variable c#1",
				"        then: Assign x#1",
				"          Constant 1 : int",
				"        else: Assign x#1",
				"          Constant 2 : int",
				"      Variable x#1",
				"    Constant 10 : int",
			),
		},
		{
			name: "typed label",
			tree: expr.BlockVars([]*expr.Variable{x, c},
				expr.Assign(x, expr.Block(
					expr.IfThen(c, expr.GotoValue(l, expr.Constant(5))),
					expr.Label(l, expr.Constant(1)),
				)),
				x,
			),
			want: lines(
				"Block [x#1 int, c#1 bool] : int",
				"  Block",
				"    Conditional",
				"      test: Variable c#1",
				"      then: Block",
				"        Assign x#1",
				"          Constant 5 : int",
				"        Goto L#1",
				"      else: Default",
				"    Assign x#1",
				"      Constant 1 : int",
				"    Label L#1",
				"  Variable x#1",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assignments(tt.tree)
			if s := dump.String(got); s != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", s, tt.want)
			}
			if again := Assignments(got); again != got {
				t.Errorf("second run rebuilt the tree")
			}
		})
	}
}

func TestAssignments_Unchanged(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	c := expr.NewVariable(expr.BoolType, "c")
	tree := expr.Lambda("f", expr.IntType,
		expr.BlockVars([]*expr.Variable{x},
			expr.Assign(x, expr.Add(expr.Constant(1), expr.Constant(2))),
			expr.Condition(c, x, expr.Constant(0)),
		), c)
	if got := Assignments(tree); got != tree {
		t.Errorf("tree without control-flow assignments was rebuilt")
	}
}

func TestAssignments_Nested(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	c := expr.NewVariable(expr.BoolType, "c")
	inner := expr.Condition(c, expr.Constant(1), expr.Constant(2))
	tree := expr.BlockTyped(expr.Void, nil, expr.Assign(x, expr.Condition(c, inner, expr.Constant(3))))

	got := Assignments(tree).(*expr.BlockNode)
	outer, ok := got.Exprs[0].(*expr.ConditionalNode)
	if !ok || !expr.IsVoid(outer.Type()) {
		t.Fatalf("outer conditional not percolated: %s", dump.String(got))
	}
	nested, ok := outer.IfTrue.(*expr.ConditionalNode)
	if !ok {
		t.Fatalf("nested conditional not percolated: %s", dump.String(got))
	}
	for _, branch := range []expr.Node{nested.IfTrue, nested.IfFalse, outer.IfFalse} {
		if a, ok := branch.(*expr.AssignNode); !ok || a.Target != x {
			t.Errorf("branch is not an assignment to x: %s", dump.String(branch))
		}
	}
}

func TestInto_Try(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	e := expr.NewVariable(expr.ErrorType, "e")
	fail := expr.FuncOf("fail", func() (int, error) { return 0, stderrors.New("boom") })
	finally := expr.Call(expr.FuncOf("log", func() {}))

	tests := []struct {
		name string
		c    expr.Node
	}{
		{"native", expr.TryTyped(expr.IntType, expr.Call(fail), finally, expr.Catch(e, expr.Constant(-1)))},
		{"filtered", ext.TryTyped(expr.IntType, expr.Call(fail), finally,
			ext.CatchIf(e, expr.Constant(true), expr.Constant(-1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Into(x, tt.c)
			if !ok {
				t.Fatalf("try was not percolated")
			}
			if !expr.IsVoid(out.Type()) {
				t.Errorf("result type %s, want void", expr.TypeString(out.Type()))
			}
			var body, handler, fin expr.Node
			switch n := out.(type) {
			case *expr.TryNode:
				body, handler, fin = n.Body, n.Handlers[0].Body, n.Finally
			case *ext.TryNode:
				body, handler, fin = n.Body, n.Handlers[0].Body, n.Finally
				if n.Handlers[0].Filter == nil {
					t.Errorf("filter dropped")
				}
			}
			for _, b := range []expr.Node{body, handler} {
				if a, ok := b.(*expr.AssignNode); !ok || a.Target != x {
					t.Errorf("body not assigned: %s", dump.String(b))
				}
			}
			if fin != finally {
				t.Errorf("finally must be untouched")
			}
		})
	}
}

func TestInto_NotControlFlow(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	if _, ok := Into(x, expr.Add(x, expr.Constant(1))); ok {
		t.Errorf("arithmetic is not control flow")
	}
	if IsControlFlow(expr.Block(expr.Empty())) {
		t.Errorf("void block is not a value")
	}
}
