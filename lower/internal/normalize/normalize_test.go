package normalize

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

type resource struct{}

func (*resource) Close() {}

// declarations records every declaration site in visiting order.
type declarations struct {
	vars []*expr.Variable
}

func (d *declarations) Visit(n expr.Node) expr.Node {
	if n == nil {
		return nil
	}
	return n.RewriteChildren(d)
}

func (d *declarations) VisitVariable(v *expr.Variable) *expr.Variable {
	d.vars = append(d.vars, v)
	return v
}

func (d *declarations) VisitLabel(l *expr.LabelTarget) *expr.LabelTarget { return l }

func declared(n expr.Node) []*expr.Variable {
	d := &declarations{}
	d.Visit(n)
	return d.vars
}

func distinct(vars []*expr.Variable) bool {
	seen := make(map[*expr.Variable]bool)
	for _, v := range vars {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func TestAliases_UnchangedTreeByReference(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	y := expr.NewVariable(expr.IntType, "y")
	brk := expr.VoidLabel("brk")
	tree := expr.Lambda("f", expr.IntType,
		expr.BlockVars([]*expr.Variable{x},
			expr.Assign(x, y),
			expr.Loop(expr.Break(brk), brk, nil),
			expr.Add(x, expr.Constant(1)),
		), y)

	if got := Aliases(tree); got != tree {
		t.Errorf("Aliases rebuilt a tree without reuse")
	}
	if got := Shadows(tree); got != tree {
		t.Errorf("Shadows rebuilt a tree without shadowing")
	}
}

func TestAliases_ReusedBlock(t *testing.T) {
	x := expr.NewVariable(expr.IntType, "x")
	inner := expr.BlockVars([]*expr.Variable{x}, expr.Assign(x, expr.Constant(1)), x)
	tree := expr.Block(inner, inner)

	got := Aliases(tree).(*expr.BlockNode)
	first := got.Exprs[0].(*expr.BlockNode)
	second := got.Exprs[1].(*expr.BlockNode)
	if first != inner {
		t.Errorf("first occurrence should keep its identity")
	}
	if second.Variables[0] == x {
		t.Fatalf("second occurrence still declares the original variable")
	}
	if second.Exprs[1] != second.Variables[0] {
		t.Errorf("second occurrence result does not reference its own variable")
	}
	if a := second.Exprs[0].(*expr.AssignNode); a.Target != second.Variables[0] {
		t.Errorf("second occurrence assigns a foreign variable")
	}

	if Aliases(got) != got {
		t.Errorf("Aliases is not idempotent")
	}
	if Shadows(tree) != tree {
		t.Errorf("sibling reuse is not shadowing")
	}
}

func TestAliases_NestedUsing(t *testing.T) {
	rt := expr.TypeOf[*resource]()
	v := expr.NewVariable(rt, "r")
	res := expr.ConstantOf(nil, rt)
	inner := ext.Using(v, v, expr.Block(v))
	tree := ext.Using(v, res, inner)

	for name, pass := range map[string]func(expr.Node) expr.Node{"aliases": Aliases, "shadows": Shadows} {
		t.Run(name, func(t *testing.T) {
			got := pass(tree).(*ext.UsingNode)
			if got.Variable != v {
				t.Errorf("outer declaration should keep its identity")
			}
			in := got.Body.(*ext.UsingNode)
			if in.Variable == v {
				t.Fatalf("inner declaration was not renamed")
			}
			if in.Resource != v {
				t.Errorf("inner resource must still read the outer variable")
			}
			body := in.Body.(*expr.BlockNode)
			if body.Exprs[0] != in.Variable {
				t.Errorf("inner body must read the inner variable")
			}
			if !distinct(declared(got)) {
				t.Errorf("declarations are not distinct")
			}
		})
	}
}

func TestAliases_NestedCatch(t *testing.T) {
	e := expr.NewVariable(expr.ErrorType, "e")
	inner := expr.Try(expr.Rethrow(), nil, expr.Catch(e, expr.Throw(e)))
	tree := expr.Try(expr.Throw(expr.ConstantOf(stderrors.New("boom"), expr.ErrorType)), nil, expr.Catch(e, expr.Block(inner, expr.Throw(e))))

	got := Shadows(tree).(*expr.TryNode)
	outer := got.Handlers[0]
	if outer.Variable != e {
		t.Errorf("outer catch should keep its variable")
	}
	body := outer.Body.(*expr.BlockNode)
	in := body.Exprs[0].(*expr.TryNode).Handlers[0]
	if in.Variable == e {
		t.Fatalf("inner catch variable was not renamed")
	}
	if th := in.Body.(*expr.ThrowNode); th.Value != in.Variable {
		t.Errorf("inner handler must throw its own exception")
	}
	if th := body.Exprs[1].(*expr.ThrowNode); th.Value != e {
		t.Errorf("outer handler must throw the outer exception after the nested try")
	}
}

func TestAliases_Labels(t *testing.T) {
	brk := expr.VoidLabel("brk")
	loop := expr.Loop(expr.Break(brk), brk, nil)
	tree := expr.Block(loop, loop)

	got := Aliases(tree).(*expr.BlockNode)
	second := got.Exprs[1].(*expr.LoopNode)
	if second.Break == brk {
		t.Fatalf("reused loop label was not renamed")
	}
	if g := second.Body.(*expr.GotoNode); g.Target != second.Break {
		t.Errorf("break does not target the renamed label")
	}
}

func TestAliases_ForEachCollectionOutsideScope(t *testing.T) {
	v := expr.NewVariable(expr.IntType, "v")
	xs := expr.NewVariable(expr.TypeOf[[]int](), "xs")
	inner := ext.ForEach(v, xs, expr.Empty(), nil, nil)
	outer := ext.ForEach(v, xs, inner, nil, nil)

	got := Aliases(outer).(*ext.ForEachNode)
	in := got.Body.(*ext.ForEachNode)
	if in.Variable == got.Variable {
		t.Errorf("nested loop variable was not renamed")
	}
	if in.Collection != xs {
		t.Errorf("collection should be untouched")
	}
}
