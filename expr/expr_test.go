package expr

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/exprtree/errors"
)

func TestBuild_RecoversConstructionErrors(t *testing.T) {
	tests := []struct {
		name string
		kind errors.Kind
		fn   func() Node
	}{
		{
			name: "duplicate declaration",
			kind: errors.KindDuplicateDeclaration,
			fn: func() Node {
				x := NewVariable(IntType, "x")
				return BlockVars([]*Variable{x, x}, x)
			},
		},
		{
			name: "assign type mismatch",
			kind: errors.KindTypeMismatch,
			fn: func() Node {
				return Assign(NewVariable(IntType, "x"), Constant("s"))
			},
		},
		{
			name: "non-void continue label",
			kind: errors.KindNonVoidLabel,
			fn: func() Node {
				return Loop(Empty(), nil, NewLabel(IntType, "c"))
			},
		},
		{
			name: "call arity",
			kind: errors.KindArity,
			fn: func() Node {
				return Call(FuncOf("f", func(int) {}))
			},
		},
		{
			name: "non-boolean test",
			kind: errors.KindTypeMismatch,
			fn: func() Node {
				return IfThen(Constant(1), Empty())
			},
		},
		{
			name: "goto void label with value",
			kind: errors.KindTypeMismatch,
			fn: func() Node {
				return GotoValue(VoidLabel("l"), Constant(1))
			},
		},
		{
			name: "unknown field",
			kind: errors.KindNotFound,
			fn: func() Node {
				type point struct{ X int }
				return Member(Constant(point{}), "Y")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Build(tt.fn)
			if err == nil {
				t.Fatalf("expected error, got node %v", n.Kind())
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Phase != errors.PhaseConstruct || e.Kind != tt.kind {
				t.Errorf("got [%s] %s, want [construct] %s", e.Phase, e.Kind, tt.kind)
			}
		})
	}
}

func TestBuild_RepanicsForeignPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("expected foreign panic to propagate, got %v", r)
		}
	}()
	_, _ = Build(func() Node { panic("boom") })
}

func TestUpdate_IdentityWhenUnchanged(t *testing.T) {
	x := NewVariable(IntType, "x")
	l := VoidLabel("brk")
	f := FuncOf("f", func(a, b int) int { return a + b })
	nodes := []Node{
		Assign(x, Constant(1)),
		BlockVars([]*Variable{x}, Assign(x, Constant(2)), x),
		Condition(Constant(true), Constant(1), Constant(2)),
		Loop(Block(Break(l)), l, nil),
		Switch(Void, x, Empty(), Case(Empty(), Constant(1))),
		Try(Constant(1), nil, CatchType(ErrorType, Constant(2))),
		Call(f, x, Constant(3)),
		Lambda("id", IntType, x, x),
		Add(x, Constant(1)),
		Not(Constant(false)),
		Convert(x, Int64Type),
		TypeIs(Convert(x, AnyType), IntType),
	}
	identity := &Rewriter{}
	for _, n := range nodes {
		if got := n.RewriteChildren(identity); got != n {
			t.Errorf("%s: identity rewrite returned a new node", n.Kind())
		}
	}
}

func TestRewriter_ReplacesReferences(t *testing.T) {
	x := NewVariable(IntType, "x")
	y := NewVariable(IntType, "y")
	tree := BlockVars([]*Variable{x}, Assign(x, Constant(1)), Add(x, x))

	r := &Rewriter{}
	swap := func(v *Variable) *Variable {
		if v == x {
			return y
		}
		return v
	}
	r.Variable = swap
	r.Node = func(n Node) Node {
		if v, ok := n.(*Variable); ok {
			return swap(v)
		}
		return n.RewriteChildren(r)
	}
	got := tree.RewriteChildren(r).(*BlockNode)
	if got == tree {
		t.Fatal("expected a new block")
	}
	if got.Variables[0] != y {
		t.Errorf("declaration not replaced")
	}
	if Contains(got, func(n Node) bool { return n == Node(x) }) {
		t.Errorf("reference to x survived the rewrite")
	}
	if tree.Variables[0] != x {
		t.Errorf("original tree was mutated")
	}
}

func TestTransform_PostOrder(t *testing.T) {
	tree := Add(Constant(1), Multiply(Constant(2), Constant(3)))
	var order []Kind
	Transform(tree, func(n Node) Node {
		order = append(order, n.Kind())
		return n
	})
	want := []Kind{KindConstant, KindConstant, KindConstant, KindBinary, KindBinary}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("step %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

type counter struct{ n int }

func (c *counter) Inc(by int) int {
	c.n += by
	return c.n
}

type incrementer interface {
	Inc(by int) int
}

func TestMethod_Invoke(t *testing.T) {
	boom := stderrors.New("boom")
	tests := []struct {
		name    string
		m       *Method
		recv    any
		args    []any
		want    any
		wantErr error
	}{
		{
			name: "free function",
			m:    FuncOf("add", func(a, b int) int { return a + b }),
			args: []any{2, 3},
			want: 5,
		},
		{
			name: "void function",
			m:    FuncOf("noop", func() {}),
			want: nil,
		},
		{
			name:    "raised error",
			m:       FuncOf("fail", func() (int, error) { return 0, boom }),
			wantErr: boom,
		},
		{
			name: "receiver function",
			m:    MethodOf("inc", func(c *counter, by int) int { return c.Inc(by) }),
			recv: &counter{n: 1},
			args: []any{2},
			want: 3,
		},
		{
			name: "concrete method",
			m:    MethodByName(TypeOf[*counter](), "Inc"),
			recv: &counter{n: 10},
			args: []any{1},
			want: 11,
		},
		{
			name: "interface method",
			m:    MethodByName(TypeOf[incrementer](), "Inc"),
			recv: &counter{},
			args: []any{4},
			want: 4,
		},
		{
			name: "nil argument becomes zero value",
			m:    FuncOf("isNil", func(p *counter) bool { return p == nil }),
			args: []any{nil},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.m.Invoke(tt.recv, tt.args...)
			if tt.wantErr != nil {
				if !stderrors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMethod_Signature(t *testing.T) {
	m := FuncOf("parse", func(string) (int, error) { return 0, nil })
	if !m.Raises || m.Result != IntType {
		t.Errorf("got raises=%v result=%s", m.Raises, TypeString(m.Result))
	}
	m = FuncOf("check", func() error { return nil })
	if !m.Raises || !IsVoid(m.Result) {
		t.Errorf("trailing error should be the exception channel, got result %s", TypeString(m.Result))
	}
	if _, ok := LookupMethod(TypeOf[*counter](), "Dec"); ok {
		t.Errorf("expected lookup of missing method to fail")
	}
}

func TestConvertible(t *testing.T) {
	tests := []struct {
		from, to Type
		want     bool
	}{
		{IntType, Int64Type, true},
		{IntType, AnyType, true},
		{AnyType, IntType, true},
		{IntType, TypeOf[*int](), true},
		{StringType, IntType, false},
		{IntType, Void, false},
		{TypeOf[error](), TypeOf[*counter](), false},
	}
	for _, tt := range tests {
		if got := Convertible(tt.from, tt.to); got != tt.want {
			t.Errorf("Convertible(%s, %s) = %v, want %v", TypeString(tt.from), TypeString(tt.to), got, tt.want)
		}
	}
}

func TestBlock_Typing(t *testing.T) {
	x := NewVariable(IntType, "x")
	if got := Block(Assign(x, Constant(1)), x).Type(); got != IntType {
		t.Errorf("block type = %s, want int", TypeString(got))
	}
	if got := BlockTyped(Void, nil, Constant(1)).Type(); !IsVoid(got) {
		t.Errorf("void block type = %s", TypeString(got))
	}
	if got := Block().Type(); !IsVoid(got) {
		t.Errorf("empty block type = %s", TypeString(got))
	}
	l := NewLabel(IntType, "ret")
	if def := Label(l, nil).Default; def == nil || def.Type() != IntType {
		t.Errorf("typed label should default to zero value")
	}
}
