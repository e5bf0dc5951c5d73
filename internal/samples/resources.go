package samples

import (
	"sync"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// sequence enumerates items through a cursor that logs every step.
type sequence struct {
	env   *Env
	items []string
}

func (s *sequence) Enumerator() *cursor {
	s.env.Log("acquire")
	return &cursor{seq: s, i: -1}
}

type cursor struct {
	seq *sequence
	i   int
}

func (c *cursor) MoveNext() bool {
	c.i++
	ok := c.i < len(c.seq.items)
	c.seq.env.Logf("move-next %v", ok)
	return ok
}

func (c *cursor) Current() string {
	c.seq.env.Logf("current %s", c.seq.items[c.i])
	return c.seq.items[c.i]
}

func (c *cursor) Close() { c.seq.env.Log("dispose") }

type resource struct {
	env  *Env
	Name string
}

func (r *resource) Close() { r.env.Logf("close %s", r.Name) }

type person struct {
	Name   string
	Friend *person
}

func init() {
	register(Sample{
		Name:        "foreach-dispose",
		Description: "foreach closes its enumerator on completion and on break",
		Runs:        [][]any{{""}, {"b"}},
		Build: func(env *Env) (expr.Node, error) {
			seq := &sequence{env: env, items: []string{"a", "b", "c"}}
			stop := expr.NewVariable(expr.StringType, "stop")
			v := expr.NewVariable(expr.StringType, "v")
			brk := expr.VoidLabel("brk")
			loop := ext.ForEach(v, expr.Constant(seq), expr.Block(
				env.logValue("item ", v),
				expr.IfThen(expr.Equal(v, stop), expr.Break(brk)),
			), brk, nil)
			return expr.Lambda("walk", expr.Void, expr.Block(loop, env.log("done")), stop), nil
		},
	})

	register(Sample{
		Name:        "foreach-seq",
		Description: "foreach over an iter.Seq stops the sequence when it leaves early",
		Runs:        [][]any{{10}, {1}},
		Build: func(env *Env) (expr.Node, error) {
			seq := func(yield func(int) bool) {
				defer env.Log("sequence stopped")
				for _, x := range []int{1, 2, 3} {
					if !yield(x) {
						return
					}
				}
			}
			limit := expr.NewVariable(expr.IntType, "limit")
			sum := expr.NewVariable(expr.IntType, "sum")
			v := expr.NewVariable(expr.IntType, "v")
			brk := expr.VoidLabel("brk")
			body := expr.BlockVars([]*expr.Variable{sum},
				ext.ForEach(v, expr.Constant(seq), expr.Block(
					expr.IfThen(expr.GreaterThan(v, limit), expr.Break(brk)),
					expr.Assign(sum, expr.Add(sum, v)),
				), brk, nil),
				sum,
			)
			return expr.Lambda("total", expr.IntType, body, limit), nil
		},
	})

	register(Sample{
		Name:        "alias-using",
		Description: "nested using statements that bind the same variable",
		Build: func(env *Env) (expr.Node, error) {
			open := expr.FuncOf("open", func(name string) *resource {
				env.Logf("open %s", name)
				return &resource{env: env, Name: name}
			})
			r := expr.NewVariable(expr.TypeOf[*resource](), "r")
			inner := ext.Using(r, expr.Call(open, expr.Constant("inner")),
				env.logValue("body ", expr.Member(r, "Name")))
			outer := ext.Using(r, expr.Call(open, expr.Constant("outer")), expr.Block(
				inner,
				env.logValue("after ", expr.Member(r, "Name")),
			))
			return expr.Lambda("nested", expr.Void, outer), nil
		},
	})

	register(Sample{
		Name:        "lock",
		Description: "lock region releases the mutex when its body throws",
		Runs:        [][]any{{false}, {true}},
		Build: func(env *Env) (expr.Node, error) {
			unlocked := expr.FuncOf("unlocked", func(m *sync.Mutex) bool {
				if !m.TryLock() {
					return false
				}
				m.Unlock()
				return true
			})
			mu := expr.Constant(&sync.Mutex{})
			fail := expr.NewVariable(expr.BoolType, "fail")
			e := expr.NewVariable(expr.ErrorType, "e")
			body := expr.Block(
				ext.Try(
					ext.Lock(mu, expr.Block(env.log("inside"), expr.IfThen(fail, expr.Throw(expr.Constant(errBoom))))),
					nil,
					ext.Catch(e, env.logValue("caught ", e)),
				),
				env.logValue("free ", expr.Call(unlocked, mu)),
			)
			return expr.Lambda("guarded", expr.Void, body, fail), nil
		},
	})

	register(Sample{
		Name:        "conditional-access",
		Description: "null-conditional member chain evaluates its receiver once",
		Runs:        [][]any{{"ann"}, {"bob"}, {"zed"}},
		Build: func(env *Env) (expr.Node, error) {
			dir := map[string]*person{
				"ann": {Name: "ann", Friend: &person{Name: "bob"}},
				"bob": {Name: "bob"},
			}
			find := expr.FuncOf("find", func(name string) *person {
				env.Logf("find %s", name)
				return dir[name]
			})
			deref := expr.FuncOf("deref", func(s *string) string {
				if s == nil {
					return "<none>"
				}
				return *s
			})
			name := expr.NewVariable(expr.StringType, "name")
			pt := expr.TypeOf[*person]()
			r1, r2 := ext.Receiver(pt), ext.Receiver(pt)
			friend := ext.ConditionalAccess(expr.Call(find, name), r1, expr.Member(r1, "Friend"))
			friendName := ext.ConditionalAccess(friend, r2, expr.Member(r2, "Name"))
			return expr.Lambda("friendOf", expr.StringType, expr.Call(deref, friendName), name), nil
		},
	})
}
