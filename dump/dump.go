// Package dump renders native and extended trees as indented text. Variables
// and labels are printed as name#n, numbered by first appearance, so two
// distinct identities with the same name stay distinguishable.
package dump

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/ext"
)

// String renders n.
func String(n expr.Node) string {
	var b strings.Builder
	_ = Fprint(&b, n)
	return b.String()
}

// Fprint writes the rendering of n to w.
func Fprint(w io.Writer, n expr.Node) error {
	p := &printer{ids: make(map[any]int), names: make(map[string]int)}
	p.node(0, "", n)
	_, err := io.WriteString(w, p.b.String())
	return err
}

type printer struct {
	b     strings.Builder
	ids   map[any]int
	names map[string]int
}

func (p *printer) id(key any, name string) string {
	if name == "" {
		name = "_"
	}
	n, ok := p.ids[key]
	if !ok {
		p.names[name]++
		n = p.names[name]
		p.ids[key] = n
	}
	return fmt.Sprintf("%s#%d", name, n)
}

func (p *printer) variable(v *expr.Variable) string {
	if v == nil {
		return "<nil>"
	}
	return p.id(v, v.Name)
}

func (p *printer) label(l *expr.LabelTarget) string {
	if l == nil {
		return "-"
	}
	s := p.id(l, l.Name)
	if !expr.IsVoid(l.Type()) {
		s += ":" + expr.TypeString(l.Type())
	}
	return s
}

func (p *printer) decls(vars []*expr.Variable) string {
	if len(vars) == 0 {
		return ""
	}
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = p.variable(v) + " " + expr.TypeString(v.Type())
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func (p *printer) line(depth int, role, text string) {
	p.b.WriteString(strings.Repeat("  ", depth))
	if role != "" {
		p.b.WriteString(role)
		p.b.WriteString(": ")
	}
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

func typed(head string, t expr.Type) string {
	if expr.IsVoid(t) {
		return head
	}
	return head + " : " + expr.TypeString(t)
}

func (p *printer) list(depth int, role string, nodes []expr.Node) {
	for _, n := range nodes {
		p.node(depth, role, n)
	}
}

func (p *printer) node(depth int, role string, n expr.Node) {
	if n == nil {
		p.line(depth, role, "<nil>")
		return
	}
	d := depth + 1
	switch n := n.(type) {
	case *expr.ConstantNode:
		p.line(depth, role, typed("Constant "+constant(n.Value), n.Type()))
	case *expr.DefaultNode:
		p.line(depth, role, typed("Default", n.Type()))
	case *expr.Variable:
		p.line(depth, role, "Variable "+p.variable(n))
	case *expr.AssignNode:
		p.line(depth, role, "Assign "+p.variable(n.Target))
		p.node(d, "", n.Value)
	case *expr.BlockNode:
		p.line(depth, role, typed("Block"+p.decls(n.Variables), n.Type()))
		p.list(d, "", n.Exprs)
	case *expr.ConditionalNode:
		p.line(depth, role, typed("Conditional", n.Type()))
		p.node(d, "test", n.Test)
		p.node(d, "then", n.IfTrue)
		p.node(d, "else", n.IfFalse)
	case *expr.LoopNode:
		p.line(depth, role, typed(fmt.Sprintf("Loop break=%s continue=%s", p.label(n.Break), p.label(n.Continue)), n.Type()))
		p.node(d, "", n.Body)
	case *expr.GotoNode:
		p.line(depth, role, typed(n.Flavor.String()+" "+p.label(n.Target), n.Type()))
		if n.Value != nil {
			p.node(d, "value", n.Value)
		}
	case *expr.LabelNode:
		p.line(depth, role, "Label "+p.label(n.Target))
		if n.Default != nil && !expr.IsVoid(n.Target.Type()) {
			p.node(d, "default", n.Default)
		}
	case *expr.SwitchNode:
		p.line(depth, role, typed("Switch", n.Type()))
		p.node(d, "value", n.Value)
		for _, c := range n.Cases {
			p.line(d, "", "Case")
			p.list(d+1, "test", c.TestValues)
			p.node(d+1, "body", c.Body)
		}
		if n.DefaultBody != nil {
			p.node(d, "default", n.DefaultBody)
		}
	case *expr.TryNode:
		p.line(depth, role, typed("Try", n.Type()))
		p.node(d, "body", n.Body)
		for _, h := range n.Handlers {
			p.line(d, "", "Catch "+p.catchHead(h.Test, h.Variable))
			p.node(d+1, "body", h.Body)
		}
		if n.Finally != nil {
			p.node(d, "finally", n.Finally)
		}
	case *expr.ThrowNode:
		if n.Value == nil {
			p.line(depth, role, typed("Rethrow", n.Type()))
			return
		}
		p.line(depth, role, typed("Throw", n.Type()))
		p.node(d, "", n.Value)
	case *expr.CallNode:
		p.line(depth, role, typed("Call "+n.Method.String(), n.Type()))
		if n.Object != nil {
			p.node(d, "object", n.Object)
		}
		p.list(d, "arg", n.Args)
	case *expr.InvokeNode:
		p.line(depth, role, typed("Invoke", n.Type()))
		p.node(d, "target", n.Target)
		p.list(d, "arg", n.Args)
	case *expr.LambdaNode:
		p.line(depth, role, typed("Lambda "+n.Name+p.decls(n.Params), n.Result))
		p.node(d, "", n.Body)
	case *expr.BinaryNode:
		p.line(depth, role, typed(n.Op.String(), n.Type()))
		p.node(d, "", n.Left)
		p.node(d, "", n.Right)
	case *expr.UnaryNode:
		p.line(depth, role, typed(n.Op.String(), n.Type()))
		p.node(d, "", n.Operand)
	case *expr.ConvertNode:
		p.line(depth, role, typed("Convert", n.Type()))
		p.node(d, "", n.Operand)
	case *expr.TypeIsNode:
		p.line(depth, role, "TypeIs "+expr.TypeString(n.Test))
		p.node(d, "", n.Operand)
	case *expr.MemberNode:
		p.line(depth, role, typed("Member "+n.Field, n.Type()))
		p.node(d, "", n.Object)
	default:
		p.extension(depth, role, n)
	}
}

// constant renders scalars literally and anything else by its type.
func constant(v any) string {
	if v == nil {
		return "nil"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return fmt.Sprintf("%#v", v)
	}
	return fmt.Sprintf("<%T>", v)
}

func (p *printer) catchHead(t expr.Type, v *expr.Variable) string {
	if v == nil {
		return expr.TypeString(t)
	}
	return expr.TypeString(t) + " " + p.variable(v)
}

func (p *printer) extension(depth int, role string, n expr.Node) {
	d := depth + 1
	switch n := n.(type) {
	case *ext.BlockNode:
		p.line(depth, role, typed("ext.Block"+p.decls(n.Variables)+" return="+p.label(n.Return), n.Type()))
		p.list(d, "", n.Exprs)
	case *ext.WhileNode:
		p.line(depth, role, fmt.Sprintf("ext.While break=%s continue=%s", p.label(n.Break), p.label(n.Continue)))
		p.node(d, "test", n.Test)
		p.node(d, "body", n.Body)
	case *ext.DoWhileNode:
		p.line(depth, role, fmt.Sprintf("ext.DoWhile break=%s continue=%s", p.label(n.Break), p.label(n.Continue)))
		p.node(d, "body", n.Body)
		p.node(d, "test", n.Test)
	case *ext.ForNode:
		p.line(depth, role, fmt.Sprintf("ext.For%s break=%s continue=%s", p.decls(n.Variables), p.label(n.Break), p.label(n.Continue)))
		p.list(d, "init", n.Initializers)
		if n.Test != nil {
			p.node(d, "test", n.Test)
		}
		p.list(d, "step", n.Iterators)
		p.node(d, "body", n.Body)
	case *ext.ForEachNode:
		p.line(depth, role, fmt.Sprintf("ext.ForEach %s %s break=%s continue=%s", p.variable(n.Variable),
			expr.TypeString(n.Variable.Type()), p.label(n.Break), p.label(n.Continue)))
		p.node(d, "in", n.Collection)
		p.node(d, "body", n.Body)
	case *ext.SwitchNode:
		p.line(depth, role, "ext.Switch"+p.decls(n.Variables)+" break="+p.label(n.Break))
		p.node(d, "value", n.Value)
		for _, c := range n.Cases {
			vals := make([]string, len(c.Values))
			for i, v := range c.Values {
				vals[i] = constant(v.Value)
			}
			if c.IsDefault {
				vals = append(vals, "default")
			}
			p.line(d, "", "Case "+strings.Join(vals, ", "))
			p.node(d+1, "", c.Body)
		}
	case *ext.GotoCaseNode:
		p.line(depth, role, "ext."+strings.ReplaceAll(n.String(), "goto case", "GotoCase"))
	case *ext.GotoDefaultNode:
		p.line(depth, role, "ext.GotoDefault")
	case *ext.TryNode:
		p.line(depth, role, typed("ext.Try", n.Type()))
		p.node(d, "body", n.Body)
		for _, h := range n.Handlers {
			p.line(d, "", "Catch "+p.catchHead(h.Test, h.Variable))
			if h.Filter != nil {
				p.node(d+1, "when", h.Filter)
			}
			p.node(d+1, "body", h.Body)
		}
		if n.Finally != nil {
			p.node(d, "finally", n.Finally)
		}
	case *ext.UsingNode:
		head := "ext.Using"
		if n.Variable != nil {
			head += " " + p.variable(n.Variable) + " " + expr.TypeString(n.Variable.Type())
		}
		p.line(depth, role, typed(head, n.Type()))
		p.node(d, "resource", n.Resource)
		p.node(d, "body", n.Body)
	case *ext.LockNode:
		p.line(depth, role, typed("ext.Lock", n.Type()))
		p.node(d, "object", n.Object)
		p.node(d, "body", n.Body)
	case *ext.ConditionalAccessNode:
		p.line(depth, role, typed("ext.ConditionalAccess "+p.id(n.Placeholder, "recv"), n.Type()))
		p.node(d, "receiver", n.Receiver)
		p.node(d, "access", n.WhenNotNull)
	case *ext.ConditionalReceiver:
		p.line(depth, role, "ext.Receiver "+p.id(n, "recv"))
	case *ext.AwaitNode:
		p.line(depth, role, typed("ext.Await", n.Type()))
		p.node(d, "", n.Operand)
	case *ext.AsyncLambdaNode:
		p.line(depth, role, typed("ext.AsyncLambda "+n.Name+p.decls(n.Params), n.Result))
		p.node(d, "", n.Body)
	case expr.Extension:
		p.line(depth, role, typed("ext."+n.ExtensionName(), n.Type()))
	default:
		p.line(depth, role, typed(n.Kind().String(), n.Type()))
	}
}
