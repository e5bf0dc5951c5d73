// Package samples is a catalogue of hand-built scenario trees. Every sample
// records what it logs and returns for a fixed list of calls, so the CLI can
// show it stage by stage and the conformance test can check every pass.
package samples

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/wippyai/exprtree"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/host"
	"github.com/wippyai/exprtree/lower"
)

// Sample describes one scenario.
type Sample struct {
	Name        string
	Description string
	// Runs lists the argument lists the root lambda is called with.
	Runs [][]any
	// Build constructs the tree. The environment collects log lines and
	// releases anything the tree holds on to.
	Build func(env *Env) (expr.Node, error)
}

var registry []Sample

func register(s Sample) {
	registry = append(registry, s)
}

// All returns the samples sorted by name.
func All() []Sample {
	out := slices.Clone(registry)
	slices.SortFunc(out, func(a, b Sample) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Lookup finds a sample by name.
func Lookup(name string) (Sample, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}

// Names lists the registered sample names in order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// Prepared is a sample whose tree has been built.
type Prepared struct {
	Sample
	Tree expr.Node
	Env  *Env
}

// Prepare builds the sample tree. Construction failures are returned as
// errors.
func (s Sample) Prepare(ctx context.Context) (*Prepared, error) {
	env := NewEnv()
	var berr error
	tree, err := expr.Build(func() expr.Node {
		n, err := s.Build(env)
		berr = err
		return n
	})
	if err == nil {
		err = berr
	}
	if err != nil {
		_ = env.Close(ctx)
		return nil, fmt.Errorf("build %s: %w", s.Name, err)
	}
	return &Prepared{Sample: s, Tree: tree, Env: env}, nil
}

// Close releases resources acquired while building.
func (p *Prepared) Close(ctx context.Context) error {
	return p.Env.Close(ctx)
}

// Compile reduces and compiles the tree.
func (p *Prepared) Compile(cfg lower.Config) (*host.Func, error) {
	return exprtree.Compile(p.Tree, cfg)
}

// Run compiles the tree and calls it once per entry of Runs. Only reduction
// and compile errors are returned.
func (p *Prepared) Run(ctx context.Context, cfg lower.Config) ([]Outcome, error) {
	fn, err := p.Compile(cfg)
	if err != nil {
		return nil, err
	}
	return p.Calls(ctx, fn), nil
}

// Calls calls fn once per entry of Runs. A call that fails records its error
// in the outcome.
func (p *Prepared) Calls(ctx context.Context, fn *host.Func) []Outcome {
	runs := p.Runs
	if len(runs) == 0 {
		runs = [][]any{nil}
	}
	out := make([]Outcome, 0, len(runs))
	for _, args := range runs {
		p.Env.Reset()
		v, err := fn.Wait(ctx, args...)
		out = append(out, Outcome{Args: args, Value: v, Err: err, Lines: p.Env.Lines()})
	}
	return out
}

// Outcome is what one call logged and produced.
type Outcome struct {
	Args  []any
	Value any
	Err   error
	Lines []string
}

func (o Outcome) String() string {
	var b strings.Builder
	args := make([]string, len(o.Args))
	for i, a := range o.Args {
		args[i] = fmt.Sprintf("%#v", a)
	}
	fmt.Fprintf(&b, "call(%s)", strings.Join(args, ", "))
	if o.Err != nil {
		fmt.Fprintf(&b, " error: %v\n", o.Err)
	} else {
		fmt.Fprintf(&b, " = %#v\n", o.Value)
	}
	for _, l := range o.Lines {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Format renders outcomes in fixture form.
func Format(outcomes []Outcome) string {
	var b strings.Builder
	for _, o := range outcomes {
		b.WriteString(o.String())
	}
	return b.String()
}
