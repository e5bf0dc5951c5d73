// Command lower reduces the sample scenarios and prints the tree after each
// stage, optionally running the reduced trees.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/exprtree/dump"
	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/host"
	"github.com/wippyai/exprtree/internal/samples"
	"github.com/wippyai/exprtree/lower"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List scenarios and exit")
		scenario    = flag.String("scenario", "", "Scenarios to lower (comma-separated, default all)")
		stages      = flag.String("stages", "", "Snapshots to print: input, stage names or all (comma-separated)")
		runCalls    = flag.Bool("run", false, "Run the scenario calls after lowering")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		configFile  = flag.String("config", "", "YAML config file")
		color       = flag.String("color", "", "Color mode: auto, always or never")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err == nil {
		err = applyFlags(cfg, *scenario, *stages, *color)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := cfg.logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	lower.SetLogger(logger)
	host.SetLogger(logger)

	st := newStyles(useColor(cfg.Color, os.Stdout))

	if *list {
		listScenarios(os.Stdout, st)
		return
	}

	if *interactive {
		if err := runInteractive(cfg, logger, st); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), os.Stdout, cfg, logger, st, *runCalls); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg *config, scenario, stages, color string) error {
	if scenario != "" {
		cfg.Scenarios = splitList(scenario)
	}
	if stages != "" {
		cfg.Stages = splitList(stages)
	}
	if color != "" {
		cfg.Color = color
	}
	return cfg.validate()
}

func listScenarios(w io.Writer, st styles) {
	for _, s := range samples.All() {
		fmt.Fprintf(w, "%-20s %s\n", st.stage.Render(s.Name), st.desc.Render(s.Description))
	}
}

// snapshot is a named tree: the input or the result of one stage.
type snapshot struct {
	name string
	tree expr.Node
}

// lowered is a prepared scenario with its stage snapshots.
type lowered struct {
	prepared *samples.Prepared
	snaps    []snapshot
	fn       *host.Func
}

// lowerScenario builds and compiles a scenario, recording every stage.
func lowerScenario(ctx context.Context, name string, cfg *config, logger *zap.Logger) (*lowered, error) {
	s, ok := samples.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	p, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	l := &lowered{prepared: p, snaps: []snapshot{{name: stageInput, tree: p.Tree}}}
	lc := cfg.lowerConfig(logger)
	lc.Observer = func(stage lower.Stage, n expr.Node) {
		l.snaps = append(l.snaps, snapshot{name: stage.String(), tree: n})
	}
	l.fn, err = p.Compile(lc)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	return l, nil
}

func (l *lowered) calls(ctx context.Context) []samples.Outcome {
	return l.prepared.Calls(ctx, l.fn)
}

func (l *lowered) close(ctx context.Context) error {
	return l.prepared.Close(ctx)
}

func run(ctx context.Context, w io.Writer, cfg *config, logger *zap.Logger, st styles, runCalls bool) error {
	for i, name := range cfg.scenarios() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		l, err := lowerScenario(ctx, name, cfg, logger)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(w, "%s %s\n", st.title.Render(name), st.desc.Render(l.prepared.Description))
		for _, snap := range l.snaps {
			if !cfg.shows(snap.name) {
				continue
			}
			fmt.Fprintf(w, "\n%s\n", st.stage.Render("== "+snap.name))
			fmt.Fprint(w, dump.String(snap.tree))
		}
		if runCalls {
			fmt.Fprintln(w)
			writeOutcomes(w, st, l.calls(ctx))
		}
		if err := l.close(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func writeOutcomes(w io.Writer, st styles, outcomes []samples.Outcome) {
	for _, o := range outcomes {
		text := strings.TrimSuffix(o.String(), "\n")
		if o.Err != nil {
			fmt.Fprintln(w, st.err.Render(text))
			continue
		}
		fmt.Fprintln(w, st.value.Render(text))
	}
}
