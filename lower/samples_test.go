package lower_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirkon/deepequal"
	"golang.org/x/tools/txtar"

	"github.com/wippyai/exprtree/expr"
	"github.com/wippyai/exprtree/internal/samples"
	"github.com/wippyai/exprtree/lower"
)

func TestSamples(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/samples.txtar")
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	expected := make(map[string]string, len(ar.Files))
	for _, f := range ar.Files {
		expected[f.Name] = string(f.Data)
	}

	for _, s := range samples.All() {
		t.Run(s.Name, func(t *testing.T) {
			want, ok := expected[s.Name]
			if !ok {
				t.Fatalf("no fixture for %s", s.Name)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			p, err := s.Prepare(ctx)
			if err != nil {
				t.Fatalf("Prepare: %v", err)
			}
			defer func() {
				if err := p.Close(ctx); err != nil {
					t.Errorf("Close: %v", err)
				}
			}()

			var stages []lower.Stage
			cfg := lower.Config{Observer: func(st lower.Stage, _ expr.Node) { stages = append(stages, st) }}
			outcomes, err := p.Run(ctx, cfg)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(stages) != len(lower.Stages()) {
				t.Errorf("observed %v, want every stage", stages)
			}

			got := samples.Format(outcomes)
			if got != want {
				deepequal.SideBySide(t, "outcomes", strings.Split(want, "\n"), strings.Split(got, "\n"))
				t.Errorf("%s: outcomes differ from fixture", s.Name)
			}
		})
	}
}

func TestSamples_FixturesHaveSamples(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/samples.txtar")
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	for _, f := range ar.Files {
		if _, ok := samples.Lookup(f.Name); !ok {
			t.Errorf("fixture %s has no sample", f.Name)
		}
	}
}
