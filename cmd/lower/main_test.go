package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/exprtree/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lower.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  development: true
stages: [input, reduce]
color: never
scenarios: [switch-goto]
max_depth: 64
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Development {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.shows("input") || !cfg.shows("reduce") || cfg.shows("async") {
		t.Errorf("stages = %v", cfg.Stages)
	}
	if got := cfg.scenarios(); len(got) != 1 || got[0] != "switch-goto" {
		t.Errorf("scenarios = %v", got)
	}
	if lc := cfg.lowerConfig(zap.NewNop()); lc.MaxDepth != 64 {
		t.Errorf("MaxDepth = %d", lc.MaxDepth)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Color != "auto" || cfg.Log.Level != "warn" {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.shows("input") || !cfg.shows("async") || cfg.shows("spill") {
		t.Errorf("default stages = %v", cfg.Stages)
	}
	if len(cfg.scenarios()) == 0 {
		t.Error("no default scenarios")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind errors.Kind
	}{
		{name: "level", body: "log:\n  level: loud\n", kind: errors.KindInvalidInput},
		{name: "color", body: "color: sometimes\n", kind: errors.KindInvalidInput},
		{name: "stage", body: "stages: [inline]\n", kind: errors.KindNotFound},
		{name: "scenario", body: "scenarios: [nope]\n", kind: errors.KindNotFound},
		{name: "depth", body: "max_depth: -1\n", kind: errors.KindInvalidInput},
		{name: "syntax", body: "stages: [\n", kind: errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if e.Phase != errors.PhaseConfig || e.Kind != tt.kind {
				t.Errorf("got %s/%s, want config/%s", e.Phase, e.Kind, tt.kind)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := defaultConfig()
	if err := applyFlags(cfg, "spill-order, switch-goto", "all", "never"); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if len(cfg.Scenarios) != 2 || cfg.Scenarios[1] != "switch-goto" {
		t.Errorf("scenarios = %v", cfg.Scenarios)
	}
	if !cfg.shows("percolate") || cfg.Color != "never" {
		t.Errorf("cfg = %+v", cfg)
	}
	if err := applyFlags(cfg, "", "", "loud"); err == nil {
		t.Error("expected color error")
	}
}

func TestRun_PrintsStagesAndOutcomes(t *testing.T) {
	cfg := defaultConfig()
	if err := applyFlags(cfg, "switch-goto", "input,reduce", "never"); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	var buf bytes.Buffer
	if err := run(context.Background(), &buf, cfg, zap.NewNop(), newStyles(false), true); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"switch-goto", "== input", "ext.Switch", "== reduce", "call(5) = <nil>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "== async") {
		t.Errorf("unselected stage printed:\n%s", out)
	}
}

func TestRun_UnknownScenario(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scenarios = []string{"nope"}
	var buf bytes.Buffer
	if err := run(context.Background(), &buf, cfg, zap.NewNop(), newStyles(false), false); err == nil {
		t.Error("expected error")
	}
}
