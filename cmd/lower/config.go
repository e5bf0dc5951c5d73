package main

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/internal/samples"
	"github.com/wippyai/exprtree/lower"
)

// stageInput names the tree as built, before any stage ran.
const stageInput = "input"

type config struct {
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	// Stages lists the snapshots to print: "input", stage names or "all".
	Stages     []string `yaml:"stages"`
	Color      string   `yaml:"color"`
	Scenarios  []string `yaml:"scenarios"`
	SkipShadow bool     `yaml:"skip_shadow"`
	MaxDepth   int      `yaml:"max_depth"`
}

func defaultConfig() *config {
	c := &config{Color: "auto", Stages: []string{stageInput, lower.StageAsync.String()}}
	c.Log.Level = "warn"
	return c
}

// loadConfig reads the YAML file at path over the defaults. An empty path
// yields the defaults.
func loadConfig(path string) (*config, error) {
	c := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read config "+path)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse config "+path)
		}
	}
	return c, c.validate()
}

func (c *config) validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Node("log.level").
			Detail("unknown level %q", c.Log.Level).
			Build()
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Node("color").
			Detail("want auto, always or never, got %q", c.Color).
			Build()
	}
	for _, s := range c.Stages {
		if s == stageInput || s == "all" {
			continue
		}
		if _, ok := lower.ParseStage(s); !ok {
			return errors.NotFound(errors.PhaseConfig, "stage", s)
		}
	}
	for _, s := range c.Scenarios {
		if _, ok := samples.Lookup(s); !ok {
			return errors.NotFound(errors.PhaseConfig, "scenario", s)
		}
	}
	if c.MaxDepth < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max_depth must not be negative")
	}
	return nil
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// shows reports whether the snapshot named name is printed.
func (c *config) shows(name string) bool {
	for _, s := range c.Stages {
		if s == "all" || s == name {
			return true
		}
	}
	return false
}

func (c *config) logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func (c *config) scenarios() []string {
	if len(c.Scenarios) > 0 {
		return c.Scenarios
	}
	return samples.Names()
}

func (c *config) lowerConfig(logger *zap.Logger) lower.Config {
	return lower.Config{Logger: logger, SkipShadow: c.SkipShadow, MaxDepth: c.MaxDepth}
}
