package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/standardbeagle/configtpl"
	"github.com/standardbeagle/configtpl/internal/config"
	"github.com/standardbeagle/configtpl/internal/logging"
	"github.com/standardbeagle/configtpl/internal/merge"
	"github.com/standardbeagle/configtpl/internal/parse"
)

// buildFlags are the flags shared by render and render-string.
type buildFlags struct {
	defaults     []string
	overrides    []string
	sets         []string
	vars         []string
	contextFiles []string
	noDirectives bool
	directiveKey string
	output       string
	get          string
	logLevel     string
	timeout      time.Duration
	noSystem     bool
}

func (f *buildFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.defaults, "defaults", nil, "build `FILE` as initial values (repeatable)")
	fs.StringArrayVar(&f.overrides, "overrides", nil, "build `FILE` and merge it last (repeatable)")
	fs.StringArrayVar(&f.sets, "set", nil, "override `PATH=VALUE`, VALUE parsed as a YAML scalar (repeatable)")
	fs.StringArrayVar(&f.vars, "var", nil, "template variable `KEY=VALUE`, never written to the output (repeatable)")
	fs.StringArrayVar(&f.contextFiles, "context-file", nil, "build `FILE` as template variables (repeatable)")
	fs.BoolVar(&f.noDirectives, "no-directives", false, "leave directive blocks in place")
	fs.StringVar(&f.directiveKey, "directive-key", "", "reserved directive `KEY` (default \"@configtpl\")")
	fs.StringVarP(&f.output, "output", "o", "yaml", "output `FORMAT`: yaml or json")
	fs.StringVar(&f.get, "get", "", "print only the value at a dotted `PATH`")
	fs.StringVar(&f.logLevel, "log-level", "", "log `LEVEL`: debug, info, warn, error")
	fs.DurationVar(&f.timeout, "cmd-timeout", 0, "timeout for each cmd call (default 30s)")
	fs.BoolVar(&f.noSystem, "no-system", false, "disable cmd, readFile, fileExists and glob")
}

// applySettings fills flags that were not given on the command line from
// settings files.
func (f *buildFlags) applySettings(fs *pflag.FlagSet, s *config.Settings) {
	if !fs.Changed("defaults") {
		f.defaults = s.Defaults
	}
	if !fs.Changed("overrides") {
		f.overrides = s.Overrides
	}
	if !fs.Changed("context-file") {
		f.contextFiles = s.ContextFiles
	}
	if !fs.Changed("directive-key") {
		f.directiveKey = s.DirectiveKey
	}
	if !fs.Changed("no-directives") {
		f.noDirectives = s.NoDirectives
	}
	if !fs.Changed("output") && s.Output != "" {
		f.output = s.Output
	}
	if !fs.Changed("log-level") {
		f.logLevel = s.LogLevel
	}
	if !fs.Changed("cmd-timeout") {
		f.timeout = s.CommandTimeout
	}

	// Settings entries go first so command-line pairs win.
	f.sets = append(sortedPairs(s.Set), f.sets...)
	f.vars = append(sortedPairs(s.Vars), f.vars...)
}

func (f *buildFlags) newBuilder() *configtpl.Builder {
	opts := []configtpl.Option{
		configtpl.WithLogger(logging.NewFromEnvWithLevel(f.logLevel)),
	}
	if f.timeout != 0 {
		opts = append(opts, configtpl.WithCommandTimeout(f.timeout))
	}
	if f.noSystem {
		opts = append(opts, configtpl.WithoutSystemFuncs())
	}
	return configtpl.New(opts...)
}

// buildOptions turns the flags into build options. Value files are built
// with b themselves, so they may be templated too.
func (f *buildFlags) buildOptions(ctx context.Context, b *configtpl.Builder) ([]configtpl.BuildOption, error) {
	defaults, err := buildValues(ctx, b, f.defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	overrides, err := buildValues(ctx, b, f.overrides)
	if err != nil {
		return nil, fmt.Errorf("overrides: %w", err)
	}
	for _, pair := range f.sets {
		path, raw, err := splitPair(pair)
		if err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
		value, err := parseScalar(raw)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", path, err)
		}
		if overrides, err = merge.SetPath(overrides, path, value); err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
	}

	extra, err := buildValues(ctx, b, f.contextFiles)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	for _, pair := range f.vars {
		path, value, err := splitPair(pair)
		if err != nil {
			return nil, fmt.Errorf("--var: %w", err)
		}
		if extra, err = merge.SetPath(extra, path, value); err != nil {
			return nil, fmt.Errorf("--var: %w", err)
		}
	}

	opts := []configtpl.BuildOption{
		configtpl.WithDefaults(defaults),
		configtpl.WithOverrides(overrides),
		configtpl.WithRenderContext(extra),
	}
	switch {
	case f.noDirectives:
		opts = append(opts, configtpl.WithoutDirectives())
	case f.directiveKey != "":
		opts = append(opts, configtpl.WithDirectiveKey(f.directiveKey))
	}
	return opts, nil
}

func buildValues(ctx context.Context, b *configtpl.Builder, files []string) (map[string]any, error) {
	if len(files) == 0 {
		return map[string]any{}, nil
	}
	return b.BuildFromFiles(ctx, files)
}

func splitPair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("expected KEY=VALUE, got %q", pair)
	}
	return strings.TrimSpace(key), value, nil
}

// parseScalar reads a --set value as YAML so "8080" is a number and
// "true" a bool. An empty value stays an empty string.
func parseScalar(raw string) (any, error) {
	if raw == "" {
		return "", nil
	}
	return parse.YAML{}.Parse([]byte(raw))
}

func sortedPairs(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}

func loadSettings() (*config.Settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return config.Load(cwd)
}
