// Package configtpl builds a single configuration value from templated
// sources.
//
// Each source is rendered as a Go text/template against everything merged
// so far, parsed as structured data (YAML by default) and deep-merged onto
// the result. A source may ask for more sources to be loaded after it
// through a reserved directive block:
//
//	"@configtpl":
//	  load_next_defer:
//	    - common.cfg
//
// Mappings merge recursively; sequences and scalars from later sources
// replace earlier ones. Loading the same file twice in one build is an
// error.
package configtpl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/standardbeagle/configtpl/internal/builtins"
	"github.com/standardbeagle/configtpl/internal/directive"
	"github.com/standardbeagle/configtpl/internal/logging"
	"github.com/standardbeagle/configtpl/internal/merge"
	"github.com/standardbeagle/configtpl/internal/parse"
	"github.com/standardbeagle/configtpl/internal/render"
)

// Builder assembles configuration values. A Builder owns its template
// function registry; registering functions is not safe concurrently with
// builds.
type Builder struct {
	logger       logging.Logger
	directiveKey string
	funcs        *render.Funcs
	renderer     *render.Renderer
	parsers      *parse.Registry
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.Default()
	}

	executor := builtins.NewExecutor()
	if o.cmdTimeout != 0 {
		executor.Timeout = o.cmdTimeout
	}

	renderOpts := []render.Option{render.WithExecutor(executor)}
	if !o.system {
		renderOpts = append(renderOpts, render.WithoutSystemFuncs())
	}

	funcs := render.NewFuncs(o.builtins)
	parsers := parse.NewRegistry()
	for _, p := range o.parsers {
		parsers.Register(p.format, p.parser, p.extensions...)
	}

	return &Builder{
		logger:       logger,
		directiveKey: o.directiveKey,
		funcs:        funcs,
		renderer:     render.New(funcs, renderOpts...),
		parsers:      parsers,
	}
}

// SetFunc registers a template function available to every later render.
// fn must return one value, or a value and an error.
func (b *Builder) SetFunc(name string, fn any) error {
	if err := b.funcs.Set(name, fn); err != nil {
		return fmt.Errorf("set function: %w", err)
	}
	b.logger.Debug("template function registered", "name", name)
	return nil
}

// SetFilter registers a function meant for pipelines, where the piped
// value arrives as the last argument: {{ .name | str_rev }}. Filters and
// functions share one namespace.
func (b *Builder) SetFilter(name string, fn any) error {
	if err := b.funcs.Set(name, fn); err != nil {
		return fmt.Errorf("set filter: %w", err)
	}
	b.logger.Debug("template filter registered", "name", name)
	return nil
}

// Funcs lists the names of registered template functions.
func (b *Builder) Funcs() []string {
	return b.funcs.Names()
}

// Formats lists the registered parser formats.
func (b *Builder) Formats() []string {
	return b.parsers.Formats()
}

// BuildFromFiles renders, parses and merges the sources at paths, following
// directives. Each path may hold several colon-separated paths.
func (b *Builder) BuildFromFiles(ctx context.Context, paths []string, opts ...BuildOption) (map[string]any, error) {
	bo := b.buildOptions(opts)

	locators := SplitPaths(paths...)
	key := b.directiveKey
	if bo.directiveKey != nil {
		key = *bo.directiveKey
	}

	r := &resolver{
		renderer:   b.renderer,
		parsers:    b.parsers,
		directives: directive.NewProcessor(key),
		extra:      bo.context,
		logger:     logging.FromContext(ctx, b.logger),
		pending:    locators,
		loaded:     make(map[string]struct{}),
	}

	accumulated, err := r.run(ctx, merge.CloneMap(bo.defaults))
	if err != nil {
		return nil, err
	}

	result := merge.Merge(accumulated, bo.overrides)
	r.logger.Info("configuration built", "sources", len(r.order), "keys", len(result))
	return result, nil
}

// BuildFromString renders and parses a single document. Includes resolve
// against the work directory. Directive blocks in the input are left as
// they are.
func (b *Builder) BuildFromString(ctx context.Context, input string, opts ...BuildOption) (map[string]any, error) {
	bo := b.buildOptions(opts)
	logger := logging.FromContext(ctx, b.logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workDir := bo.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, newError(KindRender, "", fmt.Errorf("resolve work dir: %w", err))
		}
		workDir = wd
	}

	p, err := b.parsers.ByFormat(bo.format)
	if err != nil {
		return nil, newError(KindParse, "", err)
	}

	seed := merge.CloneMap(bo.defaults)
	text, err := b.renderer.Render(ctx, "<string>", input, merge.Merge(seed, bo.context), workDir)
	if err != nil {
		return nil, newError(KindRender, "", err)
	}

	fragment, err := parse.Document(p, []byte(text))
	if err != nil {
		return nil, parseFailure("", err)
	}

	result := merge.All(seed, fragment, bo.overrides)
	logger.Info("configuration built from string", "keys", len(result))
	return result, nil
}

func (b *Builder) buildOptions(opts []BuildOption) buildOptions {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	return bo
}

// SplitPaths flattens colon-separated path lists, dropping empty entries.
func SplitPaths(paths ...string) []string {
	var out []string
	for _, p := range paths {
		for _, part := range strings.Split(p, ":") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
