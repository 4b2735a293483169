package configtpl

import (
	"log/slog"
	"time"

	"github.com/standardbeagle/configtpl/internal/directive"
	"github.com/standardbeagle/configtpl/internal/logging"
	"github.com/standardbeagle/configtpl/internal/parse"
)

// DefaultDirectiveKey is the reserved top-level key holding directives.
const DefaultDirectiveKey = directive.DefaultKey

// Parser parses rendered text into a configuration value.
type Parser = parse.Parser

// ParserFunc adapts a function to Parser.
type ParserFunc = parse.ParserFunc

// Option configures a Builder.
type Option func(*options)

type options struct {
	logger       logging.Logger
	directiveKey string
	builtins     bool
	system       bool
	cmdTimeout   time.Duration
	parsers      []parserRegistration
}

type parserRegistration struct {
	format     string
	parser     Parser
	extensions []string
}

func defaultOptions() options {
	return options{
		directiveKey: DefaultDirectiveKey,
		builtins:     true,
		system:       true,
	}
}

// WithLogger sets the builder's logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSlogLogger sets the builder's logger from a *slog.Logger.
func WithSlogLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = logging.FromSlog(l)
	}
}

// WithDefaultDirectiveKey changes the reserved directive key for every
// build. An empty key disables directive processing.
func WithDefaultDirectiveKey(key string) Option {
	return func(o *options) {
		o.directiveKey = key
	}
}

// WithParser registers a parser under a format name and binds file
// extensions to it, replacing any built-in binding.
func WithParser(format string, p Parser, extensions ...string) Option {
	return func(o *options) {
		o.parsers = append(o.parsers, parserRegistration{format: format, parser: p, extensions: extensions})
	}
}

// WithoutBuiltins starts the builder with an empty function registry.
// Functions bound per source, such as include, remain available.
func WithoutBuiltins() Option {
	return func(o *options) {
		o.builtins = false
	}
}

// WithoutSystemFuncs removes the functions that read files or run
// commands (cmd, readFile, fileExists, glob).
func WithoutSystemFuncs() Option {
	return func(o *options) {
		o.system = false
	}
}

// WithCommandTimeout bounds each cmd call. A negative value disables the
// limit.
func WithCommandTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cmdTimeout = d
	}
}

// BuildOption configures a single build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	defaults     map[string]any
	overrides    map[string]any
	context      map[string]any
	directiveKey *string
	workDir      string
	format       string
}

// WithDefaults seeds the accumulated result. Defaults are visible to every
// render and appear in the output unless replaced.
func WithDefaults(defaults map[string]any) BuildOption {
	return func(o *buildOptions) {
		o.defaults = defaults
	}
}

// WithOverrides merges values onto the result after every source has been
// processed. Overrides are never visible to templates.
func WithOverrides(overrides map[string]any) BuildOption {
	return func(o *buildOptions) {
		o.overrides = overrides
	}
}

// WithRenderContext adds values visible to every render that never appear
// in the output.
func WithRenderContext(extra map[string]any) BuildOption {
	return func(o *buildOptions) {
		o.context = extra
	}
}

// WithDirectiveKey overrides the reserved directive key for one build.
func WithDirectiveKey(key string) BuildOption {
	return func(o *buildOptions) {
		o.directiveKey = &key
	}
}

// WithoutDirectives disables directive processing for one build.
func WithoutDirectives() BuildOption {
	return WithDirectiveKey("")
}

// WithWorkDir sets the directory that anchors include and readFile when
// building from a string. Defaults to the process working directory.
func WithWorkDir(dir string) BuildOption {
	return func(o *buildOptions) {
		o.workDir = dir
	}
}

// WithFormat selects the parser for string input by format name. Defaults
// to YAML.
func WithFormat(format string) BuildOption {
	return func(o *buildOptions) {
		o.format = format
	}
}
