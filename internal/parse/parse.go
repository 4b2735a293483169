// Package parse turns rendered configuration text into configuration values.
//
// Parsers are selected by format name or by file extension. Every parser
// normalizes its native output to the value set used by the merge engine:
// map[string]any, []any and scalars.
package parse

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format names.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatKDL  = "kdl"
	FormatHCL  = "hcl"
)

// ErrSyntax wraps every failure to parse rendered text.
var ErrSyntax = errors.New("syntax error")

// ErrUnknownFormat is returned when a format name has no registered parser.
var ErrUnknownFormat = errors.New("unknown format")

// Parser parses a rendered document.
type Parser interface {
	Parse(data []byte) (any, error)
}

// ParserFunc adapts an ordinary function to Parser.
type ParserFunc func(data []byte) (any, error)

// Parse implements Parser.
func (f ParserFunc) Parse(data []byte) (any, error) { return f(data) }

// Registry maps format names and file extensions to parsers.
type Registry struct {
	mu         sync.RWMutex
	formats    map[string]Parser
	extensions map[string]string
	fallback   string
}

// NewRegistry returns a registry with the built-in parsers installed.
// Unknown extensions fall back to YAML.
func NewRegistry() *Registry {
	r := &Registry{
		formats:    make(map[string]Parser),
		extensions: make(map[string]string),
		fallback:   FormatYAML,
	}

	r.Register(FormatYAML, YAML{}, ".yaml", ".yml", ".cfg")
	r.Register(FormatJSON, JSON{}, ".json", ".jsonc")
	r.Register(FormatKDL, KDL{}, ".kdl")
	r.Register(FormatHCL, HCL{}, ".hcl")

	return r
}

// Register installs p under a format name and binds extensions to it.
// Extensions are matched case-insensitively and may be given with or
// without the leading dot.
func (r *Registry) Register(format string, p Parser, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	format = strings.ToLower(format)
	r.formats[format] = p
	for _, ext := range extensions {
		r.extensions[normalizeExt(ext)] = format
	}
}

// ByFormat returns the parser registered under a format name.
func (r *Registry) ByFormat(format string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if format == "" {
		format = r.fallback
	}
	p, ok := r.formats[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return p, nil
}

// ForPath returns the parser for a file, chosen by its extension.
func (r *Registry) ForPath(path string) Parser {
	r.mu.RLock()
	format, ok := r.extensions[normalizeExt(filepath.Ext(path))]
	if !ok {
		format = r.fallback
	}
	p := r.formats[format]
	r.mu.RUnlock()
	return p
}

// FormatForPath returns the format name selected for a file.
func (r *Registry) FormatForPath(path string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if format, ok := r.extensions[normalizeExt(filepath.Ext(path))]; ok {
		return format
	}
	return r.fallback
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document parses data with p and requires a mapping at the top level.
// An empty document is an empty mapping.
func Document(p Parser, data []byte) (map[string]any, error) {
	v, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	switch doc := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return doc, nil
	default:
		return nil, &ShapeError{Got: doc}
	}
}

// ShapeError reports a document whose top level is not a mapping.
type ShapeError struct {
	Got any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("top level must be a mapping, got %s", Kind(e.Got))
}

// Kind names the variant of a configuration value.
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	default:
		return "scalar"
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func syntaxError(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSyntax, format, err)
}
