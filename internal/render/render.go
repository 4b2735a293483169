// Package render expands configuration sources as Go text templates.
//
// Templates run with missingkey=error: referencing a key absent from the
// render context fails the render instead of producing "<no value>".
// A key that is present but null prints as empty text, so `port: {{ .port }}`
// stays null after parsing.
// Each render also binds functions tied to the source being rendered,
// such as include and readFile, which resolve paths against the source's
// directory.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/standardbeagle/configtpl/internal/builtins"
)

// MaxIncludeDepth bounds nested include calls.
const MaxIncludeDepth = 32

// Renderer renders templates with a function registry.
type Renderer struct {
	funcs    *Funcs
	executor *builtins.Executor
	system   bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithExecutor sets the executor behind the cmd function.
func WithExecutor(e *builtins.Executor) Option {
	return func(r *Renderer) {
		r.executor = e
	}
}

// WithoutSystemFuncs leaves out the functions that touch the file system
// or run commands.
func WithoutSystemFuncs() Option {
	return func(r *Renderer) {
		r.system = false
	}
}

// New creates a Renderer over funcs. A nil funcs starts with the built-in
// functions.
func New(funcs *Funcs, opts ...Option) *Renderer {
	if funcs == nil {
		funcs = NewFuncs(true)
	}
	r := &Renderer{
		funcs:    funcs,
		executor: builtins.NewExecutor(),
		system:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Funcs returns the renderer's registry.
func (r *Renderer) Funcs() *Funcs {
	return r.funcs
}

// RenderFile renders the file at path with data. Includes resolve against
// the file's directory.
func (r *Renderer) RenderFile(ctx context.Context, path string, data any) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return r.Render(ctx, path, string(content), data, filepath.Dir(path))
}

// Render renders text with data. name identifies the template in error
// messages; baseDir anchors relative paths used by include, readFile and
// cmd.
func (r *Renderer) Render(ctx context.Context, name, text string, data any, baseDir string) (string, error) {
	return r.render(ctx, name, text, data, baseDir, 0)
}

func (r *Renderer) render(ctx context.Context, name, text string, data any, baseDir string, depth int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	funcs := r.funcs.Map()
	if r.system {
		for k, v := range builtins.Bound(ctx, baseDir, r.executor) {
			if _, overridden := funcs[k]; !overridden {
				funcs[k] = v
			}
		}
	}
	funcs["include"] = func(path string, data any) (string, error) {
		return r.include(ctx, baseDir, path, data, depth+1)
	}
	funcs[blankNullFunc] = blankNull

	tmpl, err := template.New(filepath.Base(name)).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	for _, t := range tmpl.Templates() {
		if t.Tree != nil {
			blankNulls(t.Tree.Root)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

func (r *Renderer) include(ctx context.Context, baseDir, path string, data any, depth int) (string, error) {
	if depth > MaxIncludeDepth {
		return "", fmt.Errorf("include %s: nested too deeply (max %d)", path, MaxIncludeDepth)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("include: %w", err)
	}

	out, err := r.render(ctx, path, string(content), data, filepath.Dir(path), depth)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

const blankNullFunc = "blankNull"

func blankNull(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// blankNulls ends every printing action under node with blankNull.
// text/template prints "<no value>" for nil even with missingkey=error.
func blankNulls(node parse.Node) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			blankNulls(child)
		}
	case *parse.ActionNode:
		if len(n.Pipe.Decl) > 0 {
			return
		}
		ident := parse.NewIdentifier(blankNullFunc).SetPos(n.Pos)
		n.Pipe.Cmds = append(n.Pipe.Cmds, &parse.CommandNode{
			NodeType: parse.NodeCommand,
			Pos:      n.Pos,
			Args:     []parse.Node{ident},
		})
	case *parse.IfNode:
		blankNulls(n.List)
		blankNulls(n.ElseList)
	case *parse.RangeNode:
		blankNulls(n.List)
		blankNulls(n.ElseList)
	case *parse.WithNode:
		blankNulls(n.List)
		blankNulls(n.ElseList)
	}
}
