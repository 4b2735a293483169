package builtins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
)

// Bound returns the template functions tied to one render: commands run
// under ctx and relative paths resolve against dir.
func Bound(ctx context.Context, dir string, executor *Executor) template.FuncMap {
	if executor == nil {
		executor = NewExecutor()
	}
	f := &fileFuncs{dir: dir}

	return template.FuncMap{
		"cmd": func(command string) (string, error) {
			return executor.Run(ctx, dir, command)
		},
		"readFile":   f.readFile,
		"fileExists": f.fileExists,
		"glob":       f.glob,
	}
}

type fileFuncs struct {
	dir string
}

func (f *fileFuncs) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.dir, path)
}

func (f *fileFuncs) readFile(path string) (string, error) {
	data, err := os.ReadFile(f.resolve(path))
	if err != nil {
		return "", fmt.Errorf("readFile: %w", err)
	}
	return string(data), nil
}

func (f *fileFuncs) fileExists(path string) bool {
	_, err := os.Stat(f.resolve(path))
	return err == nil
}

// glob lists files matching a doublestar pattern relative to the render
// directory, sorted. Matches are returned relative to that directory.
func (f *fileFuncs) glob(pattern string) ([]any, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("glob: invalid pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(f.dir), filepath.ToSlash(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	sort.Strings(matches)

	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = filepath.FromSlash(m)
	}
	return out, nil
}
