package configtpl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/standardbeagle/configtpl/internal/directive"
	"github.com/standardbeagle/configtpl/internal/logging"
	"github.com/standardbeagle/configtpl/internal/merge"
	"github.com/standardbeagle/configtpl/internal/parse"
	"github.com/standardbeagle/configtpl/internal/render"
)

// resolver holds the state of one BuildFromFiles call.
type resolver struct {
	renderer   *render.Renderer
	parsers    *parse.Registry
	directives *directive.Processor
	extra      map[string]any
	logger     logging.Logger

	pending []string
	loaded  map[string]struct{}
	order   []string
}

// run processes pending sources in FIFO order and returns the merge of
// seed and every fragment.
func (r *resolver) run(ctx context.Context, seed map[string]any) (map[string]any, error) {
	accumulated := seed

	for len(r.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := r.pending[0]
		r.pending = r.pending[1:]

		locator, err := Canonicalize(next)
		if err != nil {
			return nil, newError(KindRender, next, err)
		}
		if _, seen := r.loaded[locator]; seen {
			return nil, newError(KindCycle, locator,
				fmt.Errorf("source %s loaded multiple times", locator))
		}

		fragment, queued, err := r.load(ctx, locator, merge.Merge(accumulated, r.extra))
		if err != nil {
			return nil, err
		}

		r.pending = append(r.pending, queued...)
		r.loaded[locator] = struct{}{}
		r.order = append(r.order, locator)
		accumulated = merge.Merge(accumulated, fragment)

		r.logger.Debug("source merged",
			"source", locator,
			"queued", len(queued),
			"pending", len(r.pending))
	}

	return accumulated, nil
}

// load renders, parses and strips directives from one source.
func (r *resolver) load(ctx context.Context, locator string, data map[string]any) (map[string]any, []string, error) {
	text, err := r.renderer.RenderFile(ctx, locator, data)
	if err != nil {
		return nil, nil, newError(KindRender, locator, err)
	}

	fragment, err := parse.Document(r.parsers.ForPath(locator), []byte(text))
	if err != nil {
		return nil, nil, parseFailure(locator, err)
	}

	cleaned, queued, err := r.directives.Extract(fragment, filepath.Dir(locator))
	if err != nil {
		if errors.Is(err, directive.ErrInvalidInstruction) {
			return nil, nil, newError(KindShape, locator, err)
		}
		return nil, nil, newError(KindDirective, locator, err)
	}

	return cleaned, queued, nil
}

func parseFailure(locator string, err error) error {
	var shapeErr *parse.ShapeError
	if errors.As(err, &shapeErr) {
		return newError(KindShape, locator, err)
	}
	return newError(KindParse, locator, err)
}

// Canonicalize returns the absolute, symlink-free form of path. Two paths
// name the same source exactly when their canonical forms are equal.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}
