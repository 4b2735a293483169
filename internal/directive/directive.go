// Package directive extracts the reserved control block from a freshly
// parsed configuration fragment and turns it into work for the source
// resolution loop.
//
// A fragment may carry a single reserved top-level key (by default
// "@configtpl") whose value is a mapping of instructions:
//
//	"@configtpl":
//	  load_next_defer:
//	    - common.cfg
//	    - overrides/local.cfg
//
// The instruction vocabulary is closed. Each supported instruction is a
// concrete type implementing Instruction; unknown instruction names are
// rejected.
package directive

import (
	"errors"
	"fmt"
	"path/filepath"
)

// DefaultKey is the reserved top-level key holding the directive block.
const DefaultKey = "@configtpl"

// Instruction names.
const (
	LoadNextDeferName = "load_next_defer"
)

var (
	// ErrInvalidBlock is returned when the reserved key holds something
	// other than a mapping.
	ErrInvalidBlock = errors.New("directive block must be a mapping")

	// ErrInvalidInstruction is returned when an instruction's payload has
	// the wrong shape.
	ErrInvalidInstruction = errors.New("invalid directive instruction")

	// ErrUnknownInstruction is returned for instruction names outside the
	// supported vocabulary.
	ErrUnknownInstruction = errors.New("unknown directive instruction")
)

// Instruction is one entry of a directive block.
type Instruction interface {
	// Name returns the instruction's key inside the directive block.
	Name() string
}

// LoadNextDefer enqueues further sources after the current one. Paths are
// relative to the directory of the declaring source.
type LoadNextDefer struct {
	Paths []string
}

// Name implements Instruction.
func (LoadNextDefer) Name() string { return LoadNextDeferName }

// Parse decodes a directive block into its instructions. Instructions are
// returned in a fixed order so processing does not depend on map iteration.
func Parse(block any) ([]Instruction, error) {
	m, ok := block.(map[string]any)
	if !ok {
		if block != nil {
			return nil, fmt.Errorf("%w, got %T", ErrInvalidBlock, block)
		}
		return nil, fmt.Errorf("%w, got null", ErrInvalidBlock)
	}

	for name := range m {
		if name != LoadNextDeferName {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, name)
		}
	}

	var instructions []Instruction
	if raw, ok := m[LoadNextDeferName]; ok {
		paths, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInstruction, LoadNextDeferName, err)
		}
		instructions = append(instructions, LoadNextDefer{Paths: paths})
	}

	return instructions, nil
}

func stringList(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a sequence, got %T", raw)
	}

	paths := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a string, got %T", i, item)
		}
		if s == "" {
			return nil, fmt.Errorf("item %d: empty path", i)
		}
		paths = append(paths, s)
	}
	return paths, nil
}

// Processor strips the directive block from fragments and resolves the
// locators it requests.
type Processor struct {
	// Key is the reserved top-level key. An empty Key disables directive
	// processing entirely.
	Key string
}

// NewProcessor creates a Processor for the given reserved key.
func NewProcessor(key string) *Processor {
	return &Processor{Key: key}
}

// Enabled reports whether the processor inspects fragments at all.
func (p *Processor) Enabled() bool {
	return p != nil && p.Key != ""
}

// Extract removes the directive block from fragment and returns the
// locators to enqueue, in declaration order, resolved against sourceDir.
//
// The input fragment is left untouched. When the key is absent (or the
// processor is disabled) the same fragment is returned with no locators.
// Deduplication and cycle detection are the caller's concern.
func (p *Processor) Extract(fragment map[string]any, sourceDir string) (map[string]any, []string, error) {
	if !p.Enabled() {
		return fragment, nil, nil
	}

	block, ok := fragment[p.Key]
	if !ok {
		return fragment, nil, nil
	}

	cleaned := make(map[string]any, len(fragment)-1)
	for k, v := range fragment {
		if k != p.Key {
			cleaned[k] = v
		}
	}

	instructions, err := Parse(block)
	if err != nil {
		return nil, nil, err
	}

	var locators []string
	for _, ins := range instructions {
		switch in := ins.(type) {
		case LoadNextDefer:
			for _, rel := range in.Paths {
				locators = append(locators, Resolve(sourceDir, rel))
			}
		default:
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, ins.Name())
		}
	}

	return cleaned, locators, nil
}

// Resolve joins a directive path onto the declaring source's directory.
// Absolute paths are kept as given.
func Resolve(sourceDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(sourceDir, path)
}
