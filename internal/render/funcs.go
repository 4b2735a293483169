package render

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"
	"text/template"

	"github.com/standardbeagle/configtpl/internal/builtins"
)

var (
	// ErrInvalidName is returned for names text/template cannot call.
	ErrInvalidName = errors.New("invalid function name")

	// ErrInvalidFunc is returned for values text/template cannot call.
	ErrInvalidFunc = errors.New("invalid function")

	// ErrReservedName is returned when registering a name the renderer
	// binds per source.
	ErrReservedName = errors.New("reserved function name")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Reserved names are bound per render and cannot be replaced.
var reserved = map[string]bool{
	"include":     true,
	blankNullFunc: true,
}

// Funcs is a function registry owned by one renderer.
type Funcs struct {
	mu    sync.RWMutex
	funcs template.FuncMap
}

// NewFuncs returns a registry. With builtins set it starts with the
// source-independent built-in functions.
func NewFuncs(withBuiltins bool) *Funcs {
	f := &Funcs{funcs: template.FuncMap{}}
	if withBuiltins {
		for name, fn := range builtins.Funcs() {
			f.funcs[name] = fn
		}
	}
	return f
}

// Set installs fn under name, replacing any previous function. fn must be
// a function returning one value, or a value and an error.
func (f *Funcs) Set(name string, fn any) error {
	if err := validate(name, fn); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.funcs[name] = fn
	return nil
}

// Has reports whether name is registered.
func (f *Funcs) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.funcs[name]
	return ok
}

// Names returns the registered names in sorted order.
func (f *Funcs) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.funcs))
	for name := range f.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the registry as a FuncMap.
func (f *Funcs) Map() template.FuncMap {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(template.FuncMap, len(f.funcs))
	for name, fn := range f.funcs {
		out[name] = fn
	}
	return out
}

// Clone returns an independent copy of the registry.
func (f *Funcs) Clone() *Funcs {
	return &Funcs{funcs: f.Map()}
}

func validate(name string, fn any) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if reserved[name] {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("%w: %q is %T, not a function", ErrInvalidFunc, name, fn)
	}

	t := v.Type()
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return fmt.Errorf("%w: %q must return one value, or a value and an error", ErrInvalidFunc, name)
	}
	return nil
}
