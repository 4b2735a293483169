package merge

import (
	"fmt"
	"strings"
)

// PathSeparator separates keys in a dotted path such as "server.port".
const PathSeparator = "."

// Lookup returns the value at a dotted path inside m.
func Lookup(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = m
	for _, key := range strings.Split(path, PathSeparator) {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetPath returns a copy of m with value stored at a dotted path.
// Intermediate mappings are created as needed. A non-mapping value sitting
// on the path is an error rather than being silently replaced.
func SetPath(m map[string]any, path string, value any) (map[string]any, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}

	keys := strings.Split(path, PathSeparator)
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
	}

	patch := map[string]any{keys[len(keys)-1]: value}
	for i := len(keys) - 2; i >= 0; i-- {
		prefix := strings.Join(keys[:i+1], PathSeparator)
		if existing, ok := Lookup(m, prefix); ok {
			if _, isMap := existing.(map[string]any); !isMap {
				return nil, fmt.Errorf("invalid path %q: %q is not a mapping", path, prefix)
			}
		}
		patch = map[string]any{keys[i]: patch}
	}

	return Merge(m, patch), nil
}
