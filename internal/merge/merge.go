// Package merge implements the deep merge used to combine configuration
// fragments.
//
// A configuration value is one of three variants: a mapping
// (map[string]any), a sequence ([]any) or a scalar (string, number, bool or
// nil). Merging recurses only when both sides of a key are mappings; every
// other combination replaces the base value with the patch value.
package merge

// Merge combines base and patch into a new mapping.
// Patch takes precedence: for a key present in both, two mappings are merged
// recursively and anything else is replaced by the patch value. Sequences are
// never concatenated and a nil patch value replaces the base value.
// Neither input is modified and the result shares no containers with them.
func Merge(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))

	for k, v := range base {
		merged[k] = Clone(v)
	}

	for k, pv := range patch {
		bm, baseIsMap := merged[k].(map[string]any)
		pm, patchIsMap := pv.(map[string]any)
		if baseIsMap && patchIsMap {
			merged[k] = Merge(bm, pm)
			continue
		}
		merged[k] = Clone(pv)
	}

	return merged
}

// All folds patches onto seed from left to right.
// Later patches dominate earlier ones at every non-mapping leaf.
func All(seed map[string]any, patches ...map[string]any) map[string]any {
	result := CloneMap(seed)
	for _, p := range patches {
		result = Merge(result, p)
	}
	return result
}

// Clone returns a deep copy of a configuration value.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	default:
		return val
	}
}

// CloneMap returns a deep copy of m. A nil map yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}
