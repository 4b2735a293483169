// Package builtins provides the functions available to configuration
// templates.
package builtins

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/standardbeagle/configtpl/internal/merge"
	"gopkg.in/yaml.v3"
)

// Funcs returns the template functions that do not depend on the source
// being rendered. The returned map is a fresh copy on every call.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// Environment
		"env":       tmplEnv,
		"expandEnv": os.ExpandEnv,

		// String functions
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"title":      tmplTitle,
		"trim":       strings.TrimSpace,
		"trimPrefix": tmplTrimPrefix,
		"trimSuffix": tmplTrimSuffix,
		"replace":    tmplReplace,
		"split":      tmplSplit,
		"join":       tmplJoin,
		"contains":   tmplContains,
		"hasPrefix":  tmplHasPrefix,
		"hasSuffix":  tmplHasSuffix,
		"repeat":     tmplRepeat,
		"reverse":    tmplReverse,

		// Formatting
		"indent":  tmplIndent,
		"nindent": tmplNindent,
		"quote":   tmplQuote,
		"squote":  tmplSquote,

		// Type conversion
		"toString": tmplToString,
		"toInt":    tmplToInt,
		"toFloat":  tmplToFloat,
		"toBool":   tmplToBool,

		// List operations
		"list":  tmplList,
		"first": tmplFirst,
		"last":  tmplLast,
		"rest":  tmplRest,
		"seq":   tmplSeq,

		// Map operations
		"dict":   tmplDict,
		"keys":   tmplKeys,
		"values": tmplValues,
		"hasKey": tmplHasKey,
		"get":    tmplGet,
		"merge":  tmplMerge,

		// Conditionals
		"default":  tmplDefault,
		"empty":    tmplEmpty,
		"coalesce": tmplCoalesce,
		"ternary":  tmplTernary,

		// Math
		"add": tmplAdd,
		"sub": tmplSub,
		"mul": tmplMul,
		"div": tmplDiv,
		"mod": tmplMod,

		// JSON
		"toJson":       tmplToJSON,
		"toPrettyJson": tmplToPrettyJSON,
		"fromJson":     tmplFromJSON,

		// YAML
		"toYaml":   tmplToYAML,
		"fromYaml": tmplFromYAML,

		// Hashing and encoding
		"sha256":       tmplSHA256,
		"sha512":       tmplSHA512,
		"blake3":       tmplBLAKE3,
		"hash":         tmplHash,
		"b64enc":       tmplBase64Encode,
		"b64dec":       tmplBase64Decode,
		"hexenc":       tmplHexEncode,
		"hexdec":       tmplHexDecode,
		"randAlphaNum": tmplRandAlphaNum,
	}
}

func tmplEnv(name string, def ...string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// String functions take the subject last so they read naturally in
// pipelines: {{ .name | replace "-" "_" }}.

func tmplTitle(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func tmplTrimPrefix(prefix, s string) string { return strings.TrimPrefix(s, prefix) }
func tmplTrimSuffix(suffix, s string) string { return strings.TrimSuffix(s, suffix) }
func tmplReplace(old, repl, s string) string { return strings.ReplaceAll(s, old, repl) }
func tmplSplit(sep, s string) []any {
	parts := strings.Split(s, sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}
func tmplContains(sub, s string) bool     { return strings.Contains(s, sub) }
func tmplHasPrefix(prefix, s string) bool { return strings.HasPrefix(s, prefix) }
func tmplHasSuffix(suffix, s string) bool { return strings.HasSuffix(s, suffix) }
func tmplRepeat(n int, s string) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(s, n)
}

func tmplJoin(sep string, list any) (string, error) {
	switch v := list.(type) {
	case []string:
		return strings.Join(v, sep), nil
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = tmplToString(item)
		}
		return strings.Join(parts, sep), nil
	default:
		return "", fmt.Errorf("join: expected a list, got %T", list)
	}
}

func tmplReverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// Formatting

func tmplIndent(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.ReplaceAll(v, "\n", "\n"+pad)
}

func tmplNindent(spaces int, v string) string {
	return "\n" + tmplIndent(spaces, v)
}

func tmplQuote(v any) string {
	return strconv.Quote(tmplToString(v))
}

func tmplSquote(v any) string {
	return "'" + strings.ReplaceAll(tmplToString(v), "'", "''") + "'"
}

// Type conversion

func tmplToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func tmplToInt(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("toInt: %w", err)
		}
		return i, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("toInt: unsupported type %T", v)
	}
}

func tmplToFloat(v any) (float64, error) {
	switch val := v.(type) {
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("toFloat: %w", err)
		}
		return f, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("toFloat: unsupported type %T", v)
	}
}

func tmplToBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return val != ""
		}
		return b
	default:
		return v != nil
	}
}

// List operations

func tmplList(items ...any) []any {
	return append([]any{}, items...)
}

func tmplFirst(list any) any {
	switch v := list.(type) {
	case []any:
		if len(v) > 0 {
			return v[0]
		}
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return nil
}

func tmplLast(list any) any {
	switch v := list.(type) {
	case []any:
		if len(v) > 0 {
			return v[len(v)-1]
		}
	case []string:
		if len(v) > 0 {
			return v[len(v)-1]
		}
	}
	return nil
}

func tmplRest(list any) any {
	switch v := list.(type) {
	case []any:
		if len(v) > 1 {
			return v[1:]
		}
		return []any{}
	case []string:
		if len(v) > 1 {
			return v[1:]
		}
		return []string{}
	}
	return nil
}

// tmplSeq returns the integers from start to end inclusive.
func tmplSeq(start, end any) ([]any, error) {
	from, err := tmplToInt(start)
	if err != nil {
		return nil, err
	}
	to, err := tmplToInt(end)
	if err != nil {
		return nil, err
	}
	if to < from {
		return []any{}, nil
	}
	out := make([]any, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out, nil
}

// Map operations

func tmplDict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: expected key/value pairs, got %d arguments", len(pairs))
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %d must be a string, got %T", i/2, pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

func tmplKeys(m any) []any {
	mapVal, ok := m.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(mapVal))
	for k := range mapVal {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

func tmplValues(m any) []any {
	mapVal, ok := m.(map[string]any)
	if !ok {
		return nil
	}
	values := make([]any, 0, len(mapVal))
	for _, k := range tmplKeys(mapVal) {
		values = append(values, mapVal[k.(string)])
	}
	return values
}

func tmplHasKey(m any, key string) bool {
	if mapVal, ok := m.(map[string]any); ok {
		_, exists := mapVal[key]
		return exists
	}
	return false
}

// tmplGet reads a dotted path: {{ get . "server.port" 8080 }}.
func tmplGet(m any, path string, defaultVal ...any) any {
	if mapVal, ok := m.(map[string]any); ok {
		if val, exists := merge.Lookup(mapVal, path); exists {
			return val
		}
	}
	if len(defaultVal) > 0 {
		return defaultVal[0]
	}
	return nil
}

func tmplMerge(maps ...map[string]any) map[string]any {
	if len(maps) == 0 {
		return map[string]any{}
	}
	return merge.All(maps[0], maps[1:]...)
}

// Conditionals

func tmplDefault(defaultVal, val any) any {
	if tmplEmpty(val) {
		return defaultVal
	}
	return val
}

func tmplEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	default:
		return false
	}
}

func tmplCoalesce(vals ...any) any {
	for _, v := range vals {
		if !tmplEmpty(v) {
			return v
		}
	}
	return nil
}

func tmplTernary(yes, no any, cond bool) any {
	if cond {
		return yes
	}
	return no
}

// Math

func tmplAdd(a, b any) (any, error) {
	return arith(a, b, addInt, func(x, y float64) float64 { return x + y })
}

func tmplSub(a, b any) (any, error) {
	return arith(a, b, subInt, func(x, y float64) float64 { return x - y })
}

func tmplMul(a, b any) (any, error) {
	return arith(a, b, mulInt, func(x, y float64) float64 { return x * y })
}

func tmplDiv(a, b any) (any, error) {
	bf, err := tmplToFloat(b)
	if err != nil {
		return nil, err
	}
	if bf == 0 {
		return nil, fmt.Errorf("div: division by zero")
	}
	return arith(a, b, nil, func(x, y float64) float64 { return x / y })
}

func tmplMod(a, b any) (int64, error) {
	ai, err := tmplToInt(a)
	if err != nil {
		return 0, err
	}
	bi, err := tmplToInt(b)
	if err != nil {
		return 0, err
	}
	if bi == 0 {
		return 0, fmt.Errorf("mod: division by zero")
	}
	return ai % bi, nil
}

// arith applies intOp when both operands are integers and the result
// fits in an int64, and op otherwise.
func arith(a, b any, intOp func(x, y int64) (int64, bool), op func(x, y float64) float64) (any, error) {
	if intOp != nil {
		ai, aok := asInt64(a)
		bi, bok := asInt64(b)
		if aok && bok {
			if r, ok := intOp(ai, bi); ok {
				return r, nil
			}
		}
	}

	af, err := tmplToFloat(a)
	if err != nil {
		return nil, err
	}
	bf, err := tmplToFloat(b)
	if err != nil {
		return nil, err
	}
	result := op(af, bf)
	if result == float64(int64(result)) {
		return int64(result), nil
	}
	return result, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

func addInt(x, y int64) (int64, bool) {
	r := x + y
	return r, (y >= 0) == (r >= x)
}

func subInt(x, y int64) (int64, bool) {
	r := x - y
	return r, (y >= 0) == (r <= x)
}

func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	r := x * y
	return r, r/y == x
}

// JSON

func tmplToJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("toJson: %w", err)
	}
	return string(data), nil
}

func tmplToPrettyJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("toPrettyJson: %w", err)
	}
	return string(data), nil
}

func tmplFromJSON(s string) (any, error) {
	var result any
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("fromJson: %w", err)
	}
	return result, nil
}

// YAML

func tmplToYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("toYaml: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func tmplFromYAML(s string) (any, error) {
	var result any
	if err := yaml.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("fromYaml: %w", err)
	}
	return result, nil
}
