package builtins

import (
	"sort"
	"strings"
)

// Function describes a template function.
type Function struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Signature   string   `json:"signature"`
	Description string   `json:"description"`
	Example     string   `json:"example,omitempty"`
	Returns     string   `json:"returns,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Reference lists every built-in template function.
var Reference = []Function{
	// Environment and system
	{Name: "env", Category: "system", Signature: "env NAME [default]", Description: "Returns an environment variable or the default when unset", Example: `{{ env "HOME" }}`, Returns: "string"},
	{Name: "expandEnv", Category: "system", Signature: "expandEnv s", Description: "Expands $VAR and ${VAR} references in s", Example: `{{ expandEnv "$HOME/app" }}`, Returns: "string"},
	{Name: "cmd", Category: "system", Signature: "cmd command", Description: "Runs a shell command in the source directory and returns trimmed stdout; a non-zero exit fails the render", Example: `{{ cmd "git rev-parse --short HEAD" }}`, Returns: "string", Tags: []string{"exec"}},

	// Files
	{Name: "include", Category: "file", Signature: "include path data", Description: "Renders another template relative to the current source", Example: `{{ include "partials/db.tpl" . }}`, Returns: "string", Tags: []string{"template"}},
	{Name: "readFile", Category: "file", Signature: "readFile path", Description: "Returns a file's contents verbatim, relative to the current source", Example: `{{ readFile "certs/ca.pem" | indent 4 }}`, Returns: "string"},
	{Name: "fileExists", Category: "file", Signature: "fileExists path", Description: "Reports whether a path exists relative to the current source", Example: `{{ if fileExists "local.cfg" }}...{{ end }}`, Returns: "bool"},
	{Name: "glob", Category: "file", Signature: "glob pattern", Description: "Lists files matching a ** pattern relative to the current source, sorted", Example: `{{ range glob "conf.d/*.yaml" }}{{ . }}{{ end }}`, Returns: "list"},

	// Strings
	{Name: "upper", Category: "string", Signature: "upper s", Description: "Converts string to uppercase", Example: `{{ "hello" | upper }} // HELLO`, Returns: "string"},
	{Name: "lower", Category: "string", Signature: "lower s", Description: "Converts string to lowercase", Example: `{{ "HELLO" | lower }} // hello`, Returns: "string"},
	{Name: "title", Category: "string", Signature: "title s", Description: "Capitalizes the first letter of every word", Example: `{{ "hello world" | title }} // Hello World`, Returns: "string"},
	{Name: "trim", Category: "string", Signature: "trim s", Description: "Removes leading/trailing whitespace", Example: `{{ "  hi  " | trim }} // hi`, Returns: "string"},
	{Name: "trimPrefix", Category: "string", Signature: "trimPrefix prefix s", Description: "Removes a leading prefix", Example: `{{ "v1.2" | trimPrefix "v" }} // 1.2`, Returns: "string"},
	{Name: "trimSuffix", Category: "string", Signature: "trimSuffix suffix s", Description: "Removes a trailing suffix", Example: `{{ "app.cfg" | trimSuffix ".cfg" }} // app`, Returns: "string"},
	{Name: "replace", Category: "string", Signature: "replace old new s", Description: "Replaces all occurrences", Example: `{{ "a-b" | replace "-" "_" }} // a_b`, Returns: "string"},
	{Name: "split", Category: "string", Signature: "split sep s", Description: "Splits string by separator", Example: `{{ "a,b" | split "," }} // [a b]`, Returns: "list"},
	{Name: "join", Category: "string", Signature: "join sep list", Description: "Joins list elements with separator", Example: `{{ .hosts | join "," }}`, Returns: "string"},
	{Name: "contains", Category: "string", Signature: "contains sub s", Description: "Checks if string contains substring", Example: `{{ if .url | contains "https" }}...{{ end }}`, Returns: "bool"},
	{Name: "hasPrefix", Category: "string", Signature: "hasPrefix prefix s", Description: "Checks if string starts with prefix", Example: `{{ .path | hasPrefix "/" }}`, Returns: "bool"},
	{Name: "hasSuffix", Category: "string", Signature: "hasSuffix suffix s", Description: "Checks if string ends with suffix", Example: `{{ .file | hasSuffix ".yaml" }}`, Returns: "bool"},
	{Name: "repeat", Category: "string", Signature: "repeat n s", Description: "Repeats string n times", Example: `{{ "ab" | repeat 3 }} // ababab`, Returns: "string"},
	{Name: "reverse", Category: "string", Signature: "reverse s", Description: "Reverses a string", Example: `{{ "abc" | reverse }} // cba`, Returns: "string"},
	{Name: "indent", Category: "string", Signature: "indent n s", Description: "Indents every line by n spaces", Example: `{{ readFile "ca.pem" | indent 4 }}`, Returns: "string", Tags: []string{"format"}},
	{Name: "nindent", Category: "string", Signature: "nindent n s", Description: "Like indent but starts with a newline", Example: `key: {{ .block | toYaml | nindent 2 }}`, Returns: "string", Tags: []string{"format"}},
	{Name: "quote", Category: "string", Signature: "quote v", Description: "Wraps a value in double quotes with escaping", Example: `{{ .name | quote }}`, Returns: "string", Tags: []string{"format"}},
	{Name: "squote", Category: "string", Signature: "squote v", Description: "Wraps a value in YAML single quotes", Example: `{{ .name | squote }}`, Returns: "string", Tags: []string{"format"}},

	// Conversion
	{Name: "toString", Category: "conversion", Signature: "toString v", Description: "Formats any value as a string", Example: `{{ toString 42 }}`, Returns: "string"},
	{Name: "toInt", Category: "conversion", Signature: "toInt v", Description: "Converts a number, bool or numeric string to an integer", Example: `{{ toInt "42" }}`, Returns: "int"},
	{Name: "toFloat", Category: "conversion", Signature: "toFloat v", Description: "Converts a number or numeric string to a float", Example: `{{ toFloat "1.5" }}`, Returns: "float"},
	{Name: "toBool", Category: "conversion", Signature: "toBool v", Description: "Converts a value to a boolean", Example: `{{ toBool "true" }}`, Returns: "bool"},

	// Lists
	{Name: "list", Category: "list", Signature: "list items...", Description: "Builds a list from its arguments", Example: `{{ list 1 2 3 }}`, Returns: "list"},
	{Name: "first", Category: "list", Signature: "first list", Description: "Returns first element", Example: `{{ first .hosts }}`, Returns: "any"},
	{Name: "last", Category: "list", Signature: "last list", Description: "Returns last element", Example: `{{ last .hosts }}`, Returns: "any"},
	{Name: "rest", Category: "list", Signature: "rest list", Description: "Returns all but the first element", Example: `{{ rest .hosts }}`, Returns: "list"},
	{Name: "seq", Category: "list", Signature: "seq start end", Description: "Returns the integers from start to end inclusive", Example: `{{ seq 1 3 }} // [1 2 3]`, Returns: "list"},

	// Maps
	{Name: "dict", Category: "map", Signature: "dict key value...", Description: "Builds a mapping from key/value pairs", Example: `{{ include "db.tpl" (dict "host" .db_host) }}`, Returns: "map"},
	{Name: "keys", Category: "map", Signature: "keys map", Description: "Returns the sorted keys of a mapping", Example: `{{ keys .urls }}`, Returns: "list"},
	{Name: "values", Category: "map", Signature: "values map", Description: "Returns values ordered by key", Example: `{{ values .urls }}`, Returns: "list"},
	{Name: "hasKey", Category: "map", Signature: "hasKey map key", Description: "Checks if a mapping has a key", Example: `{{ if hasKey . "debug" }}...{{ end }}`, Returns: "bool"},
	{Name: "get", Category: "map", Signature: "get map path [default]", Description: "Reads a dotted path, returning the default when absent", Example: `{{ get . "server.port" 8080 }}`, Returns: "any"},
	{Name: "merge", Category: "map", Signature: "merge maps...", Description: "Deep-merges mappings, later arguments win", Example: `{{ merge .defaults .local | toYaml }}`, Returns: "map"},

	// Conditionals
	{Name: "default", Category: "logic", Signature: "default fallback v", Description: "Returns v unless it is empty", Example: `{{ .port | default 8080 }}`, Returns: "any"},
	{Name: "empty", Category: "logic", Signature: "empty v", Description: "Reports whether v is null, zero or empty", Example: `{{ if empty .tags }}...{{ end }}`, Returns: "bool"},
	{Name: "coalesce", Category: "logic", Signature: "coalesce values...", Description: "Returns the first non-empty value", Example: `{{ coalesce .a .b "x" }}`, Returns: "any"},
	{Name: "ternary", Category: "logic", Signature: "ternary yes no cond", Description: "Chooses between two values", Example: `{{ .prod | ternary "info" "debug" }}`, Returns: "any"},

	// Math
	{Name: "add", Category: "math", Signature: "add a b", Description: "Adds two numbers", Example: `{{ add .port 1 }}`, Returns: "number"},
	{Name: "sub", Category: "math", Signature: "sub a b", Description: "Subtracts b from a", Example: `{{ sub 10 3 }} // 7`, Returns: "number"},
	{Name: "mul", Category: "math", Signature: "mul a b", Description: "Multiplies two numbers", Example: `{{ mul 2 3 }} // 6`, Returns: "number"},
	{Name: "div", Category: "math", Signature: "div a b", Description: "Divides a by b; division by zero fails", Example: `{{ div 7 2 }} // 3.5`, Returns: "number"},
	{Name: "mod", Category: "math", Signature: "mod a b", Description: "Integer remainder; division by zero fails", Example: `{{ mod 7 2 }} // 1`, Returns: "int"},

	// Serialization
	{Name: "toJson", Category: "encoding", Signature: "toJson v", Description: "Encodes a value as compact JSON", Example: `{{ .tags | toJson }}`, Returns: "string", Tags: []string{"json"}},
	{Name: "toPrettyJson", Category: "encoding", Signature: "toPrettyJson v", Description: "Encodes a value as indented JSON", Example: `{{ . | toPrettyJson }}`, Returns: "string", Tags: []string{"json"}},
	{Name: "fromJson", Category: "encoding", Signature: "fromJson s", Description: "Decodes a JSON string", Example: `{{ (fromJson .raw).name }}`, Returns: "any", Tags: []string{"json"}},
	{Name: "toYaml", Category: "encoding", Signature: "toYaml v", Description: "Encodes a value as YAML", Example: `{{ .block | toYaml | nindent 2 }}`, Returns: "string", Tags: []string{"yaml"}},
	{Name: "fromYaml", Category: "encoding", Signature: "fromYaml s", Description: "Decodes a YAML string", Example: `{{ (fromYaml (readFile "x.yaml")).key }}`, Returns: "any", Tags: []string{"yaml"}},
	{Name: "b64enc", Category: "encoding", Signature: "b64enc v", Description: "Base64-encodes a value", Example: `{{ "secret" | b64enc }}`, Returns: "string"},
	{Name: "b64dec", Category: "encoding", Signature: "b64dec s", Description: "Decodes standard or URL-safe base64", Example: `{{ .token | b64dec }}`, Returns: "string"},
	{Name: "hexenc", Category: "encoding", Signature: "hexenc v", Description: "Hex-encodes a value", Example: `{{ "hi" | hexenc }} // 6869`, Returns: "string"},
	{Name: "hexdec", Category: "encoding", Signature: "hexdec s", Description: "Decodes a hex string", Example: `{{ "6869" | hexdec }} // hi`, Returns: "string"},

	// Hashing
	{Name: "sha256", Category: "crypto", Signature: "sha256 v", Description: "Hex SHA-256 digest", Example: `{{ .password | sha256 }}`, Returns: "string", Tags: []string{"hash"}},
	{Name: "sha512", Category: "crypto", Signature: "sha512 v", Description: "Hex SHA-512 digest", Example: `{{ .password | sha512 }}`, Returns: "string", Tags: []string{"hash"}},
	{Name: "blake3", Category: "crypto", Signature: "blake3 v", Description: "Hex BLAKE3-256 digest", Example: `{{ readFile "bundle.tar" | blake3 }}`, Returns: "string", Tags: []string{"hash"}},
	{Name: "hash", Category: "crypto", Signature: "hash algorithm v", Description: "Hex digest with sha256, sha384, sha512 or blake3", Example: `{{ hash "sha384" .key }}`, Returns: "string", Tags: []string{"hash"}},
	{Name: "randAlphaNum", Category: "crypto", Signature: "randAlphaNum n", Description: "Random alphanumeric string from crypto/rand", Example: `{{ randAlphaNum 32 }}`, Returns: "string", Tags: []string{"random"}},
}

// Search returns the functions whose name, description or signature
// contains query, optionally restricted to one category. A limit of zero
// or less returns every match.
func Search(query string, category string, limit int) []Function {
	query = strings.ToLower(query)
	var results []Function

	for _, fn := range Reference {
		if category != "" && fn.Category != category {
			continue
		}

		searchText := strings.ToLower(fn.Name + " " + fn.Description + " " + fn.Signature + " " + strings.Join(fn.Tags, " "))
		if query == "" || strings.Contains(searchText, query) {
			results = append(results, fn)
		}

		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results
}

// Lookup returns the reference entry for a function name.
func Lookup(name string) (Function, bool) {
	for _, fn := range Reference {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// Categories returns all function categories with counts.
func Categories() map[string]int {
	categories := make(map[string]int)
	for _, fn := range Reference {
		categories[fn.Category]++
	}
	return categories
}

// CategoryNames returns the category names in sorted order.
func CategoryNames() []string {
	cats := Categories()
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
