package builtins

import (
	"bytes"
	"context"
	"math"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, tmpl string, data any) (string, error) {
	t.Helper()
	parsed, err := template.New("test").Funcs(Funcs()).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = parsed.Execute(&buf, data)
	return buf.String(), err
}

func TestFuncs_Strings(t *testing.T) {
	data := map[string]any{
		"name":  "my-app",
		"hosts": []any{"a.example.com", "b.example.com"},
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"upper", `{{ .name | upper }}`, "MY-APP"},
		{"title", `{{ "hello world" | title }}`, "Hello World"},
		{"title multibyte", `{{ "élan über" | title }}`, "Élan Über"},
		{"replace pipeline", `{{ .name | replace "-" "_" }}`, "my_app"},
		{"trimSuffix", `{{ "app.cfg" | trimSuffix ".cfg" }}`, "app"},
		{"join", `{{ .hosts | join "," }}`, "a.example.com,b.example.com"},
		{"split", `{{ index ("a,b,c" | split ",") 1 }}`, "b"},
		{"contains", `{{ .name | contains "app" }}`, "true"},
		{"repeat", `{{ "ab" | repeat 3 }}`, "ababab"},
		{"reverse", `{{ "abc" | reverse }}`, "cba"},
		{"quote", `{{ .name | quote }}`, `"my-app"`},
		{"squote", `{{ "it's" | squote }}`, `'it''s'`},
		{"indent", `{{ "a\nb" | indent 2 }}`, "  a\n  b"},
		{"nindent", `{{ "a" | nindent 2 }}`, "\n  a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.template, data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFuncs_Collections(t *testing.T) {
	data := map[string]any{
		"urls":   map[string]any{"b": "2", "a": "1"},
		"server": map[string]any{"port": int64(80)},
		"list":   []any{int64(1), int64(2), int64(3)},
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"keys sorted", `{{ keys .urls }}`, "[a b]"},
		{"values by key", `{{ values .urls }}`, "[1 2]"},
		{"hasKey", `{{ hasKey .urls "a" }}`, "true"},
		{"get dotted", `{{ get . "server.port" }}`, "80"},
		{"get default", `{{ get . "server.host" "localhost" }}`, "localhost"},
		{"first", `{{ first .list }}`, "1"},
		{"last", `{{ last .list }}`, "3"},
		{"rest", `{{ rest .list }}`, "[2 3]"},
		{"seq", `{{ seq 3 6 }}`, "[3 4 5 6]"},
		{"seq from data", `{{ seq 1 .server.port | len }}`, "80"},
		{"dict", `{{ (dict "k" "v").k }}`, "v"},
		{"list", `{{ list 1 "a" }}`, "[1 a]"},
		{"merge", `{{ (merge .server (dict "host" "h")).host }}`, "h"},
		{"default empty", `{{ "" | default "x" }}`, "x"},
		{"default set", `{{ "y" | default "x" }}`, "y"},
		{"coalesce", `{{ coalesce "" 0 "z" }}`, "z"},
		{"ternary", `{{ true | ternary "on" "off" }}`, "on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.template, data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFuncs_Math(t *testing.T) {
	tests := []struct {
		template string
		expected string
	}{
		{`{{ add 1 2 }}`, "3"},
		{`{{ add 1.5 1 }}`, "2.5"},
		{`{{ sub 10 3 }}`, "7"},
		{`{{ mul 2 3 }}`, "6"},
		{`{{ add 9007199254740993 0 }}`, "9007199254740993"},
		{`{{ sub -9007199254740993 1 }}`, "-9007199254740994"},
		{`{{ mul 3037000499 3037000499 }}`, "9223372030926249001"},
		{`{{ div 7 2 }}`, "3.5"},
		{`{{ mod 7 2 }}`, "1"},
		{`{{ toInt "42" }}`, "42"},
		{`{{ toFloat "1.5" }}`, "1.5"},
		{`{{ toBool "true" }}`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := render(t, tt.template, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := render(t, `{{ div 1 0 }}`, nil)
	assert.Error(t, err)
	_, err = render(t, `{{ mod 1 0 }}`, nil)
	assert.Error(t, err)
	_, err = render(t, `{{ toInt "x" }}`, nil)
	assert.Error(t, err)
}

func TestFuncs_Serialization(t *testing.T) {
	data := map[string]any{"tags": []any{"a", "b"}, "db": map[string]any{"host": "h"}}

	got, err := render(t, `{{ .tags | toJson }}`, data)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, got)

	got, err = render(t, `{{ .db | toYaml }}`, data)
	require.NoError(t, err)
	assert.Equal(t, "host: h", got)

	got, err = render(t, `{{ (fromJson "{\"a\": 1}").a }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = render(t, `{{ (fromYaml "a: x").a }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	_, err = render(t, `{{ fromJson "{" }}`, nil)
	assert.Error(t, err)
}

func TestFuncs_Env(t *testing.T) {
	t.Setenv("CONFIGTPL_TEST_VAR", "value")

	got, err := render(t, `{{ env "CONFIGTPL_TEST_VAR" }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	got, err = render(t, `{{ env "CONFIGTPL_TEST_UNSET" "fallback" }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	got, err = render(t, `{{ env "CONFIGTPL_TEST_UNSET" }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestFuncs_FreshCopy(t *testing.T) {
	a := Funcs()
	a["upper"] = func(s string) string { return s }
	b := Funcs()
	assert.NotNil(t, b["upper"])

	bound := Bound(context.Background(), t.TempDir(), nil)
	for name := range bound {
		_, clash := b[name]
		assert.False(t, clash, "bound function %q shadows a static one", name)
	}
}

func TestIntOverflow(t *testing.T) {
	_, ok := addInt(math.MaxInt64, 1)
	assert.False(t, ok)
	_, ok = subInt(math.MinInt64, 1)
	assert.False(t, ok)
	_, ok = mulInt(math.MaxInt64, 2)
	assert.False(t, ok)
	_, ok = mulInt(-1, math.MinInt64)
	assert.False(t, ok)

	r, ok := addInt(-5, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(-2), r)
	r, ok = subInt(-5, -7)
	assert.True(t, ok)
	assert.Equal(t, int64(2), r)
	r, ok = mulInt(-4, 5)
	assert.True(t, ok)
	assert.Equal(t, int64(-20), r)
}
