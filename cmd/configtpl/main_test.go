package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// workspace isolates settings lookup and returns a temp dir holding files.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CONFIGTPL_LOG_LEVEL", "error")

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRender(t *testing.T) {
	workspace(t, map[string]string{
		"base.cfg": "name: web\nport: 80\n\"@configtpl\":\n  load_next_defer: [urls.cfg]\n",
		"urls.cfg": "url: http://{{ .name }}.{{ .domain }}:{{ .port }}\n",
	})

	code, out, errOut := runCLI(t, "", "render", "base.cfg", "--var", "domain=example.com", "--set", "port=8080")
	require.Equal(t, 0, code, errOut)

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, map[string]any{
		"name": "web",
		"port": 8080,
		"url":  "http://web.example.com:80",
	}, cfg)
}

func TestRender_JSONAndGet(t *testing.T) {
	workspace(t, map[string]string{
		"a.yaml": "db:\n  host: localhost\n  port: 5432\n",
	})

	code, out, errOut := runCLI(t, "", "render", "a.yaml", "-o", "json")
	require.Equal(t, 0, code, errOut)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, map[string]any{"host": "localhost", "port": float64(5432)}, cfg["db"])

	code, out, _ = runCLI(t, "", "render", "a.yaml", "--get", "db.host")
	require.Equal(t, 0, code)
	assert.Equal(t, "localhost\n", out)

	code, _, errOut = runCLI(t, "", "render", "a.yaml", "--get", "db.user")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `no value at "db.user"`)
}

func TestRender_DefaultsAndOverridesFiles(t *testing.T) {
	workspace(t, map[string]string{
		"defaults.yaml":  "region: us\nreplicas: 1\n",
		"overrides.json": `{"replicas": 5}`,
		"app.cfg":        "zone: {{ .region }}-a\n",
	})

	code, out, errOut := runCLI(t, "", "render", "app.cfg",
		"--defaults", "defaults.yaml", "--overrides", "overrides.json")
	require.Equal(t, 0, code, errOut)

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, map[string]any{"region": "us", "replicas": 5, "zone": "us-a"}, cfg)
}

func TestRender_Settings(t *testing.T) {
	workspace(t, map[string]string{
		".configtpl.kdl": `sources "conf/app.cfg"
output "json"
vars {
    env "staging"
}`,
		"conf/app.cfg": "env_name: {{ .env }}\n",
	})

	code, out, errOut := runCLI(t, "", "render")
	require.Equal(t, 0, code, errOut)
	assert.JSONEq(t, `{"env_name": "staging"}`, out)

	code, out, errOut = runCLI(t, "", "render", "--var", "env=prod", "-o", "yaml")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "env_name: prod\n", out)
}

func TestRender_Directives(t *testing.T) {
	workspace(t, map[string]string{
		"a.cfg": "a: 1\n\"@configtpl\":\n  load_next_defer: [b.cfg]\n",
		"b.cfg": "b: 2\n",
	})

	code, out, errOut := runCLI(t, "", "render", "a.cfg", "--no-directives", "-o", "json")
	require.Equal(t, 0, code, errOut)
	assert.JSONEq(t, `{"a": 1, "@configtpl": {"load_next_defer": ["b.cfg"]}}`, out)
}

func TestRender_Errors(t *testing.T) {
	workspace(t, map[string]string{
		"a.cfg": "a: 1\n\"@configtpl\":\n  load_next_defer: [a.cfg]\n",
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no sources", []string{"render"}, "at least one source path is required"},
		{"cycle", []string{"render", "a.cfg"}, "cycle error"},
		{"bad set", []string{"render", "a.cfg", "--set", "novalue"}, "expected KEY=VALUE"},
		{"bad output", []string{"render", "a.cfg", "--no-directives", "-o", "toml"}, "unknown output format"},
		{"unknown flag", []string{"render", "--nope"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, "", tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, out+errOut, tt.want)
		})
	}
}

func TestRenderString(t *testing.T) {
	dir := workspace(t, map[string]string{
		"partials/port.tpl": "port: 9000",
	})

	code, out, errOut := runCLI(t, "", "render-string", `{{ $d := "example.com" }}domain: {{ $d }}`)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "domain: example.com\n", out)

	code, out, errOut = runCLI(t, "{\"a\": {{ add 1 2 }}}", "render-string", "-f", "json", "-o", "json")
	require.Equal(t, 0, code, errOut)
	assert.JSONEq(t, `{"a": 3}`, out)

	code, out, errOut = runCLI(t, `{{ include "partials/port.tpl" . }}`, "render-string", "-", "--work-dir", dir)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "port: 9000\n", out)
}

func TestFuncs(t *testing.T) {
	code, out, _ := runCLI(t, "", "funcs", "sha")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "sha256 v")
	assert.Contains(t, out, "sha512 v")

	code, out, _ = runCLI(t, "", "funcs", "--categories")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "crypto")

	code, out, _ = runCLI(t, "", "funcs", "-c", "file", "-v")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "[file]")
	assert.NotContains(t, out, "[crypto]")

	code, _, errOut := runCLI(t, "", "funcs", "zzz-none")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no functions match")
}

func TestDispatch(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "configtpl version "+version+"\n", out)

	code, out, _ = runCLI(t, "", "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "render-string")

	code, _, errOut := runCLI(t, "", "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unknown command: bogus")

	code, _, _ = runCLI(t, "")
	assert.Equal(t, 1, code)

	code, out, _ = runCLI(t, "", "render", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "--directive-key")
}

func TestSplitPair(t *testing.T) {
	k, v, err := splitPair("server.port=80=80")
	require.NoError(t, err)
	assert.Equal(t, "server.port", k)
	assert.Equal(t, "80=80", v)

	_, _, err = splitPair("=x")
	assert.Error(t, err)
}

func TestParseScalar(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"8080", int64(8080)},
		{"true", true},
		{"1.5", 1.5},
		{"hello", "hello"},
		{"", ""},
		{"[a, b]", []any{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseScalar(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
