package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_NilLayers(t *testing.T) {
	result := Merge(nil, nil)
	require.NotNil(t, result)
	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Vars)
}

func TestMerge_LaterLayerWins(t *testing.T) {
	user := &Settings{
		Sources:        []string{"/home/u/base.cfg"},
		Output:         "yaml",
		LogLevel:       "warn",
		CommandTimeout: time.Minute,
		Vars:           map[string]string{"region": "us", "owner": "u"},
		Files:          []string{"user.kdl"},
	}
	project := &Settings{
		Sources: []string{"/proj/app.cfg"},
		Output:  "json",
		Vars:    map[string]string{"region": "eu"},
		Set:     map[string]string{"server.port": "80"},
		Files:   []string{"project.kdl"},
	}
	local := &Settings{
		LogLevel: "debug",
		Set:      map[string]string{"server.port": "8080"},
		Files:    []string{"local.kdl"},
	}

	result := Merge(user, project, local)

	assert.Equal(t, []string{"/proj/app.cfg"}, result.Sources)
	assert.Equal(t, "json", result.Output)
	assert.Equal(t, "debug", result.LogLevel)
	assert.Equal(t, time.Minute, result.CommandTimeout)
	assert.Equal(t, map[string]string{"region": "eu", "owner": "u"}, result.Vars)
	assert.Equal(t, map[string]string{"server.port": "8080"}, result.Set)
	assert.Equal(t, []string{"user.kdl", "project.kdl", "local.kdl"}, result.Files)
}

func TestMerge_EmptyListsKeepEarlier(t *testing.T) {
	result := Merge(
		&Settings{Defaults: []string{"d.yaml"}},
		&Settings{Defaults: []string{}},
	)
	assert.Equal(t, []string{"d.yaml"}, result.Defaults)
}

func TestLoad_ThreeLayers(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, UserConfigDir), 0o755))
	require.NoError(t, os.WriteFile(UserConfigPath(), []byte(`output "json"
log-level "info"`), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ProjectConfigPath(dir), []byte(`sources "app.cfg"
output "yaml"`), 0o644))
	require.NoError(t, os.WriteFile(LocalConfigPath(dir), []byte(`log-level "debug"`), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "app.cfg")}, s.Sources)
	assert.Equal(t, "yaml", s.Output)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Len(t, s.Files, 3)
}

func TestLoad_NoFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, s.Files)
	assert.Empty(t, s.Sources)
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ProjectConfigPath(dir), []byte(`command-timeout "never"`), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
