package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kdl "github.com/sblinch/kdl-go"
)

const (
	ProjectConfigFile = ".configtpl.kdl"
	LocalConfigFile   = ".configtpl.local.kdl"
	UserConfigDir     = "configtpl"
	UserConfigFile    = "config.kdl"
)

// KDLSettings is the raw KDL structure for unmarshaling.
//
//	sources "config/base.cfg" "config/app.cfg"
//	output "json"
//	command-timeout "10s"
//	vars {
//	    region "eu-west-1"
//	}
//	set {
//	    "server.port" "8080"
//	}
type KDLSettings struct {
	Sources        []string          `kdl:"sources"`
	Defaults       []string          `kdl:"defaults"`
	Overrides      []string          `kdl:"overrides"`
	ContextFiles   []string          `kdl:"context-files"`
	DirectiveKey   string            `kdl:"directive-key"`
	NoDirectives   bool              `kdl:"no-directives"`
	Output         string            `kdl:"output"`
	LogLevel       string            `kdl:"log-level"`
	CommandTimeout string            `kdl:"command-timeout"`
	Vars           map[string]string `kdl:"vars"`
	Set            map[string]string `kdl:"set"`
}

// UserConfigPath returns the path to the user settings file.
func UserConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, UserConfigDir, UserConfigFile)
}

// ProjectConfigPath returns the path to the project settings file.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectConfigFile)
}

// LocalConfigPath returns the path to the local settings file.
func LocalConfigPath(dir string) string {
	return filepath.Join(dir, LocalConfigFile)
}

// PathForLayer returns the settings path for a layer.
func PathForLayer(layer Layer, dir string) string {
	switch layer {
	case LayerUser:
		return UserConfigPath()
	case LayerLocal:
		return LocalConfigPath(dir)
	default:
		return ProjectConfigPath(dir)
	}
}

// LoadFile loads one settings file. A missing file yields empty settings.
// Relative file paths inside it resolve against the file's directory.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	s, err := ParseKDL(string(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	s.Files = []string{path}
	return s, nil
}

// ParseKDL parses settings. Relative paths resolve against dir.
func ParseKDL(data string, dir string) (*Settings, error) {
	var raw KDLSettings
	if err := kdl.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("parse KDL: %w", err)
	}

	s := NewSettings()
	s.Sources = resolveAll(dir, raw.Sources)
	s.Defaults = resolveAll(dir, raw.Defaults)
	s.Overrides = resolveAll(dir, raw.Overrides)
	s.ContextFiles = resolveAll(dir, raw.ContextFiles)
	s.DirectiveKey = raw.DirectiveKey
	s.NoDirectives = raw.NoDirectives
	s.Output = raw.Output
	s.LogLevel = raw.LogLevel

	if raw.CommandTimeout != "" {
		d, err := time.ParseDuration(raw.CommandTimeout)
		if err != nil {
			return nil, fmt.Errorf("command-timeout: %w", err)
		}
		s.CommandTimeout = d
	}

	for k, v := range raw.Vars {
		s.Vars[k] = v
	}
	for k, v := range raw.Set {
		s.Set[k] = v
	}

	return s, nil
}

func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) || dir == "" {
			out[i] = p
		} else {
			out[i] = filepath.Join(dir, p)
		}
	}
	return out
}
