// Package config loads the command-line tool's own settings from KDL files.
//
// Settings are layered: the user file (~/.config/configtpl/config.kdl),
// then the project file (.configtpl.kdl), then the local file
// (.configtpl.local.kdl), each overriding the one before. Command-line
// flags override all of them.
package config

import "time"

// Settings are the defaults the CLI applies before reading flags.
type Settings struct {
	Sources        []string
	Defaults       []string
	Overrides      []string
	ContextFiles   []string
	DirectiveKey   string
	NoDirectives   bool
	Output         string
	LogLevel       string
	CommandTimeout time.Duration
	Vars           map[string]string
	Set            map[string]string

	// Files lists the settings files that contributed, in load order.
	Files []string
}

// Layer identifies a settings file.
type Layer int

const (
	LayerUser    Layer = iota // ~/.config/configtpl/config.kdl
	LayerProject              // .configtpl.kdl, shared via git
	LayerLocal                // .configtpl.local.kdl, gitignored
)

func (l Layer) String() string {
	switch l {
	case LayerUser:
		return "user"
	case LayerProject:
		return "project"
	case LayerLocal:
		return "local"
	default:
		return "unknown"
	}
}

// NewSettings creates empty settings.
func NewSettings() *Settings {
	return &Settings{
		Vars: make(map[string]string),
		Set:  make(map[string]string),
	}
}
