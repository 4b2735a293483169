package config

// Merge combines settings layers. Later layers win for scalars and for
// non-empty lists; Vars and Set merge per key.
func Merge(layers ...*Settings) *Settings {
	merged := NewSettings()

	for _, s := range layers {
		if s == nil {
			continue
		}
		if len(s.Sources) > 0 {
			merged.Sources = s.Sources
		}
		if len(s.Defaults) > 0 {
			merged.Defaults = s.Defaults
		}
		if len(s.Overrides) > 0 {
			merged.Overrides = s.Overrides
		}
		if len(s.ContextFiles) > 0 {
			merged.ContextFiles = s.ContextFiles
		}
		if s.DirectiveKey != "" {
			merged.DirectiveKey = s.DirectiveKey
		}
		if s.NoDirectives {
			merged.NoDirectives = true
		}
		if s.Output != "" {
			merged.Output = s.Output
		}
		if s.LogLevel != "" {
			merged.LogLevel = s.LogLevel
		}
		if s.CommandTimeout != 0 {
			merged.CommandTimeout = s.CommandTimeout
		}
		for k, v := range s.Vars {
			merged.Vars[k] = v
		}
		for k, v := range s.Set {
			merged.Set[k] = v
		}
		merged.Files = append(merged.Files, s.Files...)
	}

	return merged
}

// Load loads and merges the user, project and local settings for dir.
// Missing files are skipped.
func Load(dir string) (*Settings, error) {
	var layers []*Settings
	for _, layer := range []Layer{LayerUser, LayerProject, LayerLocal} {
		path := PathForLayer(layer, dir)
		if path == "" {
			continue
		}
		s, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, s)
	}
	return Merge(layers...), nil
}
