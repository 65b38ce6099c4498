package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the on-disk override format: a flat key -> action map.
//
//	{"ctrl+enter": "submit", "f2": "toggle_stats"}
type Config map[string]string

// LoadOrDefault returns the default registry with the overrides from
// keybinds.json in dir applied. A missing file yields the defaults.
func LoadOrDefault(dir string) (*Registry, error) {
	registry := NewDefaultRegistry()

	path := filepath.Join(dir, "keybinds.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	for key, action := range config {
		registry.Register(key, Action(action))
	}

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json: %w", err)
	}
	return registry, nil
}
