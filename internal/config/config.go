package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755

	// DefaultServer is the backend origin used when no config exists;
	// the analysis backend listens on port 8000 by default.
	DefaultServer = "http://127.0.0.1:8000"

	// DefaultTimeoutSeconds bounds each backend call.
	DefaultTimeoutSeconds = 30
)

var (
	// ConfigDir is the global configuration directory (~/.qinggan)
	ConfigDir string

	// ConfigFile is the YAML settings file
	ConfigFile string
)

// Settings holds the client configuration.
type Settings struct {
	// Server is the backend origin, e.g. http://127.0.0.1:8000
	Server string `yaml:"server"`

	// TimeoutSeconds is the per-request timeout
	TimeoutSeconds int `yaml:"timeoutSeconds"`

	// Output is the default CLI output format: text, json or yaml
	Output string `yaml:"output"`
}

// Timeout returns the per-request timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Server:         DefaultServer,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Output:         "text",
	}
}

// Initialize sets up the configuration directory and file paths,
// creating ~/.qinggan/ and a default config.yaml on first run.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".qinggan")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := Save(Defaults()); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
	}

	return nil
}

// Load reads the settings file, filling in defaults for fields the
// file omits. A missing file yields the defaults.
func Load() (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(ConfigFile)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Defaults(), fmt.Errorf("failed to parse config: %w", err)
	}

	if settings.Server == "" {
		settings.Server = DefaultServer
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if settings.Output == "" {
		settings.Output = "text"
	}

	return settings, nil
}

// Save writes the settings file.
func Save(settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(ConfigFile, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
