package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flamewatch/flamewatch/internal/constants"
)

// Loader handles loading and saving the configuration file.
type Loader struct {
	homeDir string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. FLAMEWATCH_CONFIG environment variable.
//  2. User home directory (~/).
//  3. /tmp/flamewatch-fallback (containerized environments without a home dir).
//
// The loader never fails to construct; when no config file exists, Load
// returns defaults with env var overrides applied.
func NewLoader() *Loader {
	if baseDir := os.Getenv("FLAMEWATCH_CONFIG"); baseDir != "" {
		return &Loader{homeDir: baseDir}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return &Loader{homeDir: homeDir}
	}

	return &Loader{homeDir: "/tmp/flamewatch-fallback"}
}

// ConfigPath returns the path to the config file.
func (l *Loader) ConfigPath() string {
	return filepath.Join(l.homeDir, constants.DefaultDir, constants.ConfigFile)
}

// DataDir returns the directory record artifacts default into.
func (l *Loader) DataDir() string {
	return filepath.Join(l.homeDir, constants.DefaultDataDir)
}

// DefaultOutputPath returns the record artifact path used when no --output
// flag is given.
func (l *Loader) DefaultOutputPath() string {
	return filepath.Join(l.DataDir(), constants.DefaultOutputFile)
}

// Load loads the configuration.
// Returns defaults if the file doesn't exist, then applies environment
// variable overrides for layered configuration.
func (l *Loader) Load() (*Config, error) {
	path := l.ConfigPath()

	var config *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		config = Default()
	} else {
		//nolint:gosec // G304: Path is from trusted config directory.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		config = Default()
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if config.Monitor.Output == "" {
		config.Monitor.Output = l.DefaultOutputPath()
	}

	if err := MergeFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return config, nil
}

// Save saves the configuration.
func (l *Loader) Save(config *Config) error {
	path := l.ConfigPath()

	dir := filepath.Dir(path)
	//nolint:gosec // G301: Directory needs standard permissions for traversal
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	//nolint:gosec // G306: Config holds no secrets.
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
