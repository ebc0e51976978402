package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up under the passage home dir.
const DefaultFileName = "config.toml"

// Config holds CLI-level settings loaded from ~/.passage/config.toml.
type Config struct {
	// OutputDir is where completed flow results are written when no
	// explicit --output path is given. Empty means the working directory.
	OutputDir string `toml:"output_dir"`

	// SessionDir overrides the default session store location.
	SessionDir string `toml:"session_dir"`

	// NoColor disables styled terminal output.
	NoColor bool `toml:"no_color"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{}
}

// HomeDir returns the passage home directory (~/.passage).
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".passage"), nil
}

// Load reads the config file at path. A missing file yields defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, NewUserError(ErrCodeConfigParse, "failed to read config file").
			WithContext(path).
			WithUnderlying(err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, NewUserError(ErrCodeConfigParse, "config file is not valid TOML").
			WithContext(path).
			WithSuggestion("check the syntax of " + path).
			WithUnderlying(err)
	}
	return cfg, nil
}

// LoadDefault reads the config from the passage home directory.
func LoadDefault() (Config, error) {
	dir, err := HomeDir()
	if err != nil {
		return Default(), nil
	}
	return Load(filepath.Join(dir, DefaultFileName))
}
