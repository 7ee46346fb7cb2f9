// Package file provides the TOML-backed application configuration.
//
// Configuration lives at ~/.fanvault/config.toml by default. The file
// holds the session credential, so it is written with owner-only
// permissions.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration.
type Config struct {
	// SessionID is the remote session cookie value used to
	// authenticate API and download requests.
	SessionID string `toml:"session_id"`

	// DataDir is where the metadata database and imported assets live.
	// Empty means ~/.fanvault/data.
	DataDir string `toml:"data_dir,omitempty"`

	// BaseURL overrides the remote site base URL. Empty means the
	// production site.
	BaseURL string `toml:"base_url,omitempty"`

	// UserAgent overrides the User-Agent header on remote requests.
	UserAgent string `toml:"user_agent,omitempty"`
}

// DefaultDir returns the default configuration directory, ~/.fanvault.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fanvault"), nil
}

// Load reads the configuration from configDir. If configDir is empty
// the default directory is used. A missing file yields a zero config
// and no error.
func Load(configDir string) (*Config, error) {
	path, err := configPath(configDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to configDir, creating the directory
// when needed. The file is written with restricted permissions.
func Save(configDir string, cfg *Config) error {
	path, err := configPath(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// configPath resolves the config file path for a config directory.
func configPath(configDir string) (string, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return "", err
		}
		configDir = dir
	}
	return filepath.Join(configDir, "config.toml"), nil
}
