package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the SkillsMP API origin used when nothing overrides it.
	DefaultBaseURL = "https://skillsmp.com"

	// HomeEnv overrides the skillsmp home directory (default ~/.skillsmp).
	HomeEnv = "SKILLSMP_HOME"
	// APIKeyEnv holds the bearer token sent to the API.
	APIKeyEnv = "SKILLSMP_API_KEY"
	// BaseURLEnv overrides the API origin.
	BaseURLEnv = "SKILLSMP_BASE_URL"
)

// InstallConfig controls the generated `npx add-skill` commands.
type InstallConfig struct {
	// Agent, when set, is passed as `-a <agent>` on install commands.
	Agent string `yaml:"agent,omitempty"`
}

// LoggingConfig controls the rotating CLI log file.
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	File     string `yaml:"file,omitempty"`
	MaxSize  int    `yaml:"max_size,omitempty"`
	MaxFiles int    `yaml:"max_files,omitempty"`
}

// Config is the in-memory representation of ~/.skillsmp/config.yaml.
//
// The file is optional; every field has a usable zero value.
type Config struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Timeout string        `yaml:"timeout,omitempty"`
	Install InstallConfig `yaml:"install,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// Dir returns the absolute path to the skillsmp home directory.
// $SKILLSMP_HOME wins over ~/.skillsmp.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(HomeEnv)); v != "" {
		return ExpandPath(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".skillsmp"), nil
}

// Path returns the absolute path to config.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// Load reads and parses the config file at path (Path() when empty).
// A missing file is not an error and yields an empty Config.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.Logging.File, err = ExpandPath(cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to path (Path() when empty).
func Save(path string, cfg *Config) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
