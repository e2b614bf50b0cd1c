package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Settings is the fully resolved runtime configuration. It is built once at
// process start and handed to the components that need it.
type Settings struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	InstallAgent string
	Logging      LoggingConfig

	Home       string
	ConfigPath string
	DotEnvPath string
}

// LoadSettings resolves Settings from the environment, the dotenv file and
// config.yaml (configPath, or the default location when empty).
//
// Precedence per value: environment > .env > config.yaml > built-in default.
func LoadSettings(configPath string) (*Settings, error) {
	home, err := Dir()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath, err = Path()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	dotEnvPath, err := DotEnvPath()
	if err != nil {
		return nil, err
	}
	dotenv, err := ReadDotEnv(dotEnvPath)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return dotenv[key]
	}

	baseURL := lookup(BaseURLEnv)
	if baseURL == "" {
		baseURL = strings.TrimSpace(cfg.BaseURL)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var timeout time.Duration
	if cfg.Timeout != "" {
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q in %s: %w", cfg.Timeout, configPath, err)
		}
		if timeout < 0 {
			return nil, fmt.Errorf("invalid timeout %q in %s: must not be negative", cfg.Timeout, configPath)
		}
	}

	return &Settings{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       lookup(APIKeyEnv),
		Timeout:      timeout,
		InstallAgent: strings.TrimSpace(cfg.Install.Agent),
		Logging:      cfg.Logging,
		Home:         home,
		ConfigPath:   configPath,
		DotEnvPath:   dotEnvPath,
	}, nil
}
