package skillsmp

import (
	"time"

	"github.com/kamusis/skillsmp-cli/internal/config"
)

// Config contains the resolved client configuration.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration // zero means no client-side timeout
	UserAgent string
}

// ConfigFromSettings derives the client configuration from process settings.
func ConfigFromSettings(s *config.Settings, version string) Config {
	if version == "" {
		version = "dev"
	}
	return Config{
		BaseURL:   s.BaseURL,
		APIKey:    s.APIKey,
		Timeout:   s.Timeout,
		UserAgent: "skillsmp-cli/" + version,
	}
}
