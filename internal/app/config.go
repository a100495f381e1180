package app

import (
	"eclipse/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug logging regardless of the configured level
	Debug bool

	// ConfigPath names the configuration file. Empty uses
	// ~/.config/eclipse/config.yaml when it exists.
	ConfigPath string

	// Settings is the loaded configuration. It is filled by NewApplication
	// unless the caller provides it.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
