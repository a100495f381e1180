package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"eclipse/pkg/logging"
)

const (
	userConfigDir  = ".config/eclipse"
	configFileName = "config.yaml"
)

// DefaultPath returns ~/.config/eclipse/config.yaml, or config.yaml in the
// working directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, userConfigDir, configFileName)
}

// Load reads the configuration file at path over the defaults, applies the
// environment and validates the result. A missing file is not an error when
// path is the default path; an explicitly named file must exist.
//
// Validation problems are returned as a *ConfigurationErrorCollection.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return Config{}, NewConfigurationErrorWithDetails(path, "", ErrorTypeParse,
				"configuration file is malformed", err.Error(),
				[]string{"Check the YAML syntax and the field names"})
		}
		logging.Info("Config", "Loaded configuration from %s", path)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		logging.Info("Config", "No configuration file at %s, using defaults", path)
	default:
		return Config{}, NewConfigurationError(path, "", ErrorTypeIO, fmt.Sprintf("cannot read configuration file: %v", err))
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, NewConfigurationError(path, "", ErrorTypeEnv, err.Error())
	}

	if cfg.Store.Driver == StoreDriverFile && cfg.Store.Path == "" {
		cfg.Store.Path = path
	}

	if errs := Validate(cfg, path); errs.HasErrors() {
		return Config{}, errs
	}
	return cfg, nil
}

// decode rejects unknown keys.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
