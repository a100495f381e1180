package formatting

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"eclipse/internal/store"
)

// YAMLFormatter provides YAML output formatting. The list form matches the
// guilds section of the configuration file, so its output can be pasted
// there directly.
type YAMLFormatter struct {
	options Options
}

// FormatRootConfigs writes the configurations as a YAML sequence.
func (f *YAMLFormatter) FormatRootConfigs(configs []store.RootConfig) error {
	return f.write(configs)
}

// FormatRootConfig writes a single configuration as a YAML mapping.
func (f *YAMLFormatter) FormatRootConfig(cfg store.RootConfig) error {
	return f.write(cfg)
}

func (f *YAMLFormatter) write(data interface{}) error {
	out := f.options.Output
	if out == nil {
		out = os.Stdout
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	_, err = out.Write(b)
	return err
}
