package formatting

import (
	"encoding/json"
	"fmt"
	"os"

	"eclipse/internal/store"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// FormatRootConfigs writes the configurations as a JSON array.
func (f *JSONFormatter) FormatRootConfigs(configs []store.RootConfig) error {
	if configs == nil {
		configs = []store.RootConfig{}
	}
	return f.write(configs)
}

// FormatRootConfig writes a single configuration as a JSON object.
func (f *JSONFormatter) FormatRootConfig(cfg store.RootConfig) error {
	return f.write(cfg)
}

func (f *JSONFormatter) write(data interface{}) error {
	out := f.options.Output
	if out == nil {
		out = os.Stdout
	}

	var b []byte
	var err error
	if f.options.Quiet {
		// Compact JSON for quiet mode
		b, err = json.Marshal(data)
	} else {
		b, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}

	_, err = fmt.Fprintln(out, string(b))
	return err
}
