// Package formatting renders root channel configurations for the command
// line in table, JSON or YAML form.
package formatting

import (
	"fmt"
	"io"

	"eclipse/internal/store"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
	FormatTable OutputFormat = "table" // Rich table output
)

// Formats lists the accepted values of --output.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Output io.Writer
}

// Formatter renders root channel configurations.
type Formatter interface {
	FormatRootConfigs(configs []store.RootConfig) error
	FormatRootConfig(cfg store.RootConfig) error
}

// New creates the formatter for options.Format.
func New(options Options) (Formatter, error) {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{options: options}, nil
	case FormatYAML:
		return &YAMLFormatter{options: options}, nil
	case FormatTable, "":
		return &TableFormatter{options: options}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected one of %v)", options.Format, Formats)
	}
}
