package formatting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"eclipse/internal/store"
	pkgstrings "eclipse/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// FormatRootConfigs renders one row per guild followed by a total.
func (f *TableFormatter) FormatRootConfigs(configs []store.RootConfig) error {
	if len(configs) == 0 {
		f.printf("%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("No auto-channels configured"))
		return nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("GUILD"),
		text.FgHiCyan.Sprint("ROOT CHANNEL"),
		text.FgHiCyan.Sprint("DEFAULT LABEL"),
	})
	for _, cfg := range configs {
		t.AppendRow(table.Row{cfg.GuildID, cfg.RootChannelID, shortDefaultName(cfg)})
	}
	t.Render()

	if !f.options.Quiet {
		f.printf("\n%s %s %s\n",
			text.FgHiBlue.Sprint("Total:"),
			text.FgHiWhite.Sprint(len(configs)),
			text.FgHiBlue.Sprint("guilds"))
	}
	return nil
}

// FormatRootConfig renders a single configuration as key/value pairs.
func (f *TableFormatter) FormatRootConfig(cfg store.RootConfig) error {
	t := f.createTable()
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	t.AppendRows([]table.Row{
		{text.FgHiCyan.Sprint("guild"), cfg.GuildID},
		{text.FgHiCyan.Sprint("root channel"), cfg.RootChannelID},
		{text.FgHiCyan.Sprint("default label"), defaultName(cfg)},
	})
	t.Render()
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.writer())
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(f.writer(), format, args...)
}

func (f *TableFormatter) writer() io.Writer {
	if f.options.Output != nil {
		return f.options.Output
	}
	return os.Stdout
}

// shortDefaultName keeps list rows on one line of bounded width.
func shortDefaultName(cfg store.RootConfig) string {
	if cfg.DefaultLabel == "" {
		return defaultName(cfg)
	}
	return pkgstrings.TruncateDescription(cfg.DefaultLabel, pkgstrings.DefaultDescriptionMaxLen)
}

func defaultName(cfg store.RootConfig) string {
	if cfg.DefaultLabel == "" {
		return text.Faint.Sprint("-")
	}
	return cfg.DefaultLabel
}
