package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eclipse/internal/app"
)

// serveCmd runs the agent in the foreground.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and manage auto-channels",
	Long: `Connects to the Discord gateway and manages auto-channels for every guild
that has a root channel configured, until interrupted.

Configuration:
  eclipse loads $HOME/.config/eclipse/config.yaml unless --config is given.
  Environment variables (ECLIPSE_DISCORD_TOKEN, ECLIPSE_DATABASE_PATH,
  ECLIPSE_LOG_LEVEL, ...) override the file.

Root channels are managed with 'eclipse autochannel'. With the sqlite store a
running agent picks up changes once its cache entry expires (store.cacheTTL);
with the file store changes apply as soon as the file is written.

When run under systemd with Type=notify, readiness and the watchdog are
reported automatically.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := app.NewConfig(debug, configPath)
	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
