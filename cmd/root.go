package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"eclipse/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigInvalid indicates the configuration could not be loaded or validated.
	ExitCodeConfigInvalid = 2
)

var (
	// configPath is the configuration file shared by every subcommand.
	configPath string

	// debug enables verbose logging across the application.
	debug bool
)

// rootCmd represents the base command for the eclipse application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eclipse",
	Short: "Temporary voice channels for Discord guilds",
	Long: `eclipse watches a "root" voice channel in each configured guild. Joining it
creates a personal auto-channel copied from the root, moves the member there
and makes them its owner. Auto-channels are named after what their members are
playing, follow the root's settings and disappear when the last member leaves.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "eclipse version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var cfgErr config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfigInvalid
	}

	var cfgErrs *config.ConfigurationErrorCollection
	if errors.As(err, &cfgErrs) {
		return ExitCodeConfigInvalid
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is $HOME/.config/eclipse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
