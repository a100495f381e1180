package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"eclipse/internal/config"
	"eclipse/internal/gateway/discord"
)

// DefaultTokenCheckTimeout bounds the token verification request.
const DefaultTokenCheckTimeout = 15 * time.Second

var (
	checkVerifyToken bool
	checkQuiet       bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long: `Loads the configuration the same way 'eclipse serve' does and reports every
problem found. With --verify-token the bot token is also checked against the
Discord API.

Examples:
  eclipse check
  eclipse check --config ./config.yaml --verify-token`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkVerifyToken, "verify-token", false, "Verify the bot token against the Discord API")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Suppress non-essential output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	settings, err := config.Load(configPath)
	if err != nil {
		var cfgErrs *config.ConfigurationErrorCollection
		if errors.As(err, &cfgErrs) {
			fmt.Fprintln(cmd.ErrOrStderr(), cfgErrs.GetDetailedReport())
		}
		fmt.Fprintf(out, "%s %s\n", text.FgRed.Sprint("✗"), "Configuration is invalid")
		return err
	}

	if !checkQuiet {
		fmt.Fprintf(out, "%s Configuration %s is valid\n", text.FgGreen.Sprint("✓"), path)
		fmt.Fprintf(out, "  Store:     %s (%s)\n", settings.Store.Driver, settings.Store.Path)
		fmt.Fprintf(out, "  Rename:    at most once per %s\n", settings.AutoChannel.RenameWindow)
		fmt.Fprintf(out, "  Workers:   %d\n", settings.Dispatch.Workers)
	}

	if !checkVerifyToken {
		return nil
	}
	if settings.Discord.Token == "" {
		return errors.New("no discord token configured (discord.token or ECLIPSE_DISCORD_TOKEN)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultTokenCheckTimeout)
	defer cancel()

	username, err := verifyToken(ctx, settings.Discord.Token)
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", text.FgRed.Sprint("✗"), "Token verification failed")
		return err
	}
	fmt.Fprintf(out, "%s Token is valid for %s\n", text.FgGreen.Sprint("✓"), text.Bold.Sprint(username))
	return nil
}

func verifyToken(ctx context.Context, token string) (string, error) {
	gw, err := discord.New(discord.Config{Token: token})
	if err != nil {
		return "", err
	}

	var s *spinner.Spinner
	if !checkQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Verifying token with Discord..."
		s.Start()
	}

	username, err := gw.Verify(ctx)

	if s != nil {
		s.Stop()
	}
	return username, err
}
