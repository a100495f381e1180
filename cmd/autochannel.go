package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"eclipse/internal/app"
	"eclipse/internal/config"
	"eclipse/internal/formatting"
	"eclipse/internal/store"
	"eclipse/pkg/logging"
)

var (
	autochannelOutputFormat string
	autochannelQuiet        bool
	autochannelDefaultLabel string
)

// autochannelCmd groups the root config administration commands.
var autochannelCmd = &cobra.Command{
	Use:     "autochannel",
	Aliases: []string{"ac"},
	Short:   "Manage root channels",
	Long: `Manage the root channel configured for each guild.

A guild without a root channel is ignored by the agent. The commands operate
on the store configured under 'store' (sqlite database or YAML file).

Examples:
  eclipse autochannel set 81384788765712384 81384788765712390 --default-label Lounge
  eclipse autochannel get 81384788765712384
  eclipse autochannel list -o yaml
  eclipse autochannel remove 81384788765712384`,
}

var autochannelSetCmd = &cobra.Command{
	Use:   "set <guild-id> <root-channel-id>",
	Short: "Enable auto-channels for a guild",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := store.RootConfig{GuildID: args[0], RootChannelID: args[1], DefaultLabel: autochannelDefaultLabel}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s store.AdminStore) error {
			if err := s.Put(ctx, cfg); err != nil {
				return err
			}
			if !autochannelQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Root channel of guild %s set to %s\n",
					text.FgGreen.Sprint("✓"), cfg.GuildID, cfg.RootChannelID)
			}
			return nil
		})
	},
}

var autochannelGetCmd = &cobra.Command{
	Use:   "get <guild-id>",
	Short: "Show the root channel of a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s store.AdminStore) error {
			cfg, ok, err := s.GetRootConfig(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: guild %s", store.ErrNotFound, args[0])
			}
			return f.FormatRootConfig(cfg)
		})
	},
}

var autochannelListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all configured guilds",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		return withStore(cmd, func(ctx context.Context, s store.AdminStore) error {
			configs, err := s.List(ctx)
			if err != nil {
				return err
			}
			return f.FormatRootConfigs(configs)
		})
	},
}

var autochannelRemoveCmd = &cobra.Command{
	Use:     "remove <guild-id>",
	Aliases: []string{"rm"},
	Short:   "Disable auto-channels for a guild",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s store.AdminStore) error {
			if err := s.Delete(ctx, args[0]); err != nil {
				return err
			}
			if !autochannelQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Auto-channels disabled for guild %s\n",
					text.FgGreen.Sprint("✓"), args[0])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(autochannelCmd)
	autochannelCmd.AddCommand(autochannelSetCmd, autochannelGetCmd, autochannelListCmd, autochannelRemoveCmd)

	autochannelCmd.PersistentFlags().StringVarP(&autochannelOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	autochannelCmd.PersistentFlags().BoolVarP(&autochannelQuiet, "quiet", "q", false, "Suppress non-essential output")
	autochannelSetCmd.Flags().StringVar(&autochannelDefaultLabel, "default-label", "", "Label used when no member is playing anything")

	_ = autochannelCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatting.Formats, cobra.ShellCompDirectiveNoFileComp
	})
}

func newFormatter(cmd *cobra.Command) (formatting.Formatter, error) {
	return formatting.New(formatting.Options{
		Format: formatting.OutputFormat(autochannelOutputFormat),
		Quiet:  autochannelQuiet,
		Output: cmd.OutOrStdout(),
	})
}

// withStore loads the configuration, opens the configured store and runs fn
// against it.
func withStore(cmd *cobra.Command, fn func(context.Context, store.AdminStore) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	app.InitLogging(settings.Logging, debug)

	s, err := app.OpenStore(ctx, &settings, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logging.Warn("ConfigStore", "Failed to close store: %v", err)
		}
	}()

	return fn(ctx, s)
}
