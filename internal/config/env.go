package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds the raw environment values. Unset variables leave the
// pointer nil so that they do not clobber values from the file.
type envOverrides struct {
	DiscordToken              *string        `env:"ECLIPSE_DISCORD_TOKEN"`
	StoreDriver               *string        `env:"ECLIPSE_STORE_DRIVER"`
	DatabasePath              *string        `env:"ECLIPSE_DATABASE_PATH"`
	CacheTTL                  *time.Duration `env:"ECLIPSE_STORE_CACHE_TTL"`
	RenameWindow              *time.Duration `env:"ECLIPSE_RENAME_WINDOW"`
	ThrottleMembershipRenames *bool          `env:"ECLIPSE_THROTTLE_MEMBERSHIP_RENAMES"`
	DefaultLabel              *string        `env:"ECLIPSE_DEFAULT_LABEL"`
	Workers                   *int           `env:"ECLIPSE_DISPATCH_WORKERS"`
	QueueDepth                *int           `env:"ECLIPSE_DISPATCH_QUEUE_DEPTH"`
	LogLevel                  *string        `env:"ECLIPSE_LOG_LEVEL"`
	LogFormat                 *string        `env:"ECLIPSE_LOG_FORMAT"`
	ShutdownTimeout           *time.Duration `env:"ECLIPSE_SHUTDOWN_TIMEOUT"`
}

// applyEnv overlays ECLIPSE_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	set(&cfg.Discord.Token, raw.DiscordToken)
	set(&cfg.Store.Driver, raw.StoreDriver)
	set(&cfg.Store.Path, raw.DatabasePath)
	set(&cfg.Store.CacheTTL, raw.CacheTTL)
	set(&cfg.AutoChannel.RenameWindow, raw.RenameWindow)
	set(&cfg.AutoChannel.ThrottleMembershipRenames, raw.ThrottleMembershipRenames)
	set(&cfg.AutoChannel.DefaultLabel, raw.DefaultLabel)
	set(&cfg.Dispatch.Workers, raw.Workers)
	set(&cfg.Dispatch.QueueDepth, raw.QueueDepth)
	set(&cfg.Logging.Level, raw.LogLevel)
	set(&cfg.Logging.Format, raw.LogFormat)
	set(&cfg.Shutdown.Timeout, raw.ShutdownTimeout)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
