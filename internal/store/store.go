// Package store holds per-guild auto-channel configuration: which voice
// channel acts as the root of a guild's auto-channels and which label an
// auto-channel falls back to when its members have no activities.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by admin operations on guilds without a root config.
var ErrNotFound = errors.New("root config not found")

// RootConfig is a guild's auto-channel configuration.
type RootConfig struct {
	GuildID       string `json:"guildId" yaml:"guildId"`
	RootChannelID string `json:"rootChannelId" yaml:"rootChannelId"`
	DefaultLabel  string `json:"defaultLabel,omitempty" yaml:"defaultLabel,omitempty"`
}

// Validate checks that the identifying fields are set.
func (c RootConfig) Validate() error {
	if c.GuildID == "" {
		return errors.New("guild id is required")
	}
	if c.RootChannelID == "" {
		return errors.New("root channel id is required")
	}
	return nil
}

// RootConfigStore is the read side used by the orchestrator. A guild without
// a config returns ok == false and a nil error.
type RootConfigStore interface {
	GetRootConfig(ctx context.Context, guildID string) (cfg RootConfig, ok bool, err error)
}

// AdminStore adds the write operations used by the CLI.
type AdminStore interface {
	RootConfigStore

	Put(ctx context.Context, cfg RootConfig) error
	Delete(ctx context.Context, guildID string) error
	List(ctx context.Context) ([]RootConfig, error)
	Close() error
}
