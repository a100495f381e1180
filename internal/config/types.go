package config

import (
	"time"

	"eclipse/internal/store"
)

// Store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverFile   = "file"
)

// Config is the top-level configuration of the eclipse agent.
type Config struct {
	Discord     DiscordConfig      `yaml:"discord"`
	Store       StoreConfig        `yaml:"store"`
	AutoChannel AutoChannelConfig  `yaml:"autoChannel"`
	Dispatch    DispatchConfig     `yaml:"dispatch"`
	Logging     LoggingConfig      `yaml:"logging"`
	Shutdown    ShutdownConfig     `yaml:"shutdown"`
	Guilds      []store.RootConfig `yaml:"guilds,omitempty"`
}

// DiscordConfig holds the gateway credentials.
type DiscordConfig struct {
	Token string `yaml:"token,omitempty"`
	// Intents overrides the gateway intents bitmask. Zero selects the
	// intents auto-channels need.
	Intents int `yaml:"intents,omitempty"`
}

// StoreConfig selects where root configs are kept.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	// Path is the SQLite database for the sqlite driver and the YAML file
	// holding the guilds section for the file driver. An empty path with the
	// file driver uses the configuration file itself.
	Path     string        `yaml:"path,omitempty"`
	CacheTTL time.Duration `yaml:"cacheTTL,omitempty"`
}

// AutoChannelConfig tunes the orchestrator.
type AutoChannelConfig struct {
	RenameWindow              time.Duration     `yaml:"renameWindow"`
	ThrottleMembershipRenames bool              `yaml:"throttleMembershipRenames"`
	DefaultLabel              string            `yaml:"defaultLabel"`
	MaxConcurrentCalls        int               `yaml:"maxConcurrentCalls"`
	CallTimeout               time.Duration     `yaml:"callTimeout"`
	AuditReasons              map[string]string `yaml:"auditReasons,omitempty"`
}

// DispatchConfig sizes the event worker pool.
type DispatchConfig struct {
	Workers       int           `yaml:"workers"`
	QueueDepth    int           `yaml:"queueDepth"`
	HandleTimeout time.Duration `yaml:"handleTimeout"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ShutdownConfig bounds the graceful shutdown.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}
