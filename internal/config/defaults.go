package config

import "time"

const (
	DefaultRenameWindow       = 10 * time.Minute
	DefaultLabel              = "General"
	DefaultMaxConcurrentCalls = 16
	DefaultCallTimeout        = 30 * time.Second
	DefaultWorkers            = 4
	DefaultQueueDepth         = 1000
	DefaultHandleTimeout      = 30 * time.Second
	DefaultCacheTTL           = time.Minute
	DefaultShutdownTimeout    = 15 * time.Second
	DefaultDatabaseFile       = "eclipse.db"
)

// Default returns the configuration used before the file and the
// environment are applied.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:   StoreDriverSQLite,
			Path:     DefaultDatabaseFile,
			CacheTTL: DefaultCacheTTL,
		},
		AutoChannel: AutoChannelConfig{
			RenameWindow:       DefaultRenameWindow,
			DefaultLabel:       DefaultLabel,
			MaxConcurrentCalls: DefaultMaxConcurrentCalls,
			CallTimeout:        DefaultCallTimeout,
		},
		Dispatch: DispatchConfig{
			Workers:       DefaultWorkers,
			QueueDepth:    DefaultQueueDepth,
			HandleTimeout: DefaultHandleTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Shutdown: ShutdownConfig{
			Timeout: DefaultShutdownTimeout,
		},
	}
}
