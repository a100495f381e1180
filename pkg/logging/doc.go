// Package logging provides a structured logging system for eclipse with unified
// log handling and flexible output formatting.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Log Levels
//
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Usage Examples
//
//	import "eclipse/pkg/logging"
//
//	// Initialize with Info level JSON logging to stderr
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stderr)
//
//	// Log messages
//	logging.Info("Bootstrap", "Application starting up")
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Warn("AutoChannel", "Rename of %s failed", channelID)
//	logging.Error("ConfigStore", err, "Failed to open database")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **Config**: Configuration loading and validation
//   - **ConfigStore**: Per-guild root channel configuration storage
//   - **AutoChannel**: Auto-channel orchestration
//   - **Dispatch**: Event queueing and worker pool
//   - **Discord**: Gateway session and REST calls
//
// # Thread Safety
//
// Logging is safe from multiple goroutines. Init may be called at any
// time; concurrent log calls observe either the old or new logger.
package logging
