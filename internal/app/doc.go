// Package app provides application bootstrap and lifecycle management for
// the eclipse agent.
//
// # Architecture Overview
//
// The app package wires the agent together:
//
//  1. **Bootstrap (`bootstrap.go`)**: logging, configuration loading, service creation
//  2. **Configuration (`config.go`)**: runtime flags such as --debug and --config
//  3. **Services (`services.go`)**: store, orchestrator, dispatcher and gateway wiring
//  4. **Run (`run.go`)**: signal handling, systemd notification, graceful shutdown
//
// # Event Flow
//
//	Discord gateway ──► discord.Gateway ──► dispatch.Manager ──► autochannel.Orchestrator
//	                                            ▲                       │
//	                                            └──── trailing renames ─┤
//	                                                                    ▼
//	                                        autochannel.Executor ──► Discord REST
//
// Events are queued per guild and handled one at a time per guild. The
// orchestrator never blocks on platform calls; the executor runs them and
// the orchestrator continues from their completion callbacks.
//
// # Root Config Store
//
// The store driver is chosen by store.driver:
//   - sqlite: the autochannels table of a SQLite database
//   - file: the guilds section of a YAML file, reloaded on change
//
// Either way a TTL cache sits in front of it. Admin writes through the CLI go
// to the store directly; a running agent sees them once the cache entry
// expires (or immediately for the file store, whose reload drops the cache).
//
// # Lifecycle
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives. On
// shutdown the gateway is closed first, then queued events are handled,
// then in-flight platform calls are drained, all bounded by
// shutdown.timeout. A metrics summary is logged at the end.
//
// When started by systemd with Type=notify the agent reports READY=1 once
// connected and STOPPING=1 when shutting down, and serves the watchdog if
// WatchdogSec is set.
package app
