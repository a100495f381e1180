// Package config loads the eclipse agent configuration.
//
// Configuration is layered: built-in defaults, then a YAML file
// (~/.config/eclipse/config.yaml unless --config names another one), then
// ECLIPSE_* environment variables. The result is validated as a whole and
// every problem is reported in one ConfigurationErrorCollection.
//
// # File Format
//
//	discord:
//	  token: "..."            # or ECLIPSE_DISCORD_TOKEN
//	store:
//	  driver: sqlite          # sqlite | file
//	  path: eclipse.db        # or ECLIPSE_DATABASE_PATH
//	  cacheTTL: 1m
//	autoChannel:
//	  renameWindow: 10m       # 0 disables rename throttling
//	  throttleMembershipRenames: false
//	  defaultLabel: General
//	  maxConcurrentCalls: 16
//	  callTimeout: 30s
//	  auditReasons:
//	    Renamed: "Auto-channel renamed to {{.Label | quote}}"
//	dispatch:
//	  workers: 4
//	  queueDepth: 1000
//	  handleTimeout: 30s
//	logging:
//	  level: info             # debug | info | warn | error
//	  format: text            # text | json
//	shutdown:
//	  timeout: 15s
//	guilds:                   # read by the file store only
//	  - guildId: "81384788765712384"
//	    rootChannelId: "381870553235193857"
//
// # Environment
//
//	ECLIPSE_DISCORD_TOKEN, ECLIPSE_STORE_DRIVER, ECLIPSE_DATABASE_PATH,
//	ECLIPSE_STORE_CACHE_TTL, ECLIPSE_RENAME_WINDOW,
//	ECLIPSE_THROTTLE_MEMBERSHIP_RENAMES, ECLIPSE_DEFAULT_LABEL,
//	ECLIPSE_DISPATCH_WORKERS, ECLIPSE_DISPATCH_QUEUE_DEPTH,
//	ECLIPSE_LOG_LEVEL, ECLIPSE_LOG_FORMAT, ECLIPSE_SHUTDOWN_TIMEOUT
package config
