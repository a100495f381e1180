package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"eclipse/internal/store"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"empty store path", func(c *Config) { c.Store.Path = " " }, "store.path"},
		{"negative cache ttl", func(c *Config) { c.Store.CacheTTL = -1 }, "store.cacheTTL"},
		{"negative rename window", func(c *Config) { c.AutoChannel.RenameWindow = -1 }, "autoChannel.renameWindow"},
		{"zero rename window disables throttling", func(c *Config) { c.AutoChannel.RenameWindow = 0 }, ""},
		{"empty default label", func(c *Config) { c.AutoChannel.DefaultLabel = "" }, "autoChannel.defaultLabel"},
		{"zero concurrency", func(c *Config) { c.AutoChannel.MaxConcurrentCalls = 0 }, "autoChannel.maxConcurrentCalls"},
		{"unknown audit reason", func(c *Config) {
			c.AutoChannel.AuditReasons = map[string]string{"Kicked": "x"}
		}, "autoChannel.auditReasons"},
		{"broken audit template", func(c *Config) {
			c.AutoChannel.AuditReasons = map[string]string{"Renamed": "{{.Label"}
		}, "autoChannel.auditReasons"},
		{"zero workers", func(c *Config) { c.Dispatch.Workers = 0 }, "dispatch.workers"},
		{"zero queue depth", func(c *Config) { c.Dispatch.QueueDepth = 0 }, "dispatch.queueDepth"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero shutdown timeout", func(c *Config) { c.Shutdown.Timeout = 0 }, "shutdown.timeout"},
		{"guilds with sqlite", func(c *Config) {
			c.Guilds = []store.RootConfig{{GuildID: "1", RootChannelID: "10"}}
		}, "guilds"},
		{"duplicate guilds", func(c *Config) {
			c.Store.Driver = StoreDriverFile
			c.Guilds = []store.RootConfig{{GuildID: "1", RootChannelID: "10"}, {GuildID: "1", RootChannelID: "11"}}
		}, "guilds[1]"},
		{"incomplete guild", func(c *Config) {
			c.Store.Driver = StoreDriverFile
			c.Guilds = []store.RootConfig{{GuildID: "1"}}
		}, "guilds[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			errs := Validate(cfg, "/etc/eclipse/config.yaml")
			if tt.wantField == "" {
				assert.False(t, errs.HasErrors(), errs.GetDetailedReport())
				return
			}
			if assert.Equal(t, 1, errs.Count(), errs.GetDetailedReport()) {
				assert.Contains(t, errs.Errors[0].Message, "'"+tt.wantField+"'")
				assert.Equal(t, "config.yaml", errs.Errors[0].FileName)
			}
		})
	}
}

func TestConfigurationErrorReport(t *testing.T) {
	errs := NewConfigurationErrorCollection()
	assert.Equal(t, "no configuration errors", errs.Error())

	errs.Add(NewConfigurationErrorWithDetails("/tmp/config.yaml", "store", ErrorTypeValidation,
		"field 'store.path': is required", "", []string{"Set store.path"}))
	assert.Equal(t, "config.yaml [store]: field 'store.path': is required", errs.Error())

	errs.Add(NewConfigurationError("/tmp/config.yaml", "", ErrorTypeParse, "configuration file is malformed"))
	assert.True(t, strings.HasPrefix(errs.Error(), "2 configuration errors:"))

	report := errs.GetDetailedReport()
	assert.Contains(t, report, "Section: store")
	assert.Contains(t, report, "- Set store.path")
	assert.Contains(t, report, "Type: parse")
}
