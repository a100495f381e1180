package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultPathMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var ce ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeIO, ce.ErrorType)
}

func TestLoad_FileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: file-token
store:
  driver: sqlite
  path: /var/lib/eclipse/eclipse.db
autoChannel:
  renameWindow: 5m
  throttleMembershipRenames: true
  defaultLabel: Lobby
  auditReasons:
    Renamed: "Renamed to {{.Label}}"
dispatch:
  workers: 8
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Discord.Token)
	assert.Equal(t, "/var/lib/eclipse/eclipse.db", cfg.Store.Path)
	assert.Equal(t, 5*time.Minute, cfg.AutoChannel.RenameWindow)
	assert.True(t, cfg.AutoChannel.ThrottleMembershipRenames)
	assert.Equal(t, "Lobby", cfg.AutoChannel.DefaultLabel)
	assert.Equal(t, "Renamed to {{.Label}}", cfg.AutoChannel.AuditReasons["Renamed"])
	assert.Equal(t, 8, cfg.Dispatch.Workers)
	assert.Equal(t, "json", cfg.Logging.Format)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultQueueDepth, cfg.Dispatch.QueueDepth)
	assert.Equal(t, DefaultCallTimeout, cfg.AutoChannel.CallTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "discord:\n  token: file-token\nautoChannel:\n  renameWindow: 5m\n")

	t.Setenv("ECLIPSE_DISCORD_TOKEN", "env-token")
	t.Setenv("ECLIPSE_RENAME_WINDOW", "90s")
	t.Setenv("ECLIPSE_THROTTLE_MEMBERSHIP_RENAMES", "true")
	t.Setenv("ECLIPSE_DISPATCH_WORKERS", "2")
	t.Setenv("ECLIPSE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Discord.Token)
	assert.Equal(t, 90*time.Second, cfg.AutoChannel.RenameWindow)
	assert.True(t, cfg.AutoChannel.ThrottleMembershipRenames)
	assert.Equal(t, 2, cfg.Dispatch.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ECLIPSE_DISPATCH_WORKERS", "many")

	_, err := Load("")
	require.Error(t, err)
	var ce ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeEnv, ce.ErrorType)
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "discord: ["},
		{"unknown key", "discord:\n  tokn: abc\n"},
		{"bad duration", "autoChannel:\n  renameWindow: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			var ce ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, ErrorTypeParse, ce.ErrorType)
			assert.Equal(t, "config.yaml", ce.FileName)
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileDriverDefaultsToConfigFile(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: file
  path: ""
guilds:
  - guildId: "1"
    rootChannelId: "10"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Store.Path)
	require.Len(t, cfg.Guilds, 1)
	assert.Equal(t, "10", cfg.Guilds[0].RootChannelID)
}

func TestLoad_ValidationErrorsAreCollected(t *testing.T) {
	path := writeConfig(t, `
dispatch:
  workers: 0
logging:
  level: loud
autoChannel:
  renameWindow: -1s
`)
	_, err := Load(path)
	require.Error(t, err)

	var errs *ConfigurationErrorCollection
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, 3, errs.Count())
	assert.Len(t, errs.GetErrorsBySection("dispatch"), 1)
	assert.Len(t, errs.GetErrorsBySection("logging"), 1)
	assert.Len(t, errs.GetErrorsBySection("autoChannel"), 1)
}
