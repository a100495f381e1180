package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		args     []string
		wantErr  bool
		contains []string
	}{
		{
			name: "valid",
			content: `
store:
  driver: sqlite
  path: /var/lib/eclipse/eclipse.db
autoChannel:
  renameWindow: 5m
`,
			contains: []string{"is valid", "sqlite", "5m0s"},
		},
		{
			name: "quiet",
			content: `
logging:
  level: warn
`,
			args:     []string{"--quiet"},
			contains: nil,
		},
		{
			name: "invalid",
			content: `
dispatch:
  workers: 0
logging:
  format: xml
`,
			wantErr:  true,
			contains: []string{"Configuration is invalid", "dispatch.workers", "logging.format"},
		},
		{
			name: "verify without token",
			content: `
logging:
  level: info
`,
			args:     []string{"--verify-token"},
			wantErr:  true,
			contains: []string{"is valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ECLIPSE_DISCORD_TOKEN", "")
			require.NoError(t, os.Unsetenv("ECLIPSE_DISCORD_TOKEN"))
			path := writeConfig(t, tt.content)

			out, err := execute(t, append([]string{"check", "--config", path}, tt.args...)...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			if tt.contains == nil {
				assert.NotContains(t, out, "is valid")
			}
		})
	}
}
