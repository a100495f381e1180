package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVersionCmd(t *testing.T) {
	versionCmd := newVersionCmd()

	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotEmpty(t, versionCmd.Long)
	assert.NotNil(t, versionCmd.Run)
}

func TestVersionCommandExecution(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"1.2.3-test", "eclipse version 1.2.3-test\n"},
		{"", "eclipse version \n"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			original := rootCmd.Version
			defer func() { rootCmd.Version = original }()
			rootCmd.Version = tt.version

			versionCmd := newVersionCmd()
			var buf bytes.Buffer
			versionCmd.SetOut(&buf)
			versionCmd.Run(versionCmd, []string{})

			assert.Equal(t, tt.expected, buf.String())
		})
	}
}
