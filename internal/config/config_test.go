package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"), true)
	assert.Error(t, err)
}

func TestLoadOverlaysDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
slots = 32
grow_buffer = false
recursive = true
ignore = ["C:\\Windows\\WinSxS", "  ", "C:\\Windows\\WinSxS"]
color = "Never"
refresh = "500ms"

[log]
level = "debug"
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Query.Slots)
	assert.False(t, cfg.Query.Grow)
	assert.True(t, cfg.Query.RetryAccessDenied, "untouched keys keep defaults")
	assert.Equal(t, 3, cfg.Query.MaxGrow)
	assert.True(t, cfg.Recursive)
	assert.Equal(t, []string{`C:\Windows\WinSxS`}, cfg.Ignore)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, 500*time.Millisecond, cfg.Refresh)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Enrich)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"zero slots":     "slots = 0",
		"negative grow":  "max_grow = -1",
		"bad color":      `color = "sometimes"`,
		"bad refresh":    `refresh = "soon"`,
		"zero refresh":   `refresh = "0s"`,
		"unknown key":    "slot = 4",
		"malformed toml": "slots = ",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), true)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/wholocked.toml")
	assert.Equal(t, "/etc/wholocked.toml", DefaultPath())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("", true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
