package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liveboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.BoardID)
	assert.Equal(t, ":8888", cfg.ListenAddr)
	assert.Equal(t, "boards", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.True(t, cfg.Advertise)
	assert.True(t, cfg.Hosting())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.BoardID)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
board_id: team
user_name: ada
relay_url: 192.168.1.5:8888
advertise: false
log_level: debug
history_limit: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "team", cfg.BoardID)
	assert.Equal(t, "ada", cfg.UserName)
	assert.Equal(t, "192.168.1.5:8888", cfg.RelayURL)
	assert.False(t, cfg.Advertise)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.False(t, cfg.Hosting())
	// Unset keys keep their defaults.
	assert.Equal(t, ":8888", cfg.ListenAddr)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "board_id: team\nhistory_limit: 20\n")
	t.Setenv("LIVEBOARD_BOARD_ID", "other")
	t.Setenv("LIVEBOARD_HISTORY_LIMIT", "75")
	t.Setenv("LIVEBOARD_ADVERTISE", "no")
	t.Setenv("LIVEBOARD_LOG_LEVEL", "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.BoardID)
	assert.Equal(t, 75, cfg.HistoryLimit)
	assert.False(t, cfg.Advertise)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestInvalidEnvironmentIntegerIsIgnored(t *testing.T) {
	t.Setenv("LIVEBOARD_HISTORY_LIMIT", "lots")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.HistoryLimit)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "bord_id: typo\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty board", func(c *Config) { c.BoardID = "" }, "boardid is required"},
		{"board with slash", func(c *Config) { c.BoardID = "a/b" }, "boardid is invalid"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "loglevel must be one of"},
		{"zero history", func(c *Config) { c.HistoryLimit = 0 }, "historylimit must be at least 1"},
		{"bad persist url", func(c *Config) { c.PersistURL = "not a url" }, "persisturl must be a valid URL"},
		{"no listen addr", func(c *Config) { c.ListenAddr = "" }, "listenaddr is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
