package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/pkg/encoding"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
log:
  level: debug
  scan_on_start: true
monitor:
  interval: 100ms
npc:
  default_display_name: "&eVillager"
  format: json
messages:
  skin_not_found: "&cNo such player."
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.ScanOnStart)
	assert.Equal(t, 100*time.Millisecond, cfg.Monitor.Interval)
	assert.Equal(t, 50*time.Millisecond, cfg.Monitor.InitialDelay)

	format, err := cfg.Format()
	require.NoError(t, err)
	assert.Equal(t, encoding.FormatJSON, format)

	msgs, err := cfg.TextMessages()
	require.NoError(t, err)
	assert.Equal(t, "Villager", msgs.DefaultDisplayName.Plain())
	assert.Equal(t, "No such player.", msgs.SkinNotFound.Apply(nil).Plain())

	assert.Equal(t, log.LevelDebug, cfg.LogOptions().Level)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("monitr:\n  interval: 1s\n"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(map[string]string{
		"REVERIES_LOG_LEVEL":                "warn",
		"REVERIES_MONITOR_INTERVAL":         "2s",
		"REVERIES_NPC_DEFAULT_DISPLAY_NAME": "Guard",
	}))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "Guard", cfg.NPC.DefaultDisplayName)
	assert.Equal(t, 16, cfg.Monitor.Shards)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Monitor.Interval = 0
	cfg.NPC.Format = "xml"
	cfg.Messages = map[string]string{"nope": "x"}

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"log.level", "monitor.interval", "npc.format", "messages"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidateRejectsZeroInitialDelay(t *testing.T) {
	cfg := Default()
	cfg.Monitor.InitialDelay = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor.initial_delay")

	path := filepath.Join(t.TempDir(), "reveries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  initial_delay: 0s\n"), 0o600))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "monitor.initial_delay")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "NPC", cfg.NPC.DefaultDisplayName)

	path := filepath.Join(dir, "reveries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  shards: 4\n"), 0o600))
	t.Setenv("REVERIES_MONITOR_SHARDS", "8")

	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Monitor.Shards)

	require.NoError(t, os.WriteFile(path, []byte("monitor:\n  interval: -1s\n"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
