package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, DefaultModel, cfg.Addon.GeminiModel)
	assert.Equal(t, 31, cfg.Addon.RetentionDays)
	assert.True(t, cfg.Addon.AutoQueueClosed)
	assert.Equal(t, 2, cfg.Addon.MinReplies)
	assert.Equal(t, "kb.queue", cfg.Events.Topic)
	assert.Equal(t, 30, cfg.Admin.RateLimit)
	assert.Equal(t, DefaultSettingsModule, cfg.Platform.SettingsModule)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kbgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  write_timeout: 30s
database:
  driver: sqlite3
  dsn: "file::memory:"
addon:
  min_replies: 4
events:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
`), 0o600))

	t.Setenv("KBGEN_ADDON_LICENSE_KEY", "LIC-123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Addon.MinReplies)
	assert.Equal(t, "LIC-123", cfg.Addon.LicenseKey)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("database.driver", "oracle")

	_, err := FromViper(v)
	assert.ErrorContains(t, err, "unsupported database.driver")
}

func TestAddonDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("platform.system_url", "https://support.example.com/")
	v.Set("addon.retention_days", 0)

	cfg, err := FromViper(v)
	require.NoError(t, err)

	s := cfg.AddonDefaults()
	assert.Equal(t, DefaultRetentionDays, s.RetentionDays)
	assert.Equal(t, "https://support.example.com/", s.SystemURL)
	assert.True(t, s.AutoQueueClosed)
}
