package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/quest.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.OpTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "quest-backups", cfg.Storage.KeyPrefix)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUEST_DATABASE_PATH", "/var/lib/quest/quest.db")
	t.Setenv("QUEST_DATABASE_OPTIMEOUT", "750ms")
	t.Setenv("QUEST_REDIS_ADDR", "redis:6379")
	t.Setenv("QUEST_REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/quest/quest.db", cfg.Database.Path)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.OpTimeout)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"# local overrides\nQUEST_LOG_LEVEL=\"debug\"\nQUEST_SERVER_ADDR=127.0.0.1:9000\n"), 0o600))
	t.Setenv("QUEST_SERVER_ADDR", "127.0.0.1:7000")
	// t.Setenv restores on cleanup; unset the key .env will introduce as well
	t.Setenv("QUEST_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("QUEST_LOG_LEVEL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUEST_DATABASE_OPTIMEOUT", "0s")

	_, err := Load()
	assert.Error(t, err)
}
