package root

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupStore(t *testing.T) {
	t.Setenv("QUEST_DATABASE_PATH", filepath.Join(t.TempDir(), "quest.db"))
	t.Setenv("QUEST_LOG_LEVEL", "error")
	t.Setenv("QUEST_REDIS_ADDR", "")
}

func TestQuestFlow(t *testing.T) {
	setupStore(t)

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "store ready")

	out, err = run(t, "register", "-u", "5", "mage")
	require.NoError(t, err)
	assert.Equal(t, "registered user 5\n", out)

	out, err = run(t, "register", "-u", "5")
	require.NoError(t, err)
	assert.Equal(t, "user 5 already registered\n", out)

	out, err = run(t, "add", "-u", "5", "--xp", "150", "Slay dragon")
	require.NoError(t, err)
	assert.Equal(t, "added task #1\n", out)

	out, err = run(t, "list", "-u", "5")
	require.NoError(t, err)
	assert.Equal(t, "[ ] #1 Slay dragon (150 xp)\n", out)

	out, err = run(t, "done", "-u", "5", "1")
	require.NoError(t, err)
	assert.Equal(t, "+150 xp (total 150)\nlevel up! now level 2\n", out)

	_, err = run(t, "done", "-u", "5", "1")
	assert.Error(t, err)

	out, err = run(t, "profile", "-u", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "level: 2")
	assert.Contains(t, out, "tasks completed: 1")

	out, err = run(t, "top")
	require.NoError(t, err)
	assert.Equal(t, "1. mage  lvl 2  150 xp  1 done\n", out)

	out, err = run(t, "rm", "-u", "5", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted task #1\n", out)

	out, err = run(t, "rm", "-u", "5", "1")
	require.NoError(t, err)
	assert.Equal(t, "task #1 not found\n", out)
}

func TestArgumentValidation(t *testing.T) {
	setupStore(t)

	_, err := run(t, "list")
	assert.EqualError(t, err, "--user is required")

	_, err = run(t, "done", "-u", "1", "abc")
	assert.EqualError(t, err, "task id must be an integer")

	_, err = run(t, "add", "-u", "1", "--remind", "tomorrow", "Nap")
	assert.ErrorContains(t, err, "--remind must be RFC3339")
}

func TestBackupRequiresBucket(t *testing.T) {
	setupStore(t)
	t.Setenv("QUEST_STORAGE_BUCKET", "")
	t.Setenv("QUEST_STORAGE_REGION", "us-east-1")

	_, err := run(t, "backup")
	assert.ErrorContains(t, err, "bucket is required")
}

func TestUserZeroIsAddressable(t *testing.T) {
	setupStore(t)

	out, err := run(t, "register", "--user", "0", "root")
	require.NoError(t, err)
	assert.Equal(t, "registered user 0\n", out)

	_, err = run(t, "add", "-u", "0", "Bootstrap")
	require.NoError(t, err)

	out, err = run(t, "list", "-u", "0")
	require.NoError(t, err)
	assert.Equal(t, "[ ] #1 Bootstrap (10 xp)\n", out)
}
