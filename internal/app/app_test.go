package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest-tracker/internal/config"
	"quest-tracker/internal/service"
)

func testConfig(t *testing.T) config.Config {
	var cfg config.Config
	cfg.Database.Path = filepath.Join(t.TempDir(), "nested", "quest.db")
	return cfg
}

func TestNewWiresServices(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a, err := New(context.Background(), testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.False(t, a.CacheEnabled())
	assert.Equal(t, logrus.FieldLogger(logger), a.Logger)

	ctx := context.Background()
	created, err := a.Users.Register(ctx, 1, "hero")
	require.NoError(t, err)
	assert.True(t, created)

	id, err := a.Tasks.CreateTask(ctx, service.CreateTaskInput{UserID: 1, Title: "Train"})
	require.NoError(t, err)

	completion, err := a.Progression.CompleteTask(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, 10, completion.TotalXP)

	top, err := a.Leaderboard.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "hero", top[0].Username)
}

func TestNewDisablesUnreachableCache(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	a, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.False(t, a.CacheEnabled())
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, NewLogger("chatty").GetLevel())
	assert.Equal(t, logrus.DebugLevel, NewLogger(" debug ").GetLevel())
}
