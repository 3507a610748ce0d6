// Package app assembles the store, cache and services shared by the
// HTTP server and the command line client.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quest-tracker/internal/cache"
	"quest-tracker/internal/config"
	"quest-tracker/internal/repository/sqlite"
	"quest-tracker/internal/service"
)

// App holds the initialized services. Close releases the store and cache.
type App struct {
	DB          *sql.DB
	Users       service.UserService
	Tasks       service.TaskService
	Progression service.ProgressionService
	Leaderboard service.LeaderboardService
	Logger      logrus.FieldLogger

	redis *redis.Client
}

// NewLogger builds the process logger at the configured level.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logger.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// New opens the database, creates the schema and wires the services.
// Initialization failures are fatal to the caller. An unreachable Redis is
// not: the leaderboard then reads straight from the database.
func New(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*App, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	if err := service.InitStore(ctx, userRepo, taskRepo); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{DB: db, Logger: logger}
	opts := service.Options{
		Logger:    logger,
		OpTimeout: cfg.Database.OpTimeout,
	}
	if cfg.Redis.Addr != "" {
		a.redis, opts.Cache = connectCache(ctx, cfg, logger)
	}

	a.Users = service.NewUserService(userRepo, opts)
	a.Tasks = service.NewTaskService(taskRepo, opts)
	a.Progression = service.NewProgressionService(taskRepo, opts)
	a.Leaderboard = service.NewLeaderboardService(userRepo, opts)
	return a, nil
}

func connectCache(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*redis.Client, service.LeaderboardCache) {
	cacheCfg := cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	}
	client := cache.NewClient(cacheCfg)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, leaderboard cache disabled")
		_ = client.Close()
		return nil, nil
	}

	logger.WithField("addr", cfg.Redis.Addr).Info("leaderboard cache enabled")
	return client, cache.NewLeaderboardCache(client, cacheCfg)
}

// CacheEnabled reports whether leaderboard pages are cached in Redis.
func (a *App) CacheEnabled() bool {
	return a.redis != nil
}

func (a *App) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return a.DB.Close()
}
