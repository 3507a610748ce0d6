package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository"
)

// LeaderboardCache stores leaderboard pages between writes.
//
// Get returns the generation it observed so that a page computed after a
// miss is stored under that generation. Invalidate starts a new generation,
// which makes every earlier page unreachable.
type LeaderboardCache interface {
	Get(ctx context.Context, limit int) (entries []domain.LeaderboardEntry, generation int64, hit bool, err error)
	Put(ctx context.Context, generation int64, limit int, entries []domain.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

type nopCache struct{}

func (nopCache) Get(context.Context, int) ([]domain.LeaderboardEntry, int64, bool, error) {
	return nil, 0, false, nil
}
func (nopCache) Put(context.Context, int64, int, []domain.LeaderboardEntry) error { return nil }
func (nopCache) Invalidate(context.Context) error                                 { return nil }

// LeaderboardService ranks users by level, then xp. Order among users with
// equal level and xp is unspecified.
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type leaderboardService struct {
	users repository.UserRepository
	opts  Options
}

func NewLeaderboardService(users repository.UserRepository, opts Options) LeaderboardService {
	return &leaderboardService{users: users, opts: opts.withDefaults()}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = domain.DefaultLeaderboardLimit
	}
	log := s.opts.Logger.WithField("limit", limit)

	entries, generation, hit, err := s.opts.Cache.Get(ctx, limit)
	cacheUsable := err == nil
	if err != nil {
		log.WithError(err).Warn("leaderboard cache read failed")
	} else if hit {
		return entries, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	entries, err = s.users.Top(ctx, limit)
	if err != nil {
		return nil, storeError("top users", err)
	}

	if cacheUsable {
		if err := s.opts.Cache.Put(ctx, generation, limit, entries); err != nil {
			log.WithError(err).Warn("leaderboard cache write failed")
		}
	}
	return entries, nil
}

// invalidateLeaderboard is called after writes that can reorder the board.
func invalidateLeaderboard(ctx context.Context, cache LeaderboardCache, log logrus.FieldLogger) {
	if err := cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("leaderboard cache invalidation failed")
	}
}
