package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository"
)

// ProgressionService completes tasks and credits their owners.
type ProgressionService interface {
	// CompleteTask returns an error matching domain.ErrNotCompletable when
	// the task is absent, owned by someone else, or already done. Nothing is
	// mutated in that case.
	CompleteTask(ctx context.Context, userID, taskID int64) (*domain.Completion, error)
}

type progressionService struct {
	tasks repository.TaskRepository
	opts  Options
}

func NewProgressionService(tasks repository.TaskRepository, opts Options) ProgressionService {
	return &progressionService{tasks: tasks, opts: opts.withDefaults()}
}

func (s *progressionService) CompleteTask(ctx context.Context, userID, taskID int64) (*domain.Completion, error) {
	log := s.opts.Logger.WithFields(logrus.Fields{
		"user_id": userID,
		"task_id": taskID,
	})

	opCtx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	completion, err := s.tasks.Complete(opCtx, userID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotCompletable) {
			log.WithError(err).Debug("task not completable")
			return nil, err
		}
		return nil, storeError("complete task", err)
	}

	log = log.WithFields(logrus.Fields{
		"xp":    completion.XPGained,
		"level": completion.NewLevel,
	})
	if completion.LeveledUp {
		log.Info("task completed, level up")
	} else {
		log.Info("task completed")
	}

	invalidateLeaderboard(ctx, s.opts.Cache, log)
	return completion, nil
}
