package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository"
)

// CreateTaskInput describes a new task. Zero XP selects domain.DefaultTaskXP.
type CreateTaskInput struct {
	UserID   int64
	Title    string
	XP       int
	RemindAt *time.Time
}

// TaskService coordinates task level operations backed by repositories.
type TaskService interface {
	CreateTask(ctx context.Context, in CreateTaskInput) (int64, error)
	ListTasks(ctx context.Context, userID int64) ([]domain.Task, error)
	// DeleteTask reports false both for missing tasks and for tasks owned
	// by another user.
	DeleteTask(ctx context.Context, userID, taskID int64) (bool, error)
}

type taskService struct {
	tasks repository.TaskRepository
	opts  Options
}

func NewTaskService(tasks repository.TaskRepository, opts Options) TaskService {
	return &taskService{tasks: tasks, opts: opts.withDefaults()}
}

func (s *taskService) CreateTask(ctx context.Context, in CreateTaskInput) (int64, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, domain.ValidationError("task title is required")
	}
	xp := in.XP
	if xp == 0 {
		xp = domain.DefaultTaskXP
	}
	if xp < 0 {
		return 0, domain.ValidationError("task xp must be positive, got %d", xp)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	task := &domain.Task{
		UserID:   in.UserID,
		Title:    title,
		XP:       xp,
		RemindAt: in.RemindAt,
	}
	id, err := s.tasks.Create(ctx, task)
	if err != nil {
		return 0, storeError("create task", err)
	}

	s.opts.Logger.WithFields(logrus.Fields{
		"user_id": in.UserID,
		"task_id": id,
		"xp":      xp,
	}).Info("task created")
	return id, nil
}

func (s *taskService) ListTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return tasks, nil
}

func (s *taskService) DeleteTask(ctx context.Context, userID, taskID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	removed, err := s.tasks.Delete(ctx, userID, taskID)
	if err != nil {
		return false, storeError("delete task", err)
	}
	if removed {
		s.opts.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"task_id": taskID,
		}).Info("task deleted")
	}
	return removed, nil
}
