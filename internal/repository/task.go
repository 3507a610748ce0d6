package repository

import (
	"context"

	"quest-tracker/internal/domain"
)

// Initializer creates the tables a repository owns. Calling Init on an
// existing store is a no-op.
type Initializer interface {
	Init(ctx context.Context) error
}

// TaskRepository exposes persistence operations for tasks, always scoped
// to the owning user.
type TaskRepository interface {
	Initializer
	Create(ctx context.Context, task *domain.Task) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Task, error)
	Delete(ctx context.Context, userID, taskID int64) (bool, error)
	// Complete marks the task done and credits its owner in one transaction.
	Complete(ctx context.Context, userID, taskID int64) (*domain.Completion, error)
}
