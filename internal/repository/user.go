package repository

import (
	"context"

	"quest-tracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Initializer
	// Register inserts the user unless the id already exists and reports
	// whether a row was created.
	Register(ctx context.Context, user *domain.User) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
