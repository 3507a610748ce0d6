package domain

import "time"

// DefaultTaskXP is the reward assigned when a task is created without one.
const DefaultTaskXP = 10

// Task is a unit of work owned by a single user. IsDone only ever goes
// from false to true.
type Task struct {
	ID        int64
	UserID    int64
	Title     string
	XP        int
	IsDone    bool
	RemindAt  *time.Time
	CreatedAt time.Time
}
