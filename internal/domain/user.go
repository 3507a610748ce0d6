package domain

import "time"

// DefaultUsername is stored when a user registers without a display name.
const DefaultUsername = "NoName"

// DefaultLeaderboardLimit applies when the leaderboard is read with a
// non-positive limit.
const DefaultLeaderboardLimit = 100

// User represents a player identified by an external numeric id.
type User struct {
	ID             int64
	Username       string
	XP             int
	Level          int
	TasksCompleted int
	CreatedAt      time.Time
}

// LeaderboardEntry is a single ranked row of the leaderboard.
type LeaderboardEntry struct {
	Username       string `json:"username"`
	Level          int    `json:"level"`
	XP             int    `json:"xp"`
	TasksCompleted int    `json:"tasks_completed"`
}
