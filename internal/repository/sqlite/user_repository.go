package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
	level INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
	tasks_completed INTEGER NOT NULL DEFAULT 0 CHECK (tasks_completed >= 0),
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_rank ON users(level DESC, xp DESC);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return r.ensureUserColumns(ctx)
}

// ensureUserColumns upgrades user tables created before registration
// timestamps were stored.
func (r *UserRepository) ensureUserColumns(ctx context.Context) error {
	return ensureColumns(ctx, r.db, "users",
		column{name: "created_at", ddl: "DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00'"},
	)
}

func (r *UserRepository) Register(ctx context.Context, user *domain.User) (bool, error) {
	user.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, username, created_at)
VALUES (?, ?, ?)
ON CONFLICT(id) DO NOTHING`,
		user.ID,
		user.Username,
		user.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("user insert rows affected: %w", err)
	}
	return aff > 0, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, xp, level, tasks_completed, created_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = domain.DefaultLeaderboardLimit
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT username, level, xp, tasks_completed
FROM users
ORDER BY level DESC, xp DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var (
			entry    domain.LeaderboardEntry
			username sql.NullString
		)
		if err := rows.Scan(&username, &entry.Level, &entry.XP, &entry.TasksCompleted); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entry.Username = usernameOrDefault(username)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		username  sql.NullString
		createdAt storedTime
	)
	if err := row.Scan(
		&user.ID,
		&username,
		&user.XP,
		&user.Level,
		&user.TasksCompleted,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Username = usernameOrDefault(username)
	user.CreatedAt = createdAt.Time.UTC()
	return &user, nil
}

// usernameOrDefault covers rows written by the chat bot, whose schema
// allowed a NULL username.
func usernameOrDefault(s sql.NullString) string {
	if !s.Valid || s.String == "" {
		return domain.DefaultUsername
	}
	return s.String
}
