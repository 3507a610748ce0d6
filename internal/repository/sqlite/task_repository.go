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

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL CHECK (length(trim(title)) > 0),
	xp INTEGER NOT NULL DEFAULT 10 CHECK (xp > 0),
	is_done INTEGER NOT NULL DEFAULT 0,
	remind_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id, id);
`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	if err := r.ensureTaskColumns(ctx); err != nil {
		return err
	}
	return nil
}

// ensureTaskColumns upgrades task tables created before reminders and
// creation timestamps were stored.
func (r *TaskRepository) ensureTaskColumns(ctx context.Context) error {
	return ensureColumns(ctx, r.db, "tasks",
		column{name: "remind_at", ddl: "DATETIME NULL"},
		column{name: "created_at", ddl: "DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00'"},
	)
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (int64, error) {
	task.CreatedAt = time.Now().UTC()
	task.IsDone = false

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (user_id, title, xp, remind_at, created_at)
VALUES (?, ?, ?, ?, ?)`,
		task.UserID,
		task.Title,
		task.XP,
		nullTime(task.RemindAt),
		task.CreatedAt,
	)
	if err != nil {
		if isConstraintError(err, "foreign key") {
			return 0, fmt.Errorf("insert task for user %d: %w", task.UserID, domain.ErrUserNotFound)
		}
		if isConstraintError(err, "check constraint") {
			return 0, fmt.Errorf("insert task: %w", domain.ErrValidation)
		}
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, title, xp, is_done, remind_at, created_at
FROM tasks
WHERE user_id = ?
ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task delete rows affected: %w", err)
	}
	return aff > 0, nil
}

func (r *TaskRepository) Complete(ctx context.Context, userID, taskID int64) (*domain.Completion, error) {
	var completion domain.Completion

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			reward int
			isDone bool
		)
		err := tx.QueryRowContext(ctx, `
SELECT xp, is_done
FROM tasks
WHERE id = ? AND user_id = ?`,
			taskID, userID,
		).Scan(&reward, &isDone)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return fmt.Errorf("load task: %w", err)
		}
		if isDone {
			return domain.ErrAlreadyCompleted
		}

		// compare-and-set on the latch; a concurrent winner leaves zero rows
		res, err := tx.ExecContext(ctx, `
UPDATE tasks
SET is_done = 1
WHERE id = ? AND user_id = ? AND is_done = 0`,
			taskID, userID,
		)
		if err != nil {
			return fmt.Errorf("mark task done: %w", err)
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("task update rows affected: %w", err)
		}
		if aff == 0 {
			return domain.ErrAlreadyCompleted
		}

		user, err := scanUser(tx.QueryRowContext(ctx, `
SELECT id, username, xp, level, tasks_completed, created_at
FROM users
WHERE id = ?`,
			userID,
		))
		if err != nil {
			return err
		}

		completion = domain.ApplyCompletion(user, taskID, reward)

		if _, err := tx.ExecContext(ctx, `
UPDATE users
SET xp = ?, level = ?, tasks_completed = ?
WHERE id = ?`,
			user.XP,
			user.Level,
			user.TasksCompleted,
			user.ID,
		); err != nil {
			return fmt.Errorf("update user progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &completion, nil
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task      domain.Task
		remindAt  storedTime
		createdAt storedTime
	)

	if err := scanner.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.XP,
		&task.IsDone,
		&remindAt,
		&createdAt,
	); err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if remindAt.Valid {
		t := remindAt.Time.UTC()
		task.RemindAt = &t
	}
	task.CreatedAt = createdAt.Time.UTC()

	return &task, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
