package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// TaskRepository persists tasks and subtasks in PostgreSQL.
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository creates a repository on the given handle.
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

const taskColumns = `id, owner_id, COALESCE(parent_id::text, ''), title, description, status, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *core.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, parent_id, title, description, status)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.ParentID, task.Title, task.Description, string(task.Status),
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*core.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task := &core.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.OwnerID, &task.ParentID, &task.Title,
		&task.Description, &task.Status, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]core.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks WHERE owner_id = $1 AND parent_id IS NULL
		ORDER BY created_at`

	return r.queryTasks(ctx, query, ownerID)
}

func (r *TaskRepository) ListSubtasks(ctx context.Context, parentID string) ([]core.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks WHERE parent_id = $1
		ORDER BY created_at`

	return r.queryTasks(ctx, query, parentID)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status core.TaskStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		var task core.Task
		err := rows.Scan(
			&task.ID, &task.OwnerID, &task.ParentID, &task.Title,
			&task.Description, &task.Status, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tasks, nil
}
