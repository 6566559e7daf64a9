package ports

import (
	"context"

	"github.com/taskhive/taskhive/core"
)

// UserRepository persists user accounts. Lookups that match nothing return
// core.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *core.User) error
	GetByID(ctx context.Context, id string) (*core.User, error)
	GetByEmail(ctx context.Context, email string) (*core.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// TaskRepository persists tasks and subtasks.
type TaskRepository interface {
	Create(ctx context.Context, task *core.Task) error
	GetByID(ctx context.Context, id string) (*core.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]core.Task, error)
	ListSubtasks(ctx context.Context, parentID string) ([]core.Task, error)
	UpdateStatus(ctx context.Context, id string, status core.TaskStatus) error
}
