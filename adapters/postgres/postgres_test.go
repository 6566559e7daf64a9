package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/core"
)

// openTestDB connects to the database named by TASKHIVE_TEST_DATABASE_URL and
// applies migrations. Tests are skipped when the variable is unset so the
// suite runs without a database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TASKHIVE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TASKHIVE_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(ctx, db))
	return db
}

func createTestUser(t *testing.T, repo *UserRepository) *core.User {
	t.Helper()
	user := &core.User{
		ID:           uuid.New().String(),
		Email:        fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		Name:         "Test User",
		Role:         "member",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo)
	assert.False(t, user.CreatedAt.IsZero(), "Create fills in created_at")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo)
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	err = repo.UpdatePassword(ctx, uuid.New().String(), "new-hash")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, users)

	parent := &core.Task{
		ID:          uuid.New().String(),
		OwnerID:     owner.ID,
		Title:       "Ship release",
		Description: "cut the branch",
		Status:      core.TaskStatusToDo,
	}
	require.NoError(t, tasks.Create(ctx, parent))

	sub := &core.Task{
		ID:       uuid.New().String(),
		OwnerID:  owner.ID,
		ParentID: parent.ID,
		Title:    "write changelog",
		Status:   core.TaskStatusToDo,
	}
	require.NoError(t, tasks.Create(ctx, sub))

	got, err := tasks.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, got.ParentID)

	topLevel, err := tasks.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, topLevel, 1, "subtasks are not top-level")
	assert.Equal(t, parent.ID, topLevel[0].ID)

	subtasks, err := tasks.ListSubtasks(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, subtasks, 1)
	assert.Equal(t, sub.ID, subtasks[0].ID)

	require.NoError(t, tasks.UpdateStatus(ctx, sub.ID, core.TaskStatusDone))
	got, err = tasks.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, core.TaskStatusDone, got.Status)

	_, err = tasks.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, core.ErrNotFound)
}
