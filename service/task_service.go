package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// TaskService manages tasks and runs status analysis over them.
type TaskService struct {
	tasks    ports.TaskRepository
	analyzer ports.StatusAnalyzer
	log      *slog.Logger
}

// NewTaskService creates a task service.
func NewTaskService(tasks ports.TaskRepository, analyzer ports.StatusAnalyzer, log *slog.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		analyzer: analyzer,
		log:      log,
	}
}

// Create adds a task (or, with parentID set, a subtask) owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID, parentID, title, description string) (*core.Task, error) {
	if parentID != "" {
		// Subtasks attach only to tasks the caller owns.
		if _, err := s.getOwned(ctx, parentID, ownerID); err != nil {
			return nil, err
		}
	}

	task := &core.Task{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		ParentID:    parentID,
		Title:       title,
		Description: description,
		Status:      core.TaskStatusToDo,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns a task the caller owns.
func (s *TaskService) Get(ctx context.Context, id, ownerID string) (*core.Task, error) {
	return s.getOwned(ctx, id, ownerID)
}

// List returns the caller's top-level tasks.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]core.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

// UpdateStatus moves a task the caller owns to a new status.
func (s *TaskService) UpdateStatus(ctx context.Context, id, ownerID string, status core.TaskStatus) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}
	if _, err := s.getOwned(ctx, id, ownerID); err != nil {
		return err
	}
	return s.tasks.UpdateStatus(ctx, id, status)
}

// AnalyzeStatus snapshots a task with its subtasks and asks the analyzer for
// a status recommendation.
func (s *TaskService) AnalyzeStatus(ctx context.Context, id, ownerID string) (core.StatusAnalysis, error) {
	task, err := s.getOwned(ctx, id, ownerID)
	if err != nil {
		return core.StatusAnalysis{}, err
	}

	subtasks, err := s.tasks.ListSubtasks(ctx, id)
	if err != nil {
		return core.StatusAnalysis{}, err
	}

	snapshot := core.TaskSnapshot{
		Title:  task.Title,
		Status: task.Status,
	}
	for _, sub := range subtasks {
		snapshot.Subtasks = append(snapshot.Subtasks, core.SubtaskSnapshot{
			Title:  sub.Title,
			Status: sub.Status,
		})
	}

	return s.analyzer.AnalyzeTask(ctx, snapshot)
}

// getOwned fetches a task and hides other owners' tasks behind ErrNotFound.
func (s *TaskService) getOwned(ctx context.Context, id, ownerID string) (*core.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	return task, nil
}
