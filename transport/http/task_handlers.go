package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/service"
)

// TaskHandlers contains the handlers for task endpoints.
type TaskHandlers struct {
	tasks *service.TaskService
	log   *slog.Logger
}

// NewTaskHandlers creates the task handlers.
func NewTaskHandlers(tasks *service.TaskService, log *slog.Logger) *TaskHandlers {
	return &TaskHandlers{tasks: tasks, log: log}
}

type taskResponse struct {
	ID          string `json:"id"`
	ParentID    string `json:"parent_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toTaskResponse(task *core.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		ParentID:    task.ParentID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   task.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create adds a task or subtask.
func (h *TaskHandlers) Create(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		ParentID    string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), identity.UserID, req.ParentID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "parent task not found"})
			return
		}
		h.log.Error("task creation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task creation failed"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List returns the caller's top-level tasks.
func (h *TaskHandlers) List(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), identity.UserID)
	if err != nil {
		h.log.Error("task listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task listing failed"})
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

// Get returns one task the caller owns.
func (h *TaskHandlers) Get(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.log.Error("task lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task lookup failed"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// UpdateStatus changes a task's status.
func (h *TaskHandlers) UpdateStatus(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), identity.UserID, core.TaskStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrInvalidStatus.Error()})
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		default:
			h.log.Error("status update failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status update failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// Analyze runs the status analyzer over a task and its subtasks.
func (h *TaskHandlers) Analyze(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	analysis, err := h.tasks.AnalyzeStatus(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.log.Error("status analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommended_status":    analysis.RecommendedStatus,
		"confidence":            analysis.Confidence,
		"reasoning":             analysis.Reasoning,
		"completion_percentage": analysis.CompletionPercentage,
	})
}
