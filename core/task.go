package core

import "time"

// TaskStatus is the workflow state of a task or subtask.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "to_do"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by a user. A task with a non-empty ParentID is
// a subtask of that parent.
type Task struct {
	ID          string
	OwnerID     string
	ParentID    string
	Title       string
	Description string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskSnapshot is the read-only view of a task and its subtasks handed to the
// status analyzer.
type TaskSnapshot struct {
	Title    string
	Status   TaskStatus
	Subtasks []SubtaskSnapshot
}

// SubtaskSnapshot is one subtask's contribution to a snapshot.
type SubtaskSnapshot struct {
	Title  string
	Status TaskStatus
}

// StatusAnalysis is the analyzer's recommendation for a task.
type StatusAnalysis struct {
	RecommendedStatus    TaskStatus
	Confidence           float64
	Reasoning            string
	CompletionPercentage int
}
