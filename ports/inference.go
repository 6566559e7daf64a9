package ports

import (
	"context"

	"github.com/taskhive/taskhive/core"
)

// StatusAnalyzer recommends a status for a task given a snapshot of it and
// its subtasks. Implementations must always return a usable analysis; a
// model-backed analyzer falls back to a deterministic calculation when the
// model is unreachable.
type StatusAnalyzer interface {
	AnalyzeTask(ctx context.Context, snapshot core.TaskSnapshot) (core.StatusAnalysis, error)
}
