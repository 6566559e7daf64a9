// Package inference implements the task status analyzer: a model-backed
// variant speaking the OpenAI-compatible chat completions API, and a
// deterministic rule-based variant used standalone or as its fallback.
package inference

import (
	"context"
	"fmt"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

// RuleAnalyzer derives a status recommendation from subtask counts alone.
// Same input, same answer, no I/O.
type RuleAnalyzer struct{}

// NewRuleAnalyzer creates a rule-based analyzer.
func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

var _ ports.StatusAnalyzer = (*RuleAnalyzer)(nil)

// AnalyzeTask applies the fixed rules: all subtasks done means done, all
// still to do means to do, anything mixed or underway means in progress. A
// task without subtasks keeps its current status.
func (a *RuleAnalyzer) AnalyzeTask(ctx context.Context, snapshot core.TaskSnapshot) (core.StatusAnalysis, error) {
	total := len(snapshot.Subtasks)
	if total == 0 {
		return core.StatusAnalysis{
			RecommendedStatus:    snapshot.Status,
			Confidence:           1.0,
			Reasoning:            "no subtasks; keeping current status",
			CompletionPercentage: completionFor(snapshot.Status),
		}, nil
	}

	var done, toDo int
	for _, sub := range snapshot.Subtasks {
		switch sub.Status {
		case core.TaskStatusDone:
			done++
		case core.TaskStatusToDo:
			toDo++
		}
	}

	var status core.TaskStatus
	switch {
	case done == total:
		status = core.TaskStatusDone
	case toDo == total:
		status = core.TaskStatusToDo
	default:
		status = core.TaskStatusInProgress
	}

	return core.StatusAnalysis{
		RecommendedStatus:    status,
		Confidence:           1.0,
		Reasoning:            fmt.Sprintf("%d of %d subtasks done", done, total),
		CompletionPercentage: done * 100 / total,
	}, nil
}

func completionFor(status core.TaskStatus) int {
	switch status {
	case core.TaskStatusDone:
		return 100
	case core.TaskStatusReview:
		return 90
	case core.TaskStatusInProgress:
		return 50
	default:
		return 0
	}
}
