// Package autoclose marks overdue open tasks as done.
package autoclose

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

// TaskStore is the part of the task repository the job needs.
type TaskStore interface {
	ListOverdueOpenTasks(ctx context.Context, asOf time.Time) ([]model.Task, error)
	UpdateTask(ctx context.Context, id int64, changes model.TaskChanges) (model.Task, error)
}

// Result summarizes one run.
type Result struct {
	AsOf      string  `json:"as_of"`
	Found     int     `json:"found"`
	Closed    int     `json:"closed"`
	Failed    int     `json:"failed"`
	FailedIDs []int64 `json:"failed_ids,omitempty"`
}

type Job struct {
	tasks  TaskStore
	logger *slog.Logger
	now    func() time.Time
}

func NewJob(tasks TaskStore, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Job{tasks: tasks, logger: logger, now: time.Now}
}

// SetClock replaces the time source used by Run.
func (j *Job) SetClock(now func() time.Time) {
	j.now = now
}

func (j *Job) Run(ctx context.Context) (Result, error) {
	return j.RunAt(ctx, j.now())
}

// RunAt closes every task whose deadline is before now's date and whose status is not
// done. A failed update is logged and skipped; only a failed lookup aborts the run.
func (j *Job) RunAt(ctx context.Context, now time.Time) (Result, error) {
	today := model.DateOf(now)
	result := Result{AsOf: today.Format(model.DateLayout)}

	overdue, err := j.tasks.ListOverdueOpenTasks(ctx, today)
	if err != nil {
		j.logger.Error("auto-close lookup failed", "as_of", result.AsOf, "error", err)
		return result, err
	}
	result.Found = len(overdue)

	if len(overdue) == 0 {
		j.logger.Info("no overdue tasks found", "as_of", result.AsOf)
		return result, nil
	}
	j.logger.Info("closing overdue tasks", "as_of", result.AsOf, "found", result.Found)

	done := model.StatusDone
	closedAt := now
	for _, task := range overdue {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		_, err := j.tasks.UpdateTask(ctx, task.ID, model.TaskChanges{Status: &done, ClosedAt: &closedAt})
		if err != nil {
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, task.ID)
			j.logger.Warn("auto-close task failed", "task_id", task.ID, "error", err)
			continue
		}
		result.Closed++
	}

	j.logger.Info("auto-closed overdue tasks",
		"as_of", result.AsOf,
		"closed", result.Closed,
		"failed", result.Failed,
	)
	return result, nil
}
