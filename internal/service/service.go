// Package service holds the project and task business rules. Services validate input
// against the configured model.Rules, enforce the count limits and uniqueness, and
// turn repository failures into the domain error kinds with user-facing messages.
package service

import (
	"io"
	"log/slog"

	"github.com/Joseda-hg/tasktracker/internal/repository"
)

// ProjectStore is the storage a ProjectService needs. Task access is required for the
// delete cascade and the combined listing.
type ProjectStore interface {
	repository.Transactor
	Projects() repository.ProjectRepository
	Tasks() repository.TaskRepository
}

// TaskStore is the storage a TaskService needs.
type TaskStore interface {
	repository.Transactor
	Tasks() repository.TaskRepository
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
