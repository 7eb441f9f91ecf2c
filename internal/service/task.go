package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/repository"
)

// ProjectChecker fails with a validation error when the project does not exist.
type ProjectChecker interface {
	ValidateProjectExists(ctx context.Context, id int64) error
}

type TaskInput struct {
	ProjectID   int64
	Title       string
	Description string
	// Status defaults to todo when empty.
	Status   string
	Deadline string
}

// TaskUpdate replaces title, description and status. Status must be one of the
// configured statuses. An empty Deadline keeps the stored value; ClearDeadline removes it.
type TaskUpdate struct {
	Title         string
	Description   string
	Status        string
	Deadline      string
	ClearDeadline bool
}

type TaskService struct {
	store    TaskStore
	projects ProjectChecker
	rules    model.Rules
	logger   *slog.Logger
}

func NewTaskService(store TaskStore, projects ProjectChecker, rules model.Rules, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:    store,
		projects: projects,
		rules:    rules.WithDefaults(),
		logger:   loggerOrDiscard(logger),
	}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (model.Task, error) {
	if err := s.projects.ValidateProjectExists(ctx, input.ProjectID); err != nil {
		return model.Task{}, err
	}

	var created model.Task
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		count, err := repos.Tasks.CountByProject(ctx, input.ProjectID)
		if err != nil {
			return err
		}
		if count >= int64(s.rules.MaxTasksPerProject) {
			return s.rules.Messages.MaxTasksError(s.rules.MaxTasksPerProject)
		}

		task, err := model.NewTask(input.ProjectID, input.Title, input.Description, input.Status, input.Deadline, s.rules)
		if err != nil {
			return err
		}

		created, err = repos.Tasks.Create(ctx, task)
		return err
	})
	if err != nil {
		// The project can disappear between the check and the insert.
		if isBareNotFound(err) {
			return model.Task{}, s.rules.Messages.ProjectNotExistsError(input.ProjectID)
		}
		return model.Task{}, err
	}

	s.logger.Info("task created", "task_id", created.ID, "project_id", created.ProjectID)
	return created, nil
}

func (s *TaskService) ListTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	return s.store.Tasks().ListByProject(ctx, projectID)
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (model.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return model.Task{}, s.taskError(id, err)
	}
	return task, nil
}

// GetProjectTask is GetTask restricted to one project; a task owned by another
// project is reported as not found.
func (s *TaskService) GetProjectTask(ctx context.Context, projectID, taskID int64) (model.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	if task.ProjectID != projectID {
		return model.Task{}, s.rules.Messages.TaskNotInProjectError(taskID, projectID)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, update TaskUpdate) (model.Task, error) {
	var updated model.Task
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Tasks.GetByID(ctx, id); err != nil {
			return err
		}

		if err := s.rules.ValidateTaskFields(update.Title, update.Description); err != nil {
			return err
		}

		title := strings.TrimSpace(update.Title)
		description := strings.TrimSpace(update.Description)
		changes := model.TaskChanges{
			Title:         &title,
			Description:   &description,
			ClearDeadline: update.ClearDeadline,
		}

		status, err := s.rules.ValidateStatus(update.Status)
		if err != nil {
			return err
		}
		changes.Status = &status

		if !update.ClearDeadline {
			due, err := model.ParseDeadline(update.Deadline, s.rules.Messages)
			if err != nil {
				return err
			}
			changes.Deadline = due
		}

		updated, err = repos.Tasks.UpdateTask(ctx, id, changes)
		return err
	})
	if err != nil {
		return model.Task{}, s.taskError(id, err)
	}

	s.logger.Info("task updated", "task_id", id)
	return updated, nil
}

// ChangeStatus sets only the status of a task.
func (s *TaskService) ChangeStatus(ctx context.Context, id int64, status string) (model.Task, error) {
	st, err := s.rules.ValidateStatus(status)
	if err != nil {
		return model.Task{}, err
	}

	var updated model.Task
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Tasks.GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		updated, err = repos.Tasks.UpdateTask(ctx, id, model.TaskChanges{Status: &st})
		return err
	})
	if err != nil {
		return model.Task{}, s.taskError(id, err)
	}

	s.logger.Info("task status changed", "task_id", id, "status", st)
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.store.Tasks().Delete(ctx, id); err != nil {
		return s.taskError(id, err)
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

func (s *TaskService) taskError(id int64, err error) error {
	if isBareNotFound(err) {
		return s.rules.Messages.TaskNotFoundError(id)
	}
	return err
}

// isBareNotFound matches a repository not-found that has no user-facing message yet.
func isBareNotFound(err error) bool {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		return false
	}
	return errors.Is(err, model.ErrNotFound)
}
