package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/repository"
)

type ProjectService struct {
	store  ProjectStore
	rules  model.Rules
	logger *slog.Logger
}

func NewProjectService(store ProjectStore, rules model.Rules, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		rules:  rules.WithDefaults(),
		logger: loggerOrDiscard(logger),
	}
}

func (s *ProjectService) Rules() model.Rules {
	return s.rules
}

// CreateProject validates the fields, checks the project limit and name uniqueness,
// then stores the project.
func (s *ProjectService) CreateProject(ctx context.Context, name, description string) (model.Project, error) {
	project, err := model.NewProject(name, description, s.rules)
	if err != nil {
		return model.Project{}, err
	}

	var created model.Project
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		count, err := repos.Projects.Count(ctx)
		if err != nil {
			return err
		}
		if count >= int64(s.rules.MaxProjects) {
			return s.rules.Messages.MaxProjectsError(s.rules.MaxProjects)
		}

		if err := s.ensureUniqueName(ctx, repos.Projects, project.Name, 0); err != nil {
			return err
		}

		created, err = repos.Projects.Create(ctx, project)
		return err
	})
	if err != nil {
		return model.Project{}, s.projectError(0, project.Name, err)
	}

	s.logger.Info("project created", "project_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.store.Projects().ListAll(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (model.Project, error) {
	project, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return model.Project{}, s.projectError(id, "", err)
	}
	return project, nil
}

// EditProject replaces name and description of an existing project.
func (s *ProjectService) EditProject(ctx context.Context, id int64, name, description string) (model.Project, error) {
	var updated model.Project
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Projects.GetByID(ctx, id); err != nil {
			return err
		}

		project, err := model.NewProject(name, description, s.rules)
		if err != nil {
			return err
		}

		if err := s.ensureUniqueName(ctx, repos.Projects, project.Name, id); err != nil {
			return err
		}

		updated, err = repos.Projects.Update(ctx, id, model.ProjectChanges{
			Name:        &project.Name,
			Description: &project.Description,
		})
		return err
	})
	if err != nil {
		return model.Project{}, s.projectError(id, name, err)
	}

	s.logger.Info("project updated", "project_id", id)
	return updated, nil
}

// DeleteProject removes the project and all of its tasks in one transaction.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Projects.Delete(ctx, id); err != nil {
			return err
		}
		return repos.Tasks.DeleteAllByProject(ctx, id)
	})
	if err != nil {
		return s.projectError(id, "", err)
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// ValidateProjectExists reports a missing project as a validation failure of the
// operation that references it.
func (s *ProjectService) ValidateProjectExists(ctx context.Context, id int64) error {
	_, err := s.store.Projects().GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return s.rules.Messages.ProjectNotExistsError(id)
	}
	if err != nil {
		return s.projectError(id, "", err)
	}
	return nil
}

// ListProjectsWithTasks returns every project in id order with its tasks.
func (s *ProjectService) ListProjectsWithTasks(ctx context.Context) ([]model.ProjectWithTasks, error) {
	projects, err := s.store.Projects().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	tasks := s.store.Tasks()
	result := make([]model.ProjectWithTasks, 0, len(projects))
	for _, project := range projects {
		projectTasks, err := tasks.ListByProject(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, model.ProjectWithTasks{Project: project, Tasks: projectTasks})
	}
	return result, nil
}

func (s *ProjectService) ensureUniqueName(ctx context.Context, projects repository.ProjectRepository, name string, selfID int64) error {
	existing, err := projects.ListAll(ctx)
	if err != nil {
		return err
	}

	key := model.NameKey(name)
	for _, project := range existing {
		if project.ID != selfID && model.NameKey(project.Name) == key {
			return s.rules.Messages.DuplicateProjectError(name)
		}
	}
	return nil
}

// projectError gives bare repository kinds their configured message. Errors that
// already carry a message pass through unchanged.
func (s *ProjectService) projectError(id int64, name string, err error) error {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case isBareNotFound(err):
		return s.rules.Messages.ProjectNotFoundError(id)
	case errors.Is(err, model.ErrDuplicate):
		return s.rules.Messages.DuplicateProjectError(strings.TrimSpace(name))
	default:
		return err
	}
}
