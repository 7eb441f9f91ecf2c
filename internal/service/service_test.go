package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Joseda-hg/tasktracker/internal/db"
	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/repository"
)

func newTestServices(t *testing.T, rules model.Rules) (*ProjectService, *TaskService) {
	t.Helper()
	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	store := db.NewStore(sqlDB)
	projects := NewProjectService(store, rules, nil)
	tasks := NewTaskService(store, projects, rules, nil)
	return projects, tasks
}

func mustCreateProject(t *testing.T, svc *ProjectService, name string) model.Project {
	t.Helper()
	project, err := svc.CreateProject(context.Background(), name, "A first test project")
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return project
}

func TestCreateProjectValidation(t *testing.T) {
	projects, _ := newTestServices(t, model.DefaultRules())
	ctx := context.Background()

	cases := []struct {
		name        string
		projectName string
		description string
		want        string
	}{
		{name: "short name", projectName: "Al", description: "A first test project", want: "Project name must have at least 3 characters."},
		{name: "long name", projectName: strings.Repeat("a", 101), description: "A first test project", want: "Project name must have at most 100 characters."},
		{name: "short description", projectName: "Alpha", description: "tiny", want: "Project description must have at least 10 characters."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := projects.CreateProject(ctx, tc.projectName, tc.description)
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateProjectDuplicateName(t *testing.T) {
	projects, _ := newTestServices(t, model.DefaultRules())
	mustCreateProject(t, projects, "Alpha")

	_, err := projects.CreateProject(context.Background(), " alpha ", "Another description")
	if !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err.Error() != "Project name 'alpha' already exists." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateProjectLimit(t *testing.T) {
	rules := model.DefaultRules()
	rules.MaxProjects = 2
	projects, _ := newTestServices(t, rules)

	mustCreateProject(t, projects, "Alpha")
	mustCreateProject(t, projects, "Beta")

	_, err := projects.CreateProject(context.Background(), "Gamma", "A first test project")
	if !errors.Is(err, model.ErrLimit) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if err.Error() != "Maximum number of projects (2) reached." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestEditProject(t *testing.T) {
	projects, _ := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")
	mustCreateProject(t, projects, "Beta")

	updated, err := projects.EditProject(ctx, alpha.ID, "ALPHA", "Renamed description")
	if err != nil {
		t.Fatalf("edit own name with different case: %v", err)
	}
	if updated.Name != "ALPHA" || updated.ID != alpha.ID {
		t.Fatalf("unexpected project %+v", updated)
	}

	if _, err := projects.EditProject(ctx, alpha.ID, "beta", "Renamed description"); !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	_, err = projects.EditProject(ctx, 999, "Gamma", "Renamed description")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "Project with ID '999' not found." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDeleteProjectRemovesTasks(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")

	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := projects.DeleteProject(ctx, alpha.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := tasks.GetTask(ctx, task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected task to be deleted with its project, got %v", err)
	}
	if err := projects.DeleteProject(ctx, alpha.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestValidateProjectExists(t *testing.T) {
	projects, _ := newTestServices(t, model.DefaultRules())

	err := projects.ValidateProjectExists(context.Background(), 7)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if errors.Is(err, model.ErrNotFound) {
		t.Fatalf("did not expect not found kind")
	}
	if err.Error() != "Project '7' does not exist." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestListProjectsWithTasks(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")
	mustCreateProject(t, projects, "Beta")

	for _, title := range []string{"First", "Second"} {
		if _, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: title}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	listing, err := projects.ListProjectsWithTasks(ctx)
	if err != nil {
		t.Fatalf("list projects with tasks: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(listing))
	}
	if len(listing[0].Tasks) != 2 || listing[0].Tasks[0].Title != "First" {
		t.Fatalf("unexpected first entry %+v", listing[0])
	}
	if len(listing[1].Tasks) != 0 {
		t.Fatalf("expected no tasks for second project, got %d", len(listing[1].Tasks))
	}
}

func TestCreateTaskDefaultsAndLimit(t *testing.T) {
	rules := model.DefaultRules()
	rules.MaxTasksPerProject = 1
	projects, tasks := newTestServices(t, rules)
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")

	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk", Description: "Buy milk from the corner store"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.StatusTodo {
		t.Fatalf("expected default status todo, got %q", task.Status)
	}

	_, err = tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy bread"})
	if !errors.Is(err, model.ErrLimit) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if err.Error() != "Maximum number of tasks per project (1) reached." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateTaskInvalidInput(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")

	cases := []struct {
		name  string
		input TaskInput
	}{
		{name: "short title", input: TaskInput{ProjectID: alpha.ID, Title: "ab"}},
		{name: "bad status", input: TaskInput{ProjectID: alpha.ID, Title: "Buy milk", Status: "someday"}},
		{name: "bad deadline", input: TaskInput{ProjectID: alpha.ID, Title: "Buy milk", Deadline: "01-01-2020"}},
		{name: "missing project", input: TaskInput{ProjectID: alpha.ID + 10, Title: "Buy milk"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tasks.CreateTask(ctx, tc.input); !errors.Is(err, model.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	list, err := tasks.ListTasks(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no tasks to be stored, got %d", len(list))
	}
}

func TestCreateTaskSkipsStoreWhenProjectMissing(t *testing.T) {
	store := &recordingStore{}
	checker := checkerFunc(func(ctx context.Context, id int64) error {
		return model.DefaultMessages().ProjectNotExistsError(id)
	})
	tasks := NewTaskService(store, checker, model.DefaultRules(), nil)

	if _, err := tasks.CreateTask(context.Background(), TaskInput{ProjectID: 3, Title: "Buy milk"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected store not to be reached, got %d calls", store.calls)
	}
}

func TestUpdateTask(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")

	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk", Deadline: "2020-01-01"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	updated, err := tasks.UpdateTask(ctx, task.ID, TaskUpdate{Title: "Buy oat milk", Description: "From the corner store", Status: "todo"})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != "Buy oat milk" || updated.Status != model.StatusTodo {
		t.Fatalf("unexpected task %+v", updated)
	}
	if model.FormatDate(updated.Deadline) != "2020-01-01" {
		t.Fatalf("expected empty deadline to keep the stored one, got %v", updated.Deadline)
	}

	updated, err = tasks.UpdateTask(ctx, task.ID, TaskUpdate{Title: "Buy oat milk", Status: "doing", Deadline: "2030-06-01"})
	if err != nil {
		t.Fatalf("update status and deadline: %v", err)
	}
	if updated.Status != model.StatusDoing || model.FormatDate(updated.Deadline) != "2030-06-01" {
		t.Fatalf("unexpected task %+v", updated)
	}

	updated, err = tasks.UpdateTask(ctx, task.ID, TaskUpdate{Title: "Buy oat milk", Status: "doing", ClearDeadline: true})
	if err != nil {
		t.Fatalf("clear deadline: %v", err)
	}
	if updated.Deadline != nil {
		t.Fatalf("expected deadline to be cleared")
	}

	_, err = tasks.UpdateTask(ctx, 999, TaskUpdate{Title: "Buy oat milk"})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "Task with ID '999' not found." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if _, err := tasks.UpdateTask(ctx, task.ID, TaskUpdate{Title: "x", Status: "todo"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTaskRequiresValidStatus(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")

	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk", Status: "doing"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	for _, status := range []string{"", "   ", "archived"} {
		_, err := tasks.UpdateTask(ctx, task.ID, TaskUpdate{Title: "Buy oat milk", Status: status})
		if !errors.Is(err, model.ErrValidation) {
			t.Fatalf("status %q: expected validation error, got %v", status, err)
		}
	}

	stored, err := tasks.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Title != "Buy milk" || stored.Status != model.StatusDoing {
		t.Fatalf("expected task to be unchanged, got %+v", stored)
	}
}

func TestChangeStatus(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")
	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	for _, status := range []string{"done", "todo", "doing"} {
		updated, err := tasks.ChangeStatus(ctx, task.ID, status)
		if err != nil {
			t.Fatalf("change status to %s: %v", status, err)
		}
		if string(updated.Status) != status {
			t.Fatalf("expected %s, got %q", status, updated.Status)
		}
		if updated.Title != "Buy milk" {
			t.Fatalf("expected title to be kept, got %q", updated.Title)
		}
	}

	if _, err := tasks.ChangeStatus(ctx, task.ID, "archived"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := tasks.ChangeStatus(ctx, 999, "done"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChangeStatusIgnoresCaseAndSpace(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")
	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	updated, err := tasks.ChangeStatus(ctx, task.ID, "DONE")
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if updated.Status != model.StatusDone {
		t.Fatalf("expected stored status %q, got %q", model.StatusDone, updated.Status)
	}

	updated, err = tasks.ChangeStatus(ctx, task.ID, " Doing ")
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if updated.Status != model.StatusDoing {
		t.Fatalf("expected stored status %q, got %q", model.StatusDoing, updated.Status)
	}
}

func TestDeleteTaskAndProjectScope(t *testing.T) {
	projects, tasks := newTestServices(t, model.DefaultRules())
	ctx := context.Background()
	alpha := mustCreateProject(t, projects, "Alpha")
	beta := mustCreateProject(t, projects, "Beta")
	task, err := tasks.CreateTask(ctx, TaskInput{ProjectID: alpha.ID, Title: "Buy milk"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := tasks.GetProjectTask(ctx, beta.ID, task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected task to be hidden from other project, got %v", err)
	}
	if _, err := tasks.GetProjectTask(ctx, alpha.ID, task.ID); err != nil {
		t.Fatalf("get project task: %v", err)
	}

	if err := tasks.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := tasks.DeleteTask(ctx, task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestInfrastructureErrorsPassThrough(t *testing.T) {
	boom := model.Infrastructure("list projects", errors.New("disk I/O error"))
	store := &recordingStore{err: boom}
	projects := NewProjectService(store, model.DefaultRules(), nil)

	_, err := projects.CreateProject(context.Background(), "Alpha", "A first test project")
	if !errors.Is(err, model.ErrInfrastructure) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	if model.IsDomain(err) {
		t.Fatalf("infrastructure failure must not look like a domain error")
	}
}

type checkerFunc func(ctx context.Context, id int64) error

func (f checkerFunc) ValidateProjectExists(ctx context.Context, id int64) error {
	return f(ctx, id)
}

// recordingStore counts every storage access and fails each one with err.
type recordingStore struct {
	calls int
	err   error
}

func (s *recordingStore) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(repository.Repositories{Projects: s.Projects(), Tasks: s.Tasks()})
}

func (s *recordingStore) Projects() repository.ProjectRepository {
	s.calls++
	return nil
}

func (s *recordingStore) Tasks() repository.TaskRepository {
	s.calls++
	return nil
}
