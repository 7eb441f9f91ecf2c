package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/Joseda-hg/tasktracker/internal/db"
	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/service"
)

func newTestUI(t *testing.T) *UI {
	t.Helper()
	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	store := db.NewStore(sqlDB)
	rules := model.DefaultRules()
	projects := service.NewProjectService(store, rules, nil)
	tasks := service.NewTaskService(store, projects, rules, nil)

	ui := newUI(projects, tasks, nil)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return ui
}

func fillForm(t *testing.T, ui *UI, values ...string) {
	t.Helper()
	if ui.form == nil {
		t.Fatalf("expected an open form")
	}
	for i, value := range values {
		if i >= len(ui.form.fields) {
			t.Fatalf("form has only %d fields", len(ui.form.fields))
		}
		ui.form.fields[i].Value = value
	}
}

func submit(t *testing.T, ui *UI) {
	t.Helper()
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit form: %v", err)
	}
}

func TestCreateProjectFromForm(t *testing.T) {
	ui := newTestUI(t)

	if err := ui.createProject(nil, nil); err != nil {
		t.Fatalf("create project: %v", err)
	}
	fillForm(t, ui, "Alpha", "First project")
	submit(t, ui)

	if ui.form != nil {
		t.Fatalf("expected form to close, status %q", ui.status)
	}
	if len(ui.projectList) != 1 || ui.projectList[0].Name != "Alpha" {
		t.Fatalf("unexpected projects %+v", ui.projectList)
	}
	if !strings.Contains(ui.status, "Alpha") {
		t.Fatalf("expected confirmation, got %q", ui.status)
	}
}

func TestFormErrorKeepsFormOpen(t *testing.T) {
	ui := newTestUI(t)

	_ = ui.createProject(nil, nil)
	fillForm(t, ui, "Alpha", "First project")
	submit(t, ui)

	_ = ui.createProject(nil, nil)
	fillForm(t, ui, "alpha", "Second project")
	submit(t, ui)

	if ui.form == nil {
		t.Fatalf("expected form to stay open after a duplicate name")
	}
	if ui.status == "" {
		t.Fatalf("expected an error on the status line")
	}
	if len(ui.projectList) != 1 {
		t.Fatalf("expected one project, got %d", len(ui.projectList))
	}

	if err := ui.cancelForm(nil, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ui.form != nil || ui.status != "" {
		t.Fatalf("expected cancel to clear form and status")
	}
}

func TestMenuKeysIgnoredWhileFormOpen(t *testing.T) {
	ui := newTestUI(t)

	_ = ui.createProject(nil, nil)
	form := ui.form
	if err := ui.toggleOverview(nil, nil); err != nil {
		t.Fatalf("toggle overview: %v", err)
	}
	if ui.showOverview {
		t.Fatalf("expected menu key to be ignored while editing")
	}
	if ui.form != form {
		t.Fatalf("expected form to stay the same")
	}
}

func TestEditAndDeleteProject(t *testing.T) {
	ui := newTestUI(t)

	_ = ui.createProject(nil, nil)
	fillForm(t, ui, "Alpha", "First project")
	submit(t, ui)

	if err := ui.editProject(nil, nil); err != nil {
		t.Fatalf("edit project: %v", err)
	}
	if ui.form.value(fieldName) != "Alpha" {
		t.Fatalf("expected form prefilled, got %q", ui.form.value(fieldName))
	}
	fillForm(t, ui, "Beta", "Renamed project")
	submit(t, ui)
	if ui.projectList[0].Name != "Beta" || ui.projectList[0].Description != "Renamed project" {
		t.Fatalf("unexpected project %+v", ui.projectList[0])
	}

	_ = ui.createTask(nil, nil)
	fillForm(t, ui, "Write docs")
	submit(t, ui)

	if err := ui.deleteProject(nil, nil); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if len(ui.projectList) != 0 || len(ui.taskList) != 0 {
		t.Fatalf("expected project and tasks to be gone")
	}
	if err := ui.editProject(nil, nil); err != nil {
		t.Fatalf("edit without selection: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected no form without a selected project")
	}
}

func TestTaskLifecycleFromMenu(t *testing.T) {
	ui := newTestUI(t)

	if err := ui.createTask(nil, nil); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected task form to require a project")
	}

	_ = ui.createProject(nil, nil)
	fillForm(t, ui, "Alpha", "Groceries and errands")
	submit(t, ui)

	_ = ui.createTask(nil, nil)
	fillForm(t, ui, "Buy milk", "Two litres", "todo", "2030-05-01")
	submit(t, ui)
	if ui.form != nil {
		t.Fatalf("expected task form to close, status %q", ui.status)
	}

	if err := ui.listTasks(nil, nil); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if ui.focus != viewTasks || len(ui.taskList) != 1 {
		t.Fatalf("expected task pane with one task, focus %s tasks %d", ui.focus, len(ui.taskList))
	}
	task := ui.taskList[0]
	if model.FormatDate(task.Deadline) != "2030-05-01" {
		t.Fatalf("unexpected deadline %v", task.Deadline)
	}

	_ = ui.changeStatus(nil, nil)
	ui.form.fields[0].Value = cycleChoice(ui.form.fields[0].Choices, ui.form.fields[0].Value, 1)
	submit(t, ui)
	if ui.taskList[0].Status != model.StatusDoing {
		t.Fatalf("expected status doing, got %s", ui.taskList[0].Status)
	}

	_ = ui.editTask(nil, nil)
	fillForm(t, ui, "Buy oat milk", "Two litres", "done", clearDeadlineValue)
	submit(t, ui)
	updated := ui.taskList[0]
	if updated.Title != "Buy oat milk" || updated.Status != model.StatusDone || updated.Deadline != nil {
		t.Fatalf("unexpected task after edit %+v", updated)
	}

	if err := ui.deleteTask(nil, nil); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if len(ui.taskList) != 0 {
		t.Fatalf("expected task to be deleted")
	}
}

func TestInvalidDeadlineShowsMessage(t *testing.T) {
	ui := newTestUI(t)

	_ = ui.createProject(nil, nil)
	fillForm(t, ui, "Alpha", "Groceries and errands")
	submit(t, ui)

	_ = ui.createTask(nil, nil)
	fillForm(t, ui, "Buy milk", "", "todo", "05/01/2030")
	submit(t, ui)

	if ui.form == nil || ui.status == "" {
		t.Fatalf("expected validation error with form open, status %q", ui.status)
	}
}

func TestNavigationReloadsTasksPerProject(t *testing.T) {
	ui := newTestUI(t)
	ctx := context.Background()

	alpha, err := ui.projects.CreateProject(ctx, "Alpha", "Groceries and errands")
	if err != nil {
		t.Fatalf("create alpha: %v", err)
	}
	if _, err := ui.projects.CreateProject(ctx, "Beta", "Work related things"); err != nil {
		t.Fatalf("create beta: %v", err)
	}
	if _, err := ui.tasks.CreateTask(ctx, service.TaskInput{ProjectID: alpha.ID, Title: "Only in alpha"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(ui.taskList) != 1 {
		t.Fatalf("expected alpha tasks, got %d", len(ui.taskList))
	}
	if err := ui.moveDown(nil, nil); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if ui.currentProject().Name != "Beta" || len(ui.taskList) != 0 {
		t.Fatalf("expected beta with no tasks")
	}
	if err := ui.moveDown(nil, nil); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if ui.selectedProject != 1 {
		t.Fatalf("expected selection to stop at the last project")
	}
	if err := ui.moveUp(nil, nil); err != nil {
		t.Fatalf("move up: %v", err)
	}
	if len(ui.taskList) != 1 {
		t.Fatalf("expected alpha tasks again")
	}

	if err := ui.toggleOverview(nil, nil); err != nil {
		t.Fatalf("toggle overview: %v", err)
	}
	if len(ui.overview) != 2 || len(ui.overview[0].Tasks) != 1 {
		t.Fatalf("unexpected overview %+v", ui.overview)
	}
	lines := overviewLines(ui.overview)
	if !strings.Contains(strings.Join(lines, "\n"), "Only in alpha") {
		t.Fatalf("expected task in overview, got %v", lines)
	}
}

func TestCycleChoiceWraps(t *testing.T) {
	choices := []string{"todo", "doing", "done"}
	if got := cycleChoice(choices, "done", 1); got != "todo" {
		t.Fatalf("expected wrap to todo, got %s", got)
	}
	if got := cycleChoice(choices, "todo", -1); got != "done" {
		t.Fatalf("expected wrap to done, got %s", got)
	}
	if got := cycleChoice(choices, "DOING", 1); got != "done" {
		t.Fatalf("expected case-insensitive match, got %s", got)
	}
}
