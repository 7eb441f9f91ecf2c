package tui

import (
	"strings"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/service"
)

type formKind int

const (
	formCreateProject formKind = iota
	formEditProject
	formCreateTask
	formEditTask
	formChangeStatus
)

type formField struct {
	Label string
	Value string
	// Choices turns the field into a selector cycled with space and the arrow keys.
	Choices []string
}

const (
	fieldName = iota
	fieldProjectDescription
)

const (
	fieldTitle = iota
	fieldTaskDescription
	fieldStatus
	fieldDeadline
)

// clearDeadlineValue in the deadline field removes the stored deadline.
const clearDeadlineValue = "-"

type formState struct {
	kind      formKind
	projectID int64
	taskID    int64
	fields    []formField
	index     int
}

func (f *formState) title() string {
	switch f.kind {
	case formEditProject:
		return "Edit Project"
	case formCreateTask:
		return "New Task"
	case formEditTask:
		return "Edit Task"
	case formChangeStatus:
		return "Change Status"
	default:
		return "New Project"
	}
}

func (f *formState) value(index int) string {
	if index < 0 || index >= len(f.fields) {
		return ""
	}
	return f.fields[index].Value
}

func projectForm(project *model.Project) *formState {
	form := &formState{
		kind: formCreateProject,
		fields: []formField{
			{Label: "Name"},
			{Label: "Description"},
		},
	}
	if project != nil {
		form.kind = formEditProject
		form.projectID = project.ID
		form.fields[fieldName].Value = project.Name
		form.fields[fieldProjectDescription].Value = project.Description
	}
	return form
}

func taskForm(projectID int64, task *model.Task, statuses []string) *formState {
	form := &formState{
		kind:      formCreateTask,
		projectID: projectID,
		fields: []formField{
			{Label: "Title"},
			{Label: "Description"},
			{Label: "Status (space/←→)", Value: string(model.StatusTodo), Choices: statuses},
			{Label: "Deadline (YYYY-MM-DD)"},
		},
	}
	if task != nil {
		form.kind = formEditTask
		form.taskID = task.ID
		form.fields[fieldTitle].Value = task.Title
		form.fields[fieldTaskDescription].Value = task.Description
		form.fields[fieldStatus].Value = string(task.Status)
		form.fields[fieldDeadline].Label = "Deadline (YYYY-MM-DD, - clears)"
		form.fields[fieldDeadline].Value = model.FormatDate(task.Deadline)
	}
	return form
}

func statusForm(task model.Task, statuses []string) *formState {
	return &formState{
		kind:      formChangeStatus,
		projectID: task.ProjectID,
		taskID:    task.ID,
		fields: []formField{
			{Label: "Status (space/←→)", Value: string(task.Status), Choices: statuses},
		},
	}
}

func (f *formState) taskInput() service.TaskInput {
	return service.TaskInput{
		ProjectID:   f.projectID,
		Title:       f.value(fieldTitle),
		Description: f.value(fieldTaskDescription),
		Status:      f.value(fieldStatus),
		Deadline:    f.value(fieldDeadline),
	}
}

func (f *formState) taskUpdate() service.TaskUpdate {
	update := service.TaskUpdate{
		Title:       f.value(fieldTitle),
		Description: f.value(fieldTaskDescription),
		Status:      f.value(fieldStatus),
		Deadline:    f.value(fieldDeadline),
	}
	if strings.TrimSpace(update.Deadline) == clearDeadlineValue {
		update.Deadline = ""
		update.ClearDeadline = true
	}
	return update
}

func statusNames(statuses []model.Status) []string {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return names
}

func cycleChoice(choices []string, current string, delta int) string {
	if len(choices) == 0 {
		return current
	}
	value := strings.TrimSpace(strings.ToLower(current))
	index := 0
	for i, choice := range choices {
		if choice == value {
			index = i
			break
		}
	}
	index = (index + delta + len(choices)) % len(choices)
	return choices[index]
}
