package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const DateLayout = "2006-01-02"

type Project struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

type Task struct {
	ID          int64
	ProjectID   int64
	Title       string
	Description string
	Status      Status
	Deadline    *time.Time
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

// ProjectWithTasks is one entry of the combined project/task listing.
type ProjectWithTasks struct {
	Project Project
	Tasks   []Task
}

// ProjectChanges is merged onto a stored project. Nil fields keep the stored value.
type ProjectChanges struct {
	Name        *string
	Description *string
}

// TaskChanges is merged onto a stored task. Nil fields keep the stored value;
// ClearDeadline removes the deadline and wins over Deadline.
type TaskChanges struct {
	Title         *string
	Description   *string
	Status        *Status
	Deadline      *time.Time
	ClearDeadline bool
	ClosedAt      *time.Time
}

// NewProject validates and trims the fields of a project that has not been stored yet.
func NewProject(name, description string, rules Rules) (Project, error) {
	if err := rules.ValidateProjectFields(name, description); err != nil {
		return Project{}, err
	}
	return Project{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}, nil
}

// NewTask validates a task for the given project. An empty status means the default
// status, an empty deadline means no deadline.
func NewTask(projectID int64, title, description, status, deadline string, rules Rules) (Task, error) {
	if err := rules.ValidateTaskFields(title, description); err != nil {
		return Task{}, err
	}

	due, err := ParseDeadline(deadline, rules.Messages)
	if err != nil {
		return Task{}, err
	}

	if strings.TrimSpace(status) == "" {
		status = string(StatusTodo)
	}
	st, err := rules.ValidateStatus(status)
	if err != nil {
		return Task{}, err
	}

	return Task{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      st,
		Deadline:    due,
	}, nil
}

// IsOverdue reports whether the task would be picked up by an auto-close run on asOf.
func (t Task) IsOverdue(asOf time.Time) bool {
	if t.Deadline == nil || t.Status == StatusDone {
		return false
	}
	return t.Deadline.Before(DateOf(asOf))
}

// NameKey is the form used to compare project names for uniqueness.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// DateOf truncates t to midnight UTC of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
