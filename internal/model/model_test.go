package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateLengthBounds(t *testing.T) {
	bounds := Bounds{Min: 3, Max: 5}
	msgs := DefaultMessages()

	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "below min", value: "ab", wantErr: true},
		{name: "below min after trim", value: "  ab   ", wantErr: true},
		{name: "exactly min", value: "abc"},
		{name: "exactly max", value: "abcde"},
		{name: "above max", value: "abcdef", wantErr: true},
		{name: "runes not bytes", value: "ééééé"},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLength("Project name", tc.value, bounds, msgs)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q", tc.value)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.value, err)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateLengthMessageNamesFieldAndBound(t *testing.T) {
	err := ValidateLength("Task title", "x", Bounds{Min: 3}, DefaultMessages())
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Task title must have at least 3 characters." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = ValidateLength("Task title", strings.Repeat("x", 11), Bounds{Max: 10}, DefaultMessages())
	if err == nil || err.Error() != "Task title must have at most 10 characters." {
		t.Fatalf("unexpected max error %v", err)
	}
}

func TestValidateLengthWithoutBounds(t *testing.T) {
	if err := ValidateLength("Description", "", Bounds{}, DefaultMessages()); err != nil {
		t.Fatalf("expected no error without bounds, got %v", err)
	}
}

func TestParseDeadline(t *testing.T) {
	msgs := DefaultMessages()

	due, err := ParseDeadline(" 2020-01-01 ", msgs)
	if err != nil {
		t.Fatalf("parse deadline: %v", err)
	}
	if due == nil || FormatDate(due) != "2020-01-01" {
		t.Fatalf("expected 2020-01-01, got %v", due)
	}

	due, err = ParseDeadline("", msgs)
	if err != nil || due != nil {
		t.Fatalf("expected no deadline, got %v %v", due, err)
	}

	for _, bad := range []string{"01/01/2020", "2020-13-01", "tomorrow"} {
		if _, err := ParseDeadline(bad, msgs); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
}

func TestValidateStatus(t *testing.T) {
	rules := DefaultRules()

	status, err := rules.ValidateStatus(" Doing ")
	if err != nil {
		t.Fatalf("validate status: %v", err)
	}
	if status != StatusDoing {
		t.Fatalf("expected doing, got %q", status)
	}

	_, err = rules.ValidateStatus("eventually")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "todo, doing, done") {
		t.Fatalf("expected valid statuses in message, got %q", err.Error())
	}
}

func TestConfiguredStatuses(t *testing.T) {
	rules := Rules{Statuses: []Status{"Open", "blocked", "done"}}.WithDefaults()

	if _, err := rules.ValidateStatus("blocked"); err != nil {
		t.Fatalf("expected configured status to be valid: %v", err)
	}
	if _, err := rules.ValidateStatus("doing"); err == nil {
		t.Fatalf("expected default status to be rejected when not configured")
	}
	if _, err := rules.ValidateStatus("open"); err != nil {
		t.Fatalf("expected configured statuses to be normalized: %v", err)
	}
}

func TestNewProjectTrims(t *testing.T) {
	project, err := NewProject("  Alpha ", " A first test project ", DefaultRules())
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	if project.Name != "Alpha" || project.Description != "A first test project" {
		t.Fatalf("expected trimmed fields, got %+v", project)
	}

	if _, err := NewProject("Al", "A first test project", DefaultRules()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for short name, got %v", err)
	}
	if _, err := NewProject("Alpha", "short", DefaultRules()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for short description, got %v", err)
	}
}

func TestNewTaskDefaults(t *testing.T) {
	task, err := NewTask(7, "Buy milk", "Buy milk from the corner store", "", "2020-01-01", DefaultRules())
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Status != StatusTodo {
		t.Fatalf("expected default status todo, got %q", task.Status)
	}
	if task.ProjectID != 7 {
		t.Fatalf("expected project id 7, got %d", task.ProjectID)
	}
	if FormatDate(task.Deadline) != "2020-01-01" {
		t.Fatalf("expected deadline, got %v", task.Deadline)
	}

	if _, err := NewTask(7, "Buy milk", "", "later", "", DefaultRules()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
	if _, err := NewTask(7, "Buy milk", "", "todo", "2020/01/01", DefaultRules()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid deadline error, got %v", err)
	}
}

func TestTaskIsOverdue(t *testing.T) {
	due := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

	if !(Task{Status: StatusTodo, Deadline: &due}).IsOverdue(asOf) {
		t.Fatalf("expected open task with past deadline to be overdue")
	}
	if (Task{Status: StatusDone, Deadline: &due}).IsOverdue(asOf) {
		t.Fatalf("expected done task to never be overdue")
	}
	if (Task{Status: StatusTodo}).IsOverdue(asOf) {
		t.Fatalf("expected task without deadline to never be overdue")
	}
	if (Task{Status: StatusTodo, Deadline: &due}).IsOverdue(due.Add(10 * time.Hour)) {
		t.Fatalf("expected task due today not to be overdue")
	}
}

func TestNameKeyFoldsCase(t *testing.T) {
	if NameKey(" Alpha") != NameKey("ALPHA ") {
		t.Fatalf("expected names differing by case to share a key")
	}
	if NameKey("École") != NameKey("éCOLE") {
		t.Fatalf("expected non-ASCII letters to fold")
	}
}

func TestErrorKinds(t *testing.T) {
	err := DefaultMessages().ProjectNotFoundError(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found kind")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("did not expect validation kind")
	}
	if err.Error() != "Project with ID '42' not found." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	infra := Infrastructure("list projects", errors.New("connection refused"))
	if !errors.Is(infra, ErrInfrastructure) || IsDomain(infra) {
		t.Fatalf("expected infrastructure error outside the domain kinds")
	}
}

func TestFormat(t *testing.T) {
	got := Format("{a} and {b} and {a}", "a", "x", "b", "y")
	if got != "x and y and x" {
		t.Fatalf("unexpected format result %q", got)
	}
}
