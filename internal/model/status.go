package model

import "strings"

// Status is a task state. The accepted set comes from Rules.Statuses; the three
// constants below are the defaults and StatusDone is always the closed state.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

func DefaultStatuses() []Status {
	return []Status{StatusTodo, StatusDoing, StatusDone}
}

func normalizeStatus(value string) Status {
	return Status(strings.ToLower(strings.TrimSpace(value)))
}

func joinStatuses(statuses []Status) string {
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, string(status))
	}
	return strings.Join(parts, ", ")
}
