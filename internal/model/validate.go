package model

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidateLength trims value and checks its rune count against bounds.
func ValidateLength(field, value string, bounds Bounds, msgs Messages) error {
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	if bounds.Min > 0 && length < bounds.Min {
		return ValidationError(Format(msgs.TooShort, "field", field, "min", strconv.Itoa(bounds.Min)))
	}
	if bounds.Max > 0 && length > bounds.Max {
		return ValidationError(Format(msgs.TooLong, "field", field, "max", strconv.Itoa(bounds.Max)))
	}
	return nil
}

// ParseDeadline parses a YYYY-MM-DD date. An empty value is no deadline.
func ParseDeadline(value string, msgs Messages) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return nil, ValidationError(msgs.InvalidDeadline)
	}
	return &parsed, nil
}

func (r Rules) ValidateStatus(value string) (Status, error) {
	status := normalizeStatus(value)
	for _, allowed := range r.Statuses {
		if status == allowed {
			return status, nil
		}
	}
	return "", ValidationError(Format(r.Messages.InvalidStatus,
		"status", strings.TrimSpace(value),
		"valid_statuses", joinStatuses(r.Statuses),
	))
}

func (r Rules) ValidateProjectFields(name, description string) error {
	if err := ValidateLength("Project name", name, r.ProjectName, r.Messages); err != nil {
		return err
	}
	return ValidateLength("Project description", description, r.ProjectDescription, r.Messages)
}

func (r Rules) ValidateTaskFields(title, description string) error {
	if err := ValidateLength("Task title", title, r.TaskTitle, r.Messages); err != nil {
		return err
	}
	return ValidateLength("Task description", description, r.TaskDescription, r.Messages)
}
