package model

import (
	"strconv"
	"strings"
)

// Bounds is an inclusive rune-count range. Zero disables a side.
type Bounds struct {
	Min int `json:"min" mapstructure:"min"`
	Max int `json:"max" mapstructure:"max"`
}

// Messages holds the user-facing templates. Placeholders are written as {name}.
type Messages struct {
	TooShort         string `json:"too_short" mapstructure:"too_short"`
	TooLong          string `json:"too_long" mapstructure:"too_long"`
	DuplicateProject string `json:"duplicate_project" mapstructure:"duplicate_project"`
	MaxProjects      string `json:"max_projects" mapstructure:"max_projects"`
	MaxTasks         string `json:"max_tasks" mapstructure:"max_tasks"`
	ProjectNotFound  string `json:"project_not_found" mapstructure:"project_not_found"`
	ProjectNotExists string `json:"project_not_exists" mapstructure:"project_not_exists"`
	TaskNotFound     string `json:"task_not_found" mapstructure:"task_not_found"`
	TaskNotInProject string `json:"task_not_in_project" mapstructure:"task_not_in_project"`
	InvalidStatus    string `json:"invalid_status" mapstructure:"invalid_status"`
	InvalidDeadline  string `json:"invalid_deadline" mapstructure:"invalid_deadline"`
}

// Rules is the injected business configuration: limits, field bounds, statuses and messages.
type Rules struct {
	MaxProjects        int      `json:"max_projects" mapstructure:"max_projects"`
	MaxTasksPerProject int      `json:"max_tasks_per_project" mapstructure:"max_tasks_per_project"`
	ProjectName        Bounds   `json:"project_name" mapstructure:"project_name"`
	ProjectDescription Bounds   `json:"project_description" mapstructure:"project_description"`
	TaskTitle          Bounds   `json:"task_title" mapstructure:"task_title"`
	TaskDescription    Bounds   `json:"task_description" mapstructure:"task_description"`
	Statuses           []Status `json:"statuses" mapstructure:"statuses"`
	Messages           Messages `json:"messages" mapstructure:"messages"`
}

func DefaultMessages() Messages {
	return Messages{
		TooShort:         "{field} must have at least {min} characters.",
		TooLong:          "{field} must have at most {max} characters.",
		DuplicateProject: "Project name '{name}' already exists.",
		MaxProjects:      "Maximum number of projects ({max}) reached.",
		MaxTasks:         "Maximum number of tasks per project ({max}) reached.",
		ProjectNotFound:  "Project with ID '{project_id}' not found.",
		ProjectNotExists: "Project '{project_id}' does not exist.",
		TaskNotFound:     "Task with ID '{task_id}' not found.",
		TaskNotInProject: "Task '{task_id}' not found in project '{project_id}'.",
		InvalidStatus:    "Invalid status '{status}'. Valid statuses: {valid_statuses}.",
		InvalidDeadline:  "Deadline must be a date in YYYY-MM-DD format.",
	}
}

func DefaultRules() Rules {
	return Rules{
		MaxProjects:        5,
		MaxTasksPerProject: 10,
		ProjectName:        Bounds{Min: 3, Max: 100},
		ProjectDescription: Bounds{Min: 10, Max: 500},
		TaskTitle:          Bounds{Min: 3, Max: 100},
		TaskDescription:    Bounds{Min: 0, Max: 500},
		Statuses:           DefaultStatuses(),
		Messages:           DefaultMessages(),
	}
}

// WithDefaults fills every zero field from DefaultRules. Bounds are taken as a whole.
func (r Rules) WithDefaults() Rules {
	def := DefaultRules()
	if r.MaxProjects == 0 {
		r.MaxProjects = def.MaxProjects
	}
	if r.MaxTasksPerProject == 0 {
		r.MaxTasksPerProject = def.MaxTasksPerProject
	}
	if r.ProjectName == (Bounds{}) {
		r.ProjectName = def.ProjectName
	}
	if r.ProjectDescription == (Bounds{}) {
		r.ProjectDescription = def.ProjectDescription
	}
	if r.TaskTitle == (Bounds{}) {
		r.TaskTitle = def.TaskTitle
	}
	if r.TaskDescription == (Bounds{}) {
		r.TaskDescription = def.TaskDescription
	}
	if len(r.Statuses) == 0 {
		r.Statuses = def.Statuses
	} else {
		statuses := make([]Status, 0, len(r.Statuses))
		for _, status := range r.Statuses {
			if normalized := normalizeStatus(string(status)); normalized != "" {
				statuses = append(statuses, normalized)
			}
		}
		r.Statuses = statuses
	}
	r.Messages = r.Messages.withDefaults(def.Messages)
	return r
}

func (m Messages) withDefaults(def Messages) Messages {
	fill := func(value *string, fallback string) {
		if strings.TrimSpace(*value) == "" {
			*value = fallback
		}
	}
	fill(&m.TooShort, def.TooShort)
	fill(&m.TooLong, def.TooLong)
	fill(&m.DuplicateProject, def.DuplicateProject)
	fill(&m.MaxProjects, def.MaxProjects)
	fill(&m.MaxTasks, def.MaxTasks)
	fill(&m.ProjectNotFound, def.ProjectNotFound)
	fill(&m.ProjectNotExists, def.ProjectNotExists)
	fill(&m.TaskNotFound, def.TaskNotFound)
	fill(&m.TaskNotInProject, def.TaskNotInProject)
	fill(&m.InvalidStatus, def.InvalidStatus)
	fill(&m.InvalidDeadline, def.InvalidDeadline)
	return m
}

// Format replaces {key} placeholders. Arguments are key/value pairs.
func Format(template string, args ...string) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func (m Messages) ProjectNotFoundError(id int64) error {
	return NotFoundError(Format(m.ProjectNotFound, "project_id", formatID(id)))
}

func (m Messages) ProjectNotExistsError(id int64) error {
	return ValidationError(Format(m.ProjectNotExists, "project_id", formatID(id)))
}

func (m Messages) TaskNotFoundError(id int64) error {
	return NotFoundError(Format(m.TaskNotFound, "task_id", formatID(id)))
}

func (m Messages) TaskNotInProjectError(taskID, projectID int64) error {
	return NotFoundError(Format(m.TaskNotInProject, "task_id", formatID(taskID), "project_id", formatID(projectID)))
}

func (m Messages) DuplicateProjectError(name string) error {
	return DuplicateError(Format(m.DuplicateProject, "name", strings.TrimSpace(name)))
}

func (m Messages) MaxProjectsError(max int) error {
	return LimitError(Format(m.MaxProjects, "max", strconv.Itoa(max)))
}

func (m Messages) MaxTasksError(max int) error {
	return LimitError(Format(m.MaxTasks, "max", strconv.Itoa(max), "max_tasks", strconv.Itoa(max)))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
