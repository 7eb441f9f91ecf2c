package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

func formatProjectSummary(project model.Project) string {
	return fmt.Sprintf("#%d %s", project.ID, project.Name)
}

func formatTaskSummary(task model.Task) string {
	due := "no deadline"
	if task.Deadline != nil {
		due = "due " + model.FormatDate(task.Deadline)
	}
	return fmt.Sprintf("#%d %s | %s | %s", task.ID, task.Title, task.Status, due)
}

func projectDetailLines(project model.Project, taskCount int) []string {
	return []string{
		project.Name,
		fmt.Sprintf("ID: %d", project.ID),
		fmt.Sprintf("Created: %s", project.CreatedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Tasks: %d", taskCount),
		"",
		project.Description,
	}
}

func taskDetailLines(task model.Task, now time.Time) []string {
	due := "n/a"
	if task.Deadline != nil {
		due = model.FormatDate(task.Deadline)
		if task.IsOverdue(now) {
			due += " (overdue)"
		}
	}
	closed := "n/a"
	if task.ClosedAt != nil {
		closed = task.ClosedAt.Local().Format("2006-01-02 15:04")
	}

	return []string{
		task.Title,
		fmt.Sprintf("ID: %d | Project: %d", task.ID, task.ProjectID),
		fmt.Sprintf("Status: %s", task.Status),
		fmt.Sprintf("Deadline: %s", due),
		fmt.Sprintf("Created: %s", task.CreatedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Auto-closed: %s", closed),
		"",
		task.Description,
	}
}

// overviewLines renders every project followed by its indented tasks.
func overviewLines(listing []model.ProjectWithTasks) []string {
	if len(listing) == 0 {
		return []string{"No projects yet. Press 1 to create one."}
	}

	lines := make([]string, 0, len(listing)*3)
	for _, entry := range listing {
		lines = append(lines, fmt.Sprintf("%s - %s", formatProjectSummary(entry.Project), entry.Project.Description))
		if len(entry.Tasks) == 0 {
			lines = append(lines, "    (no tasks)")
			continue
		}
		for _, task := range entry.Tasks {
			lines = append(lines, "    "+formatTaskSummary(task))
		}
	}
	return lines
}

func menuText() string {
	return strings.Join([]string{
		"1 new project | 2 projects | 3 edit project | 4 delete project | 5 new task | 6 tasks",
		"7 edit task | 8 change status | 9 delete task | 0 all projects with tasks | tab focus | q quit",
	}, "\n")
}
