package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlc "github.com/Joseda-hg/tasktracker/internal/db/sqlc"
	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	DB      *sql.DB
	Queries *sqlc.Queries

	now func() time.Time
}

// atomicFunc runs fn so that all of its statements commit or fail together.
type atomicFunc func(ctx context.Context, fn func(q *sqlc.Queries) error) error

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: sqlc.New(db), now: time.Now}
}

// SetClock replaces the time source used for created_at.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Projects() repository.ProjectRepository {
	return &projectRepo{q: s.Queries, atomic: s.inTx, now: s.now}
}

func (s *Store) Tasks() repository.TaskRepository {
	return &taskRepo{q: s.Queries, atomic: s.inTx, now: s.now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return s.inTx(ctx, func(q *sqlc.Queries) error {
		bound := func(_ context.Context, fn func(q *sqlc.Queries) error) error {
			return fn(q)
		}
		return fn(repository.Repositories{
			Projects: &projectRepo{q: q, atomic: bound, now: s.now},
			Tasks:    &taskRepo{q: q, atomic: bound, now: s.now},
		})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Infrastructure("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return model.Infrastructure("commit transaction", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type projectRepo struct {
	q      *sqlc.Queries
	atomic atomicFunc
	now    func() time.Time
}

func (r *projectRepo) ListAll(ctx context.Context) ([]model.Project, error) {
	rows, err := r.q.ListProjects(ctx)
	if err != nil {
		return nil, model.Infrastructure("list projects", err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, mapProject(row))
	}
	return projects, nil
}

func (r *projectRepo) GetByID(ctx context.Context, id int64) (model.Project, error) {
	row, err := r.q.GetProject(ctx, id)
	if err != nil {
		return model.Project{}, projectError("get project", id, err)
	}
	return mapProject(row), nil
}

func (r *projectRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.q.CountProjects(ctx)
	if err != nil {
		return 0, model.Infrastructure("count projects", err)
	}
	return count, nil
}

func (r *projectRepo) Create(ctx context.Context, project model.Project) (model.Project, error) {
	var created model.Project
	err := r.atomic(ctx, func(q *sqlc.Queries) error {
		id, err := q.CreateProject(ctx, sqlc.CreateProjectParams{
			Name:        project.Name,
			Description: project.Description,
			CreatedAt:   r.now().UTC(),
		})
		if err != nil {
			return projectError("create project", 0, err)
		}

		row, err := q.GetProject(ctx, id)
		if err != nil {
			return projectError("reload project", id, err)
		}
		created = mapProject(row)
		return nil
	})
	return created, err
}

func (r *projectRepo) Update(ctx context.Context, id int64, changes model.ProjectChanges) (model.Project, error) {
	var updated model.Project
	err := r.atomic(ctx, func(q *sqlc.Queries) error {
		affected, err := q.UpdateProject(ctx, sqlc.UpdateProjectParams{
			Name:        nullString(changes.Name),
			Description: nullString(changes.Description),
			ID:          id,
		})
		if err != nil {
			return projectError("update project", id, err)
		}
		if affected == 0 {
			return fmt.Errorf("project %d: %w", id, model.ErrNotFound)
		}

		row, err := q.GetProject(ctx, id)
		if err != nil {
			return projectError("reload project", id, err)
		}
		updated = mapProject(row)
		return nil
	})
	return updated, err
}

func (r *projectRepo) Delete(ctx context.Context, id int64) error {
	affected, err := r.q.DeleteProject(ctx, id)
	if err != nil {
		return projectError("delete project", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	}
	return nil
}

type taskRepo struct {
	q      *sqlc.Queries
	atomic atomicFunc
	now    func() time.Time
}

func (r *taskRepo) GetByID(ctx context.Context, id int64) (model.Task, error) {
	row, err := r.q.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, taskError("get task", id, err)
	}
	return mapTask(row), nil
}

func (r *taskRepo) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	rows, err := r.q.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, model.Infrastructure("list tasks", err)
	}
	return mapTasks(rows), nil
}

func (r *taskRepo) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	count, err := r.q.CountTasksByProject(ctx, projectID)
	if err != nil {
		return 0, model.Infrastructure("count tasks", err)
	}
	return count, nil
}

func (r *taskRepo) Create(ctx context.Context, task model.Task) (model.Task, error) {
	var created model.Task
	err := r.atomic(ctx, func(q *sqlc.Queries) error {
		id, err := q.CreateTask(ctx, sqlc.CreateTaskParams{
			ProjectID:   task.ProjectID,
			Title:       task.Title,
			Description: task.Description,
			Status:      string(task.Status),
			Deadline:    nullDate(task.Deadline),
			CreatedAt:   r.now().UTC(),
		})
		if err != nil {
			if isConstraint(err, "FOREIGN KEY") {
				return fmt.Errorf("project %d: %w", task.ProjectID, model.ErrNotFound)
			}
			return model.Infrastructure("create task", err)
		}

		row, err := q.GetTask(ctx, id)
		if err != nil {
			return taskError("reload task", id, err)
		}
		created = mapTask(row)
		return nil
	})
	return created, err
}

func (r *taskRepo) UpdateTask(ctx context.Context, id int64, changes model.TaskChanges) (model.Task, error) {
	params := sqlc.UpdateTaskParams{
		Title:         nullString(changes.Title),
		Description:   nullString(changes.Description),
		ClearDeadline: changes.ClearDeadline,
		Deadline:      nullDate(changes.Deadline),
		ID:            id,
	}
	if changes.Status != nil {
		params.Status = sql.NullString{String: string(*changes.Status), Valid: true}
	}
	if changes.ClosedAt != nil {
		params.ClosedAt = sql.NullTime{Time: changes.ClosedAt.UTC(), Valid: true}
	}

	var updated model.Task
	err := r.atomic(ctx, func(q *sqlc.Queries) error {
		affected, err := q.UpdateTask(ctx, params)
		if err != nil {
			return taskError("update task", id, err)
		}
		if affected == 0 {
			return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
		}

		row, err := q.GetTask(ctx, id)
		if err != nil {
			return taskError("reload task", id, err)
		}
		updated = mapTask(row)
		return nil
	})
	return updated, err
}

func (r *taskRepo) Delete(ctx context.Context, id int64) error {
	affected, err := r.q.DeleteTask(ctx, id)
	if err != nil {
		return taskError("delete task", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (r *taskRepo) DeleteAllByProject(ctx context.Context, projectID int64) error {
	if err := r.q.DeleteTasksByProject(ctx, projectID); err != nil {
		return model.Infrastructure("delete project tasks", err)
	}
	return nil
}

func (r *taskRepo) ListOverdueOpenTasks(ctx context.Context, asOf time.Time) ([]model.Task, error) {
	rows, err := r.q.ListOverdueOpenTasks(ctx, sqlc.ListOverdueOpenTasksParams{
		AsOf:       sql.NullString{String: model.DateOf(asOf).Format(model.DateLayout), Valid: true},
		DoneStatus: string(model.StatusDone),
	})
	if err != nil {
		return nil, model.Infrastructure("list overdue tasks", err)
	}
	return mapTasks(rows), nil
}

func mapProject(row sqlc.Project) model.Project {
	return model.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}

func mapTask(row sqlc.Task) model.Task {
	result := model.Task{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		Title:       row.Title,
		Description: row.Description,
		Status:      model.Status(row.Status),
		CreatedAt:   row.CreatedAt,
	}
	if row.Deadline.Valid {
		if parsed, err := time.Parse(model.DateLayout, row.Deadline.String); err == nil {
			result.Deadline = &parsed
		}
	}
	if row.ClosedAt.Valid {
		closedAt := row.ClosedAt.Time
		result.ClosedAt = &closedAt
	}
	return result
}

func mapTasks(rows []sqlc.Task) []model.Task {
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, mapTask(row))
	}
	return tasks
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullDate(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.Format(model.DateLayout), Valid: true}
}

func projectError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	case isConstraint(err, "UNIQUE"):
		return fmt.Errorf("project name: %w", model.ErrDuplicate)
	default:
		return model.Infrastructure(op, err)
	}
}

func taskError(op string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	return model.Infrastructure(op, err)
}

// isConstraint reports a SQLite constraint violation whose message names kind.
func isConstraint(err error, kind string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	return strings.Contains(sqliteErr.Error(), kind)
}
