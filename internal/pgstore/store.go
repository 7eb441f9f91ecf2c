// Package pgstore is the PostgreSQL storage backend. It implements the same
// repositories as the SQLite store in internal/db.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

var _ repository.Store = (*Store)(nil)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open connects to databaseURL and applies the schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := New(pool)
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// SetClock replaces the time source used for created_at.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Projects() repository.ProjectRepository {
	return &projectRepo{db: s.pool, now: s.now}
}

func (s *Store) Tasks() repository.TaskRepository {
	return &taskRepo{db: s.pool, now: s.now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		fnErr = fn(repository.Repositories{
			Projects: &projectRepo{db: tx, now: s.now},
			Tasks:    &taskRepo{db: tx, now: s.now},
		})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return model.Infrastructure("transaction", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const projectColumns = "id, name, description, created_at"

const taskColumns = "id, project_id, title, description, status, deadline, created_at, closed_at"

type projectRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *projectRepo) ListAll(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY id")
	if err != nil {
		return nil, model.Infrastructure("list projects", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, model.Infrastructure("scan project", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Infrastructure("list projects", err)
	}
	return projects, nil
}

func (r *projectRepo) GetByID(ctx context.Context, id int64) (model.Project, error) {
	row := r.db.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id)
	project, err := scanProject(row)
	if err != nil {
		return model.Project{}, projectError("get project", id, err)
	}
	return project, nil
}

func (r *projectRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, model.Infrastructure("count projects", err)
	}
	return count, nil
}

func (r *projectRepo) Create(ctx context.Context, project model.Project) (model.Project, error) {
	row := r.db.QueryRow(ctx,
		"INSERT INTO projects (name, description, created_at) VALUES ($1, $2, $3) RETURNING "+projectColumns,
		project.Name, project.Description, r.now().UTC(),
	)
	created, err := scanProject(row)
	if err != nil {
		return model.Project{}, projectError("create project", 0, err)
	}
	return created, nil
}

func (r *projectRepo) Update(ctx context.Context, id int64, changes model.ProjectChanges) (model.Project, error) {
	row := r.db.QueryRow(ctx, `UPDATE projects
SET name = COALESCE($1, name),
    description = COALESCE($2, description)
WHERE id = $3
RETURNING `+projectColumns,
		changes.Name, changes.Description, id,
	)
	updated, err := scanProject(row)
	if err != nil {
		return model.Project{}, projectError("update project", id, err)
	}
	return updated, nil
}

func (r *projectRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return model.Infrastructure("delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	}
	return nil
}

type taskRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *taskRepo) GetByID(ctx context.Context, id int64) (model.Task, error) {
	row := r.db.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if err != nil {
		return model.Task{}, taskError("get task", id, err)
	}
	return task, nil
}

func (r *taskRepo) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	return r.list(ctx, "list tasks", "SELECT "+taskColumns+" FROM tasks WHERE project_id = $1 ORDER BY id", projectID)
}

func (r *taskRepo) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM tasks WHERE project_id = $1", projectID).Scan(&count); err != nil {
		return 0, model.Infrastructure("count tasks", err)
	}
	return count, nil
}

func (r *taskRepo) Create(ctx context.Context, task model.Task) (model.Task, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO tasks (project_id, title, description, status, deadline, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+taskColumns,
		task.ProjectID, task.Title, task.Description, string(task.Status), dateParam(task.Deadline), r.now().UTC(),
	)
	created, err := scanTask(row)
	if err != nil {
		if hasCode(err, "23503") {
			return model.Task{}, fmt.Errorf("project %d: %w", task.ProjectID, model.ErrNotFound)
		}
		return model.Task{}, model.Infrastructure("create task", err)
	}
	return created, nil
}

func (r *taskRepo) UpdateTask(ctx context.Context, id int64, changes model.TaskChanges) (model.Task, error) {
	var status *string
	if changes.Status != nil {
		value := string(*changes.Status)
		status = &value
	}
	var closedAt *time.Time
	if changes.ClosedAt != nil {
		value := changes.ClosedAt.UTC()
		closedAt = &value
	}

	row := r.db.QueryRow(ctx, `UPDATE tasks
SET title = COALESCE($1, title),
    description = COALESCE($2, description),
    status = COALESCE($3, status),
    deadline = CASE WHEN $4::boolean THEN NULL ELSE COALESCE($5::date, deadline) END,
    closed_at = COALESCE($6::timestamptz, closed_at)
WHERE id = $7
RETURNING `+taskColumns,
		changes.Title, changes.Description, status, changes.ClearDeadline, dateParam(changes.Deadline), closedAt, id,
	)
	updated, err := scanTask(row)
	if err != nil {
		return model.Task{}, taskError("update task", id, err)
	}
	return updated, nil
}

func (r *taskRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return model.Infrastructure("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (r *taskRepo) DeleteAllByProject(ctx context.Context, projectID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE project_id = $1", projectID); err != nil {
		return model.Infrastructure("delete project tasks", err)
	}
	return nil
}

func (r *taskRepo) ListOverdueOpenTasks(ctx context.Context, asOf time.Time) ([]model.Task, error) {
	return r.list(ctx, "list overdue tasks", `SELECT `+taskColumns+` FROM tasks
WHERE deadline IS NOT NULL AND deadline < $1::date AND status <> $2
ORDER BY id`,
		pgtype.Date{Time: model.DateOf(asOf), Valid: true}, string(model.StatusDone),
	)
}

func (r *taskRepo) list(ctx context.Context, op, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, model.Infrastructure(op, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, model.Infrastructure("scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Infrastructure(op, err)
	}
	return tasks, nil
}

func scanProject(row pgx.Row) (model.Project, error) {
	var project model.Project
	err := row.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt)
	return project, err
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		task     model.Task
		status   string
		deadline pgtype.Date
		closedAt pgtype.Timestamptz
	)
	err := row.Scan(&task.ID, &task.ProjectID, &task.Title, &task.Description, &status, &deadline, &task.CreatedAt, &closedAt)
	if err != nil {
		return model.Task{}, err
	}
	task.Status = model.Status(status)
	if deadline.Valid {
		due := model.DateOf(deadline.Time)
		task.Deadline = &due
	}
	if closedAt.Valid {
		closed := closedAt.Time
		task.ClosedAt = &closed
	}
	return task, nil
}

func dateParam(value *time.Time) pgtype.Date {
	if value == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: model.DateOf(*value), Valid: true}
}

func projectError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("project %d: %w", id, model.ErrNotFound)
	case hasCode(err, "23505"):
		return fmt.Errorf("project name: %w", model.ErrDuplicate)
	default:
		return model.Infrastructure(op, err)
	}
}

func taskError(op string, id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	return model.Infrastructure(op, err)
}

// hasCode reports whether err is a PostgreSQL error with the given SQLSTATE.
func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
