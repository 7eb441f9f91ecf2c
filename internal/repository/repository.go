package repository

import (
	"context"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

// ProjectRepository persists projects. Lookups by id that miss return an error
// matching model.ErrNotFound.
type ProjectRepository interface {
	// ListAll returns every project ordered by ascending id.
	ListAll(ctx context.Context) ([]model.Project, error)
	GetByID(ctx context.Context, id int64) (model.Project, error)
	Count(ctx context.Context) (int64, error)
	// Create assigns the id and creation time.
	Create(ctx context.Context, project model.Project) (model.Project, error)
	// Update merges changes onto the stored project; id and created_at are kept.
	Update(ctx context.Context, id int64, changes model.ProjectChanges) (model.Project, error)
	Delete(ctx context.Context, id int64) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (model.Task, error)
	// ListByProject returns the project's tasks ordered by ascending id.
	ListByProject(ctx context.Context, projectID int64) ([]model.Task, error)
	CountByProject(ctx context.Context, projectID int64) (int64, error)
	Create(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, changes model.TaskChanges) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	DeleteAllByProject(ctx context.Context, projectID int64) error
	// ListOverdueOpenTasks returns tasks with a deadline strictly before asOf's date
	// whose status is not done, ordered by ascending id.
	ListOverdueOpenTasks(ctx context.Context, asOf time.Time) ([]model.Task, error)
}

// Repositories is a set of repositories sharing one connection or transaction.
type Repositories struct {
	Projects ProjectRepository
	Tasks    TaskRepository
}

// Transactor runs fn inside a single transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

// Store is a complete storage backend.
type Store interface {
	Transactor
	Projects() ProjectRepository
	Tasks() TaskRepository
	Ping(ctx context.Context) error
	Close() error
}
