package postgres

import (
	"context"
	"database/sql"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// TaskPostgres is a PostgreSQL implementation of repository.TaskRepository.
type TaskPostgres struct {
	db *sql.DB
}

// NewTaskPostgres creates a new TaskPostgres repository.
func NewTaskPostgres(db *sql.DB) *TaskPostgres {
	return &TaskPostgres{db: db}
}

var _ repository.TaskRepository = (*TaskPostgres)(nil)

const taskColumns = `id, dossier_id, name, progress, assigned_user_id, created_at, updated_at`

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t        model.Task
		assignee sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.DossierID, &t.Name, &t.Progress, &assignee, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if assignee.Valid {
		id := assignee.Int64
		t.AssignedUserID = &id
	}
	return &t, nil
}

// Create inserts a task and returns the stored row.
func (r *TaskPostgres) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	const q = `
		INSERT INTO tasks (dossier_id, name, progress, assigned_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRowContext(ctx, q, t.DossierID, t.Name, t.Progress, nullableID(t.AssignedUserID)))
}

// FindByID fetches a single task by its ID.
func (r *TaskPostgres) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRowContext(ctx, q, id))
}

// ListByDossier returns a dossier's tasks in creation order.
func (r *TaskPostgres) ListByDossier(ctx context.Context, dossierID int64) ([]model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE dossier_id = $1 ORDER BY created_at, id`
	return r.queryTasks(ctx, q, dossierID)
}

// ListByAssignee returns the tasks assigned to a user, most recently updated first.
func (r *TaskPostgres) ListByAssignee(ctx context.Context, userID int64) ([]model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_user_id = $1 ORDER BY updated_at DESC, id DESC`
	return r.queryTasks(ctx, q, userID)
}

// UpdateProgress stores a new progress value.
func (r *TaskPostgres) UpdateProgress(ctx context.Context, id int64, progress int) (*model.Task, error) {
	const q = `
		UPDATE tasks SET progress = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRowContext(ctx, q, id, progress))
}

// Assign sets the assignee, or clears it when userID is nil.
func (r *TaskPostgres) Assign(ctx context.Context, id int64, userID *int64) (*model.Task, error) {
	const q = `
		UPDATE tasks SET assigned_user_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRowContext(ctx, q, id, nullableID(userID)))
}

func (r *TaskPostgres) queryTasks(ctx context.Context, q string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
