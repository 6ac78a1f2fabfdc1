package repository

import (
	"context"
	"errors"

	"daoapi/internal/model"
)

// Package repository defines data access for the dossier service using SQL queries only.
// Implementations live in subpackages (postgres). Absence is reported as sql.ErrNoRows.

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// SequenceRepository exposes the per-year dossier counter primitives.
// The allocation protocol built on top of them lives in the service layer.
type SequenceRepository interface {
	// Increment atomically adds one to the counter for year and returns the new value.
	// It returns sql.ErrNoRows when no row exists for year.
	Increment(ctx context.Context, year int) (int, error)

	// Insert creates the row for year with counter = 1.
	// It returns ErrDuplicate when a concurrent caller created the row first.
	Insert(ctx context.Context, year int) error
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts a user; it returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	// List returns all users, or only those holding roleID when it is non-zero.
	List(ctx context.Context, roleID int) ([]model.User, error)
}

// DossierFilter narrows dossier listings. Zero values mean "no restriction".
type DossierFilter struct {
	LeadUserID   int64
	MemberUserID int64
}

// DossierRepository persists dossiers together with their team.
type DossierRepository interface {
	// Create inserts the team, its members and the dossier in one transaction.
	// d.Number must already be allocated.
	Create(ctx context.Context, d *model.Dossier, memberIDs []int64) (*model.Dossier, error)
	FindByID(ctx context.Context, id int64) (*model.Dossier, error)
	List(ctx context.Context, f DossierFilter, pq PageQuery) (*PageResult[model.Dossier], error)
	// SetCompleted updates the terminal flag. It returns sql.ErrNoRows when the dossier does not exist.
	SetCompleted(ctx context.Context, id int64, completed bool) error
	TeamMembers(ctx context.Context, dossierID int64) ([]model.TeamMember, error)
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	FindByID(ctx context.Context, id int64) (*model.Task, error)
	ListByDossier(ctx context.Context, dossierID int64) ([]model.Task, error)
	ListByAssignee(ctx context.Context, userID int64) ([]model.Task, error)
	// UpdateProgress stores progress; it returns sql.ErrNoRows when the task does not exist.
	UpdateProgress(ctx context.Context, id int64, progress int) (*model.Task, error)
	// Assign sets or clears the assignee; it returns sql.ErrNoRows when the task does not exist.
	Assign(ctx context.Context, id int64, userID *int64) (*model.Task, error)
}

// CommentRepository persists task comments.
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	// ListByTask returns comments newest first.
	ListByTask(ctx context.Context, taskID int64) ([]model.Comment, error)
}

// AttachmentRepository persists dossier attachment metadata.
type AttachmentRepository interface {
	// Create inserts a new attachment record and returns the stored row.
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)

	// FindByID returns an attachment by its ID.
	FindByID(ctx context.Context, id string) (*model.Attachment, error)

	// ListByDossier returns a page of a dossier's attachments and their total count.
	ListByDossier(ctx context.Context, dossierID int64, pq PageQuery) (*PageResult[model.Attachment], error)

	// Delete removes an attachment by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
