package postgres

import (
	"context"
	"database/sql"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// CommentPostgres is a PostgreSQL implementation of repository.CommentRepository.
type CommentPostgres struct {
	db *sql.DB
}

// NewCommentPostgres creates a new CommentPostgres repository.
func NewCommentPostgres(db *sql.DB) *CommentPostgres {
	return &CommentPostgres{db: db}
}

var _ repository.CommentRepository = (*CommentPostgres)(nil)

const commentColumns = `id, task_id, author_id, body, mentioned_user_id, is_public, created_at`

func scanComment(row rowScanner) (*model.Comment, error) {
	var (
		c         model.Comment
		mentioned sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &mentioned, &c.IsPublic, &c.CreatedAt); err != nil {
		return nil, err
	}
	if mentioned.Valid {
		id := mentioned.Int64
		c.MentionedUserID = &id
	}
	return &c, nil
}

// Create inserts a comment and returns the stored row.
func (r *CommentPostgres) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		INSERT INTO comments (task_id, author_id, body, mentioned_user_id, is_public)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, q, c.TaskID, c.AuthorID, c.Text, nullableID(c.MentionedUserID), c.IsPublic))
}

// ListByTask returns a task's comments, newest first.
func (r *CommentPostgres) ListByTask(ctx context.Context, taskID int64) ([]model.Comment, error) {
	const q = `SELECT ` + commentColumns + ` FROM comments WHERE task_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
