package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// CommentInput is a new comment on a task.
type CommentInput struct {
	Text            string `json:"text"`
	MentionedUserID *int64 `json:"mentioned_user_id,omitempty"`
	IsPublic        bool   `json:"is_public"`
}

// CommentService defines the comment use cases.
type CommentService interface {
	Add(ctx context.Context, viewer model.Viewer, taskID int64, in CommentInput) (*model.Comment, error)

	// List returns the task's comments the viewer may read, newest first.
	List(ctx context.Context, viewer model.Viewer, taskID int64) ([]model.Comment, error)
}

type commentService struct {
	access   dossierAccess
	comments repository.CommentRepository
	tasks    repository.TaskRepository
	users    repository.UserRepository
}

// NewCommentService constructs a new CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	tasks repository.TaskRepository,
	users repository.UserRepository,
	dossiers repository.DossierRepository,
) CommentService {
	return &commentService{
		access:   dossierAccess{dossiers: dossiers},
		comments: comments,
		tasks:    tasks,
		users:    users,
	}
}

func (s *commentService) Add(ctx context.Context, viewer model.Viewer, taskID int64, in CommentInput) (*model.Comment, error) {
	t, err := s.task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	d, err := s.access.load(ctx, t.DossierID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireContribute(ctx, viewer, d); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, invalid("text", "must not be empty")
	}
	if in.MentionedUserID != nil {
		if _, err := s.users.FindByID(ctx, *in.MentionedUserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, invalid("mentioned_user_id", "user %d not found", *in.MentionedUserID)
			}
			return nil, unavailable("find mentioned user", err)
		}
	}

	c := &model.Comment{
		TaskID:          t.ID,
		AuthorID:        viewer.UserID,
		Text:            text,
		MentionedUserID: in.MentionedUserID,
		// A private note needs someone to address; without a mention it is stored as public.
		IsPublic: in.IsPublic || in.MentionedUserID == nil,
	}
	stored, err := s.comments.Create(ctx, c)
	if err != nil {
		return nil, unavailable("save comment", err)
	}
	return stored, nil
}

func (s *commentService) List(ctx context.Context, viewer model.Viewer, taskID int64) ([]model.Comment, error) {
	t, err := s.task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	d, err := s.access.load(ctx, t.DossierID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireView(ctx, viewer, d); err != nil {
		return nil, err
	}

	all, err := s.comments.ListByTask(ctx, t.ID)
	if err != nil {
		return nil, unavailable("list comments", err)
	}
	return FilterVisibleComments(all, viewer.UserID), nil
}

func (s *commentService) task(ctx context.Context, id int64) (*model.Task, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, unavailable("find task", err)
	}
	return t, nil
}
