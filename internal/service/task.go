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

// TaskService defines the task use cases of a dossier.
type TaskService interface {
	Create(ctx context.Context, viewer model.Viewer, dossierID int64, name string) (*model.Task, error)
	List(ctx context.Context, viewer model.Viewer, dossierID int64) ([]model.Task, error)

	// UpdateProgress stores progress clamped to [0,100].
	UpdateProgress(ctx context.Context, viewer model.Viewer, taskID int64, progress int) (*model.Task, error)

	// Assign gives the task to a team member of its dossier, or clears it when userID is nil.
	Assign(ctx context.Context, viewer model.Viewer, taskID int64, userID *int64) (*model.Task, error)
}

type taskService struct {
	access   dossierAccess
	tasks    repository.TaskRepository
	dossiers repository.DossierRepository
}

// NewTaskService constructs a new TaskService.
func NewTaskService(tasks repository.TaskRepository, dossiers repository.DossierRepository) TaskService {
	return &taskService{access: dossierAccess{dossiers: dossiers}, tasks: tasks, dossiers: dossiers}
}

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func (s *taskService) Create(ctx context.Context, viewer model.Viewer, dossierID int64, name string) (*model.Task, error) {
	d, err := s.access.load(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	if !canManageDossier(viewer, d) {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}

	stored, err := s.tasks.Create(ctx, &model.Task{DossierID: d.ID, Name: name})
	if err != nil {
		return nil, unavailable("save task", err)
	}
	return stored, nil
}

func (s *taskService) List(ctx context.Context, viewer model.Viewer, dossierID int64) ([]model.Task, error) {
	d, err := s.access.load(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireView(ctx, viewer, d); err != nil {
		return nil, err
	}
	return s.tasks.ListByDossier(ctx, d.ID)
}

func (s *taskService) UpdateProgress(ctx context.Context, viewer model.Viewer, taskID int64, progress int) (*model.Task, error) {
	t, d, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	assignee := t.AssignedUserID != nil && *t.AssignedUserID == viewer.UserID
	if !assignee && !canManageDossier(viewer, d) {
		return nil, ErrForbidden
	}

	updated, err := s.tasks.UpdateProgress(ctx, t.ID, ClampProgress(progress))
	if err != nil {
		return nil, taskWriteError(t.ID, err)
	}
	return updated, nil
}

func (s *taskService) Assign(ctx context.Context, viewer model.Viewer, taskID int64, userID *int64) (*model.Task, error) {
	t, d, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canManageDossier(viewer, d) {
		return nil, ErrForbidden
	}

	if userID != nil {
		members, err := s.dossiers.TeamMembers(ctx, d.ID)
		if err != nil {
			return nil, unavailable("list team members", err)
		}
		onTeam := false
		for _, m := range members {
			if m.UserID == *userID {
				onTeam = true
				break
			}
		}
		if !onTeam {
			return nil, invalid("user_id", "user %d is not on the team of dossier %s", *userID, d.Number)
		}
	}

	updated, err := s.tasks.Assign(ctx, t.ID, userID)
	if err != nil {
		return nil, taskWriteError(t.ID, err)
	}
	return updated, nil
}

func (s *taskService) load(ctx context.Context, taskID int64) (*model.Task, *model.Dossier, error) {
	if taskID <= 0 {
		return nil, nil, ErrIDRequired
	}
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return nil, nil, unavailable("find task", err)
	}
	d, err := s.access.load(ctx, t.DossierID)
	if err != nil {
		return nil, nil, err
	}
	return t, d, nil
}

func taskWriteError(id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return unavailable("update task", err)
}
