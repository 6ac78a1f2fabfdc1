package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// dossierAccess answers who may read or act on a dossier.
type dossierAccess struct {
	dossiers repository.DossierRepository
}

func (a dossierAccess) load(ctx context.Context, id int64) (*model.Dossier, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	d, err := a.dossiers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dossier %d: %w", id, ErrNotFound)
		}
		return nil, unavailable("find dossier", err)
	}
	return d, nil
}

// isParticipant reports whether the viewer leads or sits on the dossier's team.
func (a dossierAccess) isParticipant(ctx context.Context, v model.Viewer, d *model.Dossier) (bool, error) {
	if d.LeadUserID == v.UserID {
		return true, nil
	}
	members, err := a.dossiers.TeamMembers(ctx, d.ID)
	if err != nil {
		return false, unavailable("list team members", err)
	}
	for _, m := range members {
		if m.UserID == v.UserID {
			return true, nil
		}
	}
	return false, nil
}

func (a dossierAccess) requireView(ctx context.Context, v model.Viewer, d *model.Dossier) error {
	if SeesAllDossiers(v.Capability) {
		return nil
	}
	ok, err := a.isParticipant(ctx, v, d)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// requireContribute admits managers and team participants. Readers never write.
func (a dossierAccess) requireContribute(ctx context.Context, v model.Viewer, d *model.Dossier) error {
	if isManager(v.Capability) {
		return nil
	}
	if v.Capability == model.CapabilityReader {
		return ErrForbidden
	}
	ok, err := a.isParticipant(ctx, v, d)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func canManageDossier(v model.Viewer, d *model.Dossier) bool {
	return isManager(v.Capability) || d.LeadUserID == v.UserID
}

func normalizePage(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}
