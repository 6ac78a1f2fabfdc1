package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"daoapi/internal/model"
	"daoapi/internal/repository"
	"daoapi/internal/storage"
)

// DownloadURLExpiry bounds the lifetime of presigned download links.
const DownloadURLExpiry = 15 * time.Minute

// AttachmentListResult is the service-level DTO for paginated attachments.
type AttachmentListResult struct {
	Items []model.Attachment `json:"data"`
	Total int                `json:"total"`
}

// AttachmentService defines the use cases for files attached to dossiers.
type AttachmentService interface {
	// Upload streams the content to object storage, saves metadata to DB, and rolls back storage if DB save fails.
	// originalFilename is kept for display; the object key is derived from the dossier and a fresh UUID.
	Upload(ctx context.Context, viewer model.Viewer, dossierID int64, r io.Reader, originalFilename, contentType string, size int64) (*model.Attachment, error)

	// List returns a dossier's attachments using limit/offset and a total count.
	List(ctx context.Context, viewer model.Viewer, dossierID int64, limit, offset int) (*AttachmentListResult, error)

	Get(ctx context.Context, viewer model.Viewer, id string) (*model.Attachment, error)

	// Delete removes an attachment from storage, then its record.
	Delete(ctx context.Context, viewer model.Viewer, id string) error

	// DownloadURL returns a presigned link valid for DownloadURLExpiry.
	DownloadURL(ctx context.Context, viewer model.Viewer, id string) (string, error)
}

type attachmentService struct {
	access dossierAccess
	store  storage.Storage
	repo   repository.AttachmentRepository
}

// NewAttachmentService constructs a new AttachmentService.
func NewAttachmentService(store storage.Storage, repo repository.AttachmentRepository, dossiers repository.DossierRepository) AttachmentService {
	return &attachmentService{access: dossierAccess{dossiers: dossiers}, store: store, repo: repo}
}

func (s *attachmentService) Upload(ctx context.Context, viewer model.Viewer, dossierID int64, r io.Reader, originalFilename, contentType string, size int64) (*model.Attachment, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	d, err := s.access.load(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireContribute(ctx, viewer, d); err != nil {
		return nil, err
	}

	displayName := path.Base(strings.ReplaceAll(originalFilename, "\\", "/"))
	if displayName == "." || displayName == "/" {
		return nil, invalid("file", "filename is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storage.AttachmentKey(d.ID, displayName)

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": displayName,
			"dossier-number":    d.Number,
		},
	})
	if err != nil {
		return nil, unavailable("upload to storage", err)
	}

	a := &model.Attachment{
		ID:          uuid.New().String(),
		DossierID:   d.ID,
		Filename:    displayName,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, a)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, unavailable("db save failed", fmt.Errorf("%v; rollback delete failed: %w", err, delErr))
		}
		return nil, unavailable("db save failed", err)
	}
	return stored, nil
}

func (s *attachmentService) List(ctx context.Context, viewer model.Viewer, dossierID int64, limit, offset int) (*AttachmentListResult, error) {
	d, err := s.access.load(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireView(ctx, viewer, d); err != nil {
		return nil, err
	}

	res, err := s.repo.ListByDossier(ctx, d.ID, normalizePage(limit, offset))
	if err != nil {
		return nil, unavailable("list attachments", err)
	}
	return &AttachmentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *attachmentService) Get(ctx context.Context, viewer model.Viewer, id string) (*model.Attachment, error) {
	a, _, err := s.load(ctx, viewer, id)
	return a, err
}

func (s *attachmentService) Delete(ctx context.Context, viewer model.Viewer, id string) error {
	a, d, err := s.load(ctx, viewer, id)
	if err != nil {
		return err
	}
	if !canManageDossier(viewer, d) {
		return ErrForbidden
	}
	// Storage goes first: a failure keeps the row so the object stays reachable.
	if err := s.store.Delete(ctx, a.StoragePath); err != nil {
		return unavailable("delete storage", err)
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return unavailable("delete attachment", err)
	}
	return nil
}

func (s *attachmentService) DownloadURL(ctx context.Context, viewer model.Viewer, id string) (string, error) {
	a, _, err := s.load(ctx, viewer, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, a.StoragePath, DownloadURLExpiry)
	if err != nil {
		return "", unavailable("presign download", err)
	}
	return url, nil
}

// load fetches an attachment and its dossier and checks that the viewer may read them.
func (s *attachmentService) load(ctx context.Context, viewer model.Viewer, id string) (*model.Attachment, *model.Dossier, error) {
	if id == "" {
		return nil, nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("attachment %s: %w", id, ErrNotFound)
		}
		return nil, nil, unavailable("find attachment", err)
	}
	d, err := s.access.load(ctx, a.DossierID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.access.requireView(ctx, viewer, d); err != nil {
		return nil, nil, err
	}
	return a, d, nil
}
