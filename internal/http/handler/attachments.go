package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"daoapi/internal/service"
)

// UploadAttachment stores a file on a dossier (multipart/form-data, field name: file).
//
// @Summary  Upload attachment
// @Tags     attachments
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    id   path     int  true "Dossier ID"
// @Param    file formData file true "File"
// @Success  201 {object} model.Attachment
// @Router   /dossiers/{id}/attachments [post]
func UploadAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		dossierID, ok := idParam(c, "id")
		if !ok {
			return nil
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		a, err := svc.Upload(c.UserContext(), v, dossierID, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// ListAttachments returns a page of a dossier's attachments.
//
// @Summary  List attachments
// @Tags     attachments
// @Produce  json
// @Security BearerAuth
// @Param    id     path  int true  "Dossier ID"
// @Param    limit  query int false "Page size" default(10)
// @Param    offset query int false "Offset" default(0)
// @Success  200 {object} service.AttachmentListResult
// @Router   /dossiers/{id}/attachments [get]
func ListAttachments(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		dossierID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), v, dossierID, limit, offset)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.JSON(res)
	}
}

func attachmentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// GetAttachment returns attachment metadata.
//
// @Summary  Get attachment
// @Tags     attachments
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Attachment ID"
// @Success  200 {object} model.Attachment
// @Failure  404 {object} errorPayload
// @Router   /attachments/{id} [get]
func GetAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		id, ok := attachmentID(c)
		if !ok {
			return nil
		}
		a, err := svc.Get(c.UserContext(), v, id)
		if err != nil {
			return writeServiceError(c, err, "attachment not found")
		}
		return c.JSON(a)
	}
}

// AttachmentDownloadURL returns a short-lived presigned download link.
//
// @Summary  Attachment download link
// @Tags     attachments
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Attachment ID"
// @Success  200 {object} map[string]string
// @Router   /attachments/{id}/download [get]
func AttachmentDownloadURL(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		id, ok := attachmentID(c)
		if !ok {
			return nil
		}
		url, err := svc.DownloadURL(c.UserContext(), v, id)
		if err != nil {
			return writeServiceError(c, err, "attachment not found")
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": int(service.DownloadURLExpiry.Seconds())})
	}
}

// DeleteAttachment removes the file and its record.
//
// @Summary  Delete attachment
// @Tags     attachments
// @Security BearerAuth
// @Param    id path string true "Attachment ID"
// @Success  204
// @Router   /attachments/{id} [delete]
func DeleteAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		id, ok := attachmentID(c)
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), v, id); err != nil {
			return writeServiceError(c, err, "attachment not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
