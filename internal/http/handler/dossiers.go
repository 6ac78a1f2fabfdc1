package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"daoapi/internal/service"
)

const depositDateLayout = "2006-01-02"

type createDossierRequest struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Reference   string  `json:"reference"`
	Authority   string  `json:"authority"`
	DepositDate string  `json:"deposit_date"`
	LeadUserID  int64   `json:"lead_user_id"`
	MemberIDs   []int64 `json:"member_ids"`
}

// CreateDossier opens a dossier, allocating its DAO-YYYY-NNN number.
//
// @Summary  Create dossier
// @Tags     dossiers
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body createDossierRequest true "Dossier and team"
// @Success  201 {object} service.DossierView
// @Failure  422 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Router   /dossiers [post]
func CreateDossier(svc service.DossierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		var req createDossierRequest
		if !bindJSON(c, &req) {
			return nil
		}

		in := service.CreateDossierInput{
			Subject:     req.Subject,
			Description: req.Description,
			Reference:   req.Reference,
			Authority:   req.Authority,
			LeadUserID:  req.LeadUserID,
			MemberIDs:   req.MemberIDs,
		}
		if req.DepositDate != "" {
			d, err := time.Parse(depositDateLayout, req.DepositDate)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DATE", "deposit_date must be YYYY-MM-DD")
			}
			in.DepositDate = &d
		}

		out, err := svc.Create(c.UserContext(), v, in)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListDossiers returns the dossiers visible to the caller.
//
// @Summary  List dossiers
// @Tags     dossiers
// @Produce  json
// @Security BearerAuth
// @Param    limit  query int false "Page size" default(10)
// @Param    offset query int false "Offset" default(0)
// @Success  200 {object} service.DossierListResult
// @Router   /dossiers [get]
func ListDossiers(svc service.DossierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), v, limit, offset)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.JSON(res)
	}
}

// GetDossier returns a dossier with its team and tasks.
//
// @Summary  Get dossier
// @Tags     dossiers
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "Dossier ID"
// @Success  200 {object} service.DossierDetail
// @Failure  404 {object} errorPayload
// @Router   /dossiers/{id} [get]
func GetDossier(svc service.DossierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		id, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		d, err := svc.Get(c.UserContext(), v, id)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.JSON(d)
	}
}

// SetDossierCompleted backs both /complete (true) and /reopen (false).
//
// @Summary  Complete or reopen a dossier
// @Tags     dossiers
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "Dossier ID"
// @Success  200 {object} service.DossierView
// @Failure  403 {object} errorPayload
// @Router   /dossiers/{id}/complete [post]
// @Router   /dossiers/{id}/reopen [post]
func SetDossierCompleted(svc service.DossierService, completed bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		id, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		d, err := svc.SetCompleted(c.UserContext(), v, id, completed)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.JSON(d)
	}
}

// Dashboard returns status counts for the caller's dossiers.
//
// @Summary  Dashboard
// @Tags     dossiers
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} service.Dashboard
// @Router   /dashboard [get]
func Dashboard(svc service.DossierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		d, err := svc.Dashboard(c.UserContext(), v)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.JSON(d)
	}
}
