package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"daoapi/internal/http/middleware"
	"daoapi/internal/model"
)

// viewer returns the authenticated caller, writing a 401 when there is none.
func viewer(c *fiber.Ctx) (model.Viewer, bool) {
	v, ok := middleware.ViewerFromCtx(c)
	if !ok {
		_ = writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}
	return v, ok
}

// idParam parses a positive integer route parameter, writing a 400 on failure.
func idParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return 0, false
	}
	return id, true
}

// pageParams reads limit and offset, writing a 400 on failure.
func pageParams(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// bindJSON decodes the request body, writing a 400 on malformed input.
func bindJSON(c *fiber.Ctx, out any) bool {
	if err := c.BodyParser(out); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		return false
	}
	return true
}
