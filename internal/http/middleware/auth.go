package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"daoapi/internal/auth"
	"daoapi/internal/model"
)

// ViewerLocalKey holds the authenticated model.Viewer in Fiber's context locals.
const ViewerLocalKey = "viewer"

// SessionResolver validates a bearer token and returns the caller it identifies.
// Rejected tokens must wrap auth.ErrInvalidToken; any other error is treated as an outage.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (model.Viewer, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <token>" header with 401
// and stores the caller for downstream handlers.
func Auth(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		viewer, err := sessions.Resolve(c.UserContext(), strings.TrimSpace(token))
		if errors.Is(err, auth.ErrInvalidToken) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if err != nil {
			SetErrorCause(c, err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "session lookup failed")
		}

		c.Locals(ViewerLocalKey, viewer)
		return c.Next()
	}
}

// ViewerFromCtx returns the caller stored by Auth.
func ViewerFromCtx(c *fiber.Ctx) (model.Viewer, bool) {
	v, ok := c.Locals(ViewerLocalKey).(model.Viewer)
	return v, ok
}
