package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

// ErrorCauseLocalKey holds an error a handler answered with a response instead of returning.
const ErrorCauseLocalKey = "error_cause"

// SetErrorCause records err for the access log entry of the current request.
func SetErrorCause(c *fiber.Ctx, err error) {
	c.Locals(ErrorCauseLocalKey, err)
}

// Logger writes one structured access log entry per request once the handler chain returns.
// Server errors log at error level and client errors at warn level.
func Logger(logger *log.Logger) fiber.Handler {
	logger = logger.With("component", "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		fields := []any{
			"request_id", RequestIDFromCtx(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
		}
		if v, ok := ViewerFromCtx(c); ok {
			fields = append(fields, "user_id", v.UserID, "capability", string(v.Capability))
		}
		if cause, ok := c.Locals(ErrorCauseLocalKey).(error); ok && cause != nil {
			fields = append(fields, "error", cause.Error())
		} else if err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("http_request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
		return err
	}
}
