package handler

import (
	"github.com/gofiber/fiber/v2"

	"daoapi/internal/service"
)

// AddComment posts a comment on a task.
//
// @Summary  Add comment
// @Tags     comments
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int                  true "Task ID"
// @Param    body body service.CommentInput true "Comment"
// @Success  201 {object} model.Comment
// @Router   /tasks/{id}/comments [post]
func AddComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		taskID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		in := service.CommentInput{IsPublic: true}
		if !bindJSON(c, &in) {
			return nil
		}
		out, err := svc.Add(c.UserContext(), v, taskID, in)
		if err != nil {
			return writeServiceError(c, err, "task not found")
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListComments returns the task's comments the caller may read, newest first.
//
// @Summary  List comments
// @Tags     comments
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "Task ID"
// @Success  200 {array} model.Comment
// @Router   /tasks/{id}/comments [get]
func ListComments(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		taskID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		out, err := svc.List(c.UserContext(), v, taskID)
		if err != nil {
			return writeServiceError(c, err, "task not found")
		}
		return c.JSON(fiber.Map{"data": out})
	}
}
