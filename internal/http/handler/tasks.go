package handler

import (
	"github.com/gofiber/fiber/v2"

	"daoapi/internal/service"
)

type createTaskRequest struct {
	Name string `json:"name"`
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

type assignRequest struct {
	UserID *int64 `json:"user_id"`
}

// CreateTask adds a task to a dossier.
//
// @Summary  Create task
// @Tags     tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int               true "Dossier ID"
// @Param    body body createTaskRequest true "Task"
// @Success  201 {object} model.Task
// @Router   /dossiers/{id}/tasks [post]
func CreateTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		dossierID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		var req createTaskRequest
		if !bindJSON(c, &req) {
			return nil
		}
		t, err := svc.Create(c.UserContext(), v, dossierID, req.Name)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// ListTasks returns a dossier's tasks.
//
// @Summary  List tasks
// @Tags     tasks
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "Dossier ID"
// @Success  200 {array} model.Task
// @Router   /dossiers/{id}/tasks [get]
func ListTasks(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		dossierID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		tasks, err := svc.List(c.UserContext(), v, dossierID)
		if err != nil {
			return writeServiceError(c, err, "dossier not found")
		}
		return c.JSON(fiber.Map{"data": tasks})
	}
}

// UpdateTaskProgress stores a progress percentage; values outside 0..100 are clamped.
//
// @Summary  Update task progress
// @Tags     tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int             true "Task ID"
// @Param    body body progressRequest true "Progress"
// @Success  200 {object} model.Task
// @Router   /tasks/{id}/progress [patch]
func UpdateTaskProgress(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		taskID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		var req progressRequest
		if !bindJSON(c, &req) {
			return nil
		}
		if req.Progress == nil {
			return writeError(c, fiber.StatusBadRequest, "PROGRESS_REQUIRED", "progress is required")
		}
		t, err := svc.UpdateProgress(c.UserContext(), v, taskID, *req.Progress)
		if err != nil {
			return writeServiceError(c, err, "task not found")
		}
		return c.JSON(t)
	}
}

// AssignTask sets the assignee of a task; a null user_id clears it.
//
// @Summary  Assign task
// @Tags     tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path int           true "Task ID"
// @Param    body body assignRequest true "Assignee"
// @Success  200 {object} model.Task
// @Router   /tasks/{id}/assignee [put]
func AssignTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		taskID, ok := idParam(c, "id")
		if !ok {
			return nil
		}
		var req assignRequest
		if !bindJSON(c, &req) {
			return nil
		}
		t, err := svc.Assign(c.UserContext(), v, taskID, req.UserID)
		if err != nil {
			return writeServiceError(c, err, "task not found")
		}
		return c.JSON(t)
	}
}
