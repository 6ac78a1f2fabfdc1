package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"daoapi/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Users       service.UserService
	Dossiers    service.DossierService
	Tasks       service.TaskService
	Comments    service.CommentService
	Attachments service.AttachmentService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// auth guards every route except health checks and login.
func RegisterRoutes(app *fiber.App, db *sql.DB, auth fiber.Handler, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/login", Login(svc.Users))

	app.Post("/users", auth, CreateUser(svc.Users))
	app.Get("/users", auth, ListUsers(svc.Users))

	app.Post("/dossiers", auth, CreateDossier(svc.Dossiers))
	app.Get("/dossiers", auth, ListDossiers(svc.Dossiers))
	app.Get("/dossiers/:id", auth, GetDossier(svc.Dossiers))
	app.Post("/dossiers/:id/complete", auth, SetDossierCompleted(svc.Dossiers, true))
	app.Post("/dossiers/:id/reopen", auth, SetDossierCompleted(svc.Dossiers, false))
	app.Get("/dashboard", auth, Dashboard(svc.Dossiers))

	app.Post("/dossiers/:id/tasks", auth, CreateTask(svc.Tasks))
	app.Get("/dossiers/:id/tasks", auth, ListTasks(svc.Tasks))
	app.Patch("/tasks/:id/progress", auth, UpdateTaskProgress(svc.Tasks))
	app.Put("/tasks/:id/assignee", auth, AssignTask(svc.Tasks))

	app.Post("/tasks/:id/comments", auth, AddComment(svc.Comments))
	app.Get("/tasks/:id/comments", auth, ListComments(svc.Comments))

	app.Post("/dossiers/:id/attachments", auth, UploadAttachment(svc.Attachments))
	app.Get("/dossiers/:id/attachments", auth, ListAttachments(svc.Attachments))
	app.Get("/attachments/:id", auth, GetAttachment(svc.Attachments))
	app.Get("/attachments/:id/download", auth, AttachmentDownloadURL(svc.Attachments))
	app.Delete("/attachments/:id", auth, DeleteAttachment(svc.Attachments))
}
