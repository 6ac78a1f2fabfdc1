package handler

import (
	"github.com/gofiber/fiber/v2"

	"daoapi/internal/model"
	"daoapi/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
//
// @Summary  Sign in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "Credentials"
// @Success  200 {object} service.LoginResult
// @Failure  401 {object} errorPayload
// @Router   /auth/login [post]
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if !bindJSON(c, &req) {
			return nil
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "CREDENTIALS_REQUIRED", "email and password are required")
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.JSON(res)
	}
}

// CreateUser registers an account. Directors and admins only.
//
// @Summary  Create user
// @Tags     users
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body service.CreateUserInput true "Account"
// @Success  201 {object} model.User
// @Failure  403 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /users [post]
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := viewer(c)
		if !ok {
			return nil
		}
		var in service.CreateUserInput
		if !bindJSON(c, &in) {
			return nil
		}
		u, err := svc.Create(c.UserContext(), v, in)
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// ListUsers returns accounts, optionally filtered with ?role=<capability>.
//
// @Summary  List users
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Param    role query string false "Capability filter, e.g. team_member"
// @Success  200 {array} model.User
// @Router   /users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := viewer(c); !ok {
			return nil
		}
		users, err := svc.List(c.UserContext(), model.Capability(c.Query("role")))
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.JSON(fiber.Map{"data": users})
	}
}
