package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"daoapi/internal/auth"
	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, capability model.Capability) (string, time.Time, error)
}

// CreateUserInput is a new account.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int    `json:"role_id"`
}

// LoginResult is returned on a successful sign-in.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// UserService defines the account use cases.
type UserService interface {
	Create(ctx context.Context, viewer model.Viewer, in CreateUserInput) (*model.User, error)

	// List returns accounts, restricted to one capability when it is not empty.
	List(ctx context.Context, capability model.Capability) ([]model.User, error)

	// Login checks credentials and issues a token. Unknown emails and wrong passwords
	// both yield ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type userService struct {
	users  repository.UserRepository
	issuer TokenIssuer
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, issuer TokenIssuer) UserService {
	return &userService{users: users, issuer: issuer}
}

func (s *userService) Create(ctx context.Context, viewer model.Viewer, in CreateUserInput) (*model.User, error) {
	if !CanManageUsers(viewer.Capability) {
		return nil, ErrForbidden
	}
	u, err := s.register(ctx, in)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, invalid("email", "already registered")
	}
	return u, err
}

// BootstrapDirector creates the first Director of a fresh deployment so someone can sign in.
// It is a no-op when email is empty, and reports false when the account already exists.
func BootstrapDirector(ctx context.Context, users repository.UserRepository, name, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	if strings.TrimSpace(name) == "" {
		name = "Director"
	}
	s := &userService{users: users}
	_, err := s.register(ctx, CreateUserInput{Name: name, Email: email, Password: password, RoleID: model.RoleIDDirector})
	if errors.Is(err, repository.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// register validates in and stores the account. A taken email yields repository.ErrDuplicate.
func (s *userService) register(ctx context.Context, in CreateUserInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, invalid("email", "not a valid address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	if _, ok := capabilityByRoleID[in.RoleID]; !ok {
		return nil, invalid("role_id", "unknown role %d", in.RoleID)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Name:         name,
		Email:        strings.ToLower(addr.Address),
		PasswordHash: hash,
		RoleID:       in.RoleID,
	}
	stored, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("save user: %w", err)
		}
		return nil, unavailable("save user", err)
	}
	stored.Capability = ClassifyUser(*stored)
	return stored, nil
}

func (s *userService) List(ctx context.Context, capability model.Capability) ([]model.User, error) {
	roleID := 0
	if capability != "" {
		if roleID = RoleIDFor(capability); roleID == 0 {
			return nil, invalid("role", "unknown capability %q", capability)
		}
	}
	users, err := s.users.List(ctx, roleID)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	for i := range users {
		users[i].Capability = ClassifyUser(users[i])
	}
	return users, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, unavailable("find user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	u.Capability = ClassifyUser(*u)
	token, exp, err := s.issuer.Issue(u.ID, u.Capability)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: *u}, nil
}
