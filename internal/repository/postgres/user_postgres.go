package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"daoapi/internal/database"
	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role_id, r.name, u.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns the stored row with its role name.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO users (name, email, password_hash, role_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, name, email, password_hash, role_id, created_at
		)
		SELECT u.id, u.name, u.email, u.password_hash, u.role_id, r.name, u.created_at
		FROM inserted u
		JOIN roles r ON r.id = u.role_id
	`
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.Name, u.Email, u.PasswordHash, u.RoleID))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email, case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE lower(u.email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByIDs fetches every user whose ID is in ids.
func (r *UserPostgres) FindByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	q := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY u.id`
	return r.queryUsers(ctx, q, args...)
}

// List returns users ordered by name, optionally restricted to one role.
func (r *UserPostgres) List(ctx context.Context, roleID int) ([]model.User, error) {
	if roleID > 0 {
		q := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.role_id = $1 ORDER BY u.name, u.id`
		return r.queryUsers(ctx, q, roleID)
	}
	q := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id ORDER BY u.name, u.id`
	return r.queryUsers(ctx, q)
}

func (r *UserPostgres) queryUsers(ctx context.Context, q string, args ...any) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
