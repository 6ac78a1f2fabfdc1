package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "role_id", "name", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Awa Koné", "awa@example.org", "hash", model.RoleIDProjectLead).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(7, "Awa Koné", "awa@example.org", "hash", model.RoleIDProjectLead, "project_lead", now))

		u, err := repo.Create(ctx, &model.User{Name: "Awa Koné", Email: "awa@example.org", PasswordHash: "hash", RoleID: model.RoleIDProjectLead})
		require.NoError(t, err)
		assert.Equal(t, int64(7), u.ID)
		assert.Equal(t, "project_lead", u.RoleName)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Create(ctx, &model.User{Email: "awa@example.org"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = ?").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(3, "Director", "dir@example.org", "hash", 1, "director", time.Now()))

		u, err := repo.FindByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "director", u.RoleName)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByID(ctx, 404)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})
}

func TestUserPostgres_FindByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("empty input skips the query", func(t *testing.T) {
		got, err := repo.FindByIDs(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("builds placeholders", func(t *testing.T) {
		mock.ExpectQuery(`WHERE u.id IN \(\$1, \$2\)`).
			WithArgs(int64(4), int64(5)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(4, "A", "a@example.org", "h", 4, "team_member", time.Now()).
				AddRow(5, "B", "b@example.org", "h", 4, "team_member", time.Now()))

		got, err := repo.FindByIDs(ctx, []int64{4, 5})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("WHERE u.role_id = ?").
		WithArgs(model.RoleIDTeamMember).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(4, "A", "a@example.org", "h", 4, "team_member", time.Now()))
	got, err := repo.List(ctx, model.RoleIDTeamMember)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	mock.ExpectQuery("SELECT (.+) FROM users u JOIN roles r ON r.id = u.role_id ORDER BY").
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	got, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}
