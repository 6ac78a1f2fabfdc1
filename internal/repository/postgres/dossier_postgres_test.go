package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

var dossierRowColumns = []string{
	"id", "number", "deposit_date", "subject", "description", "reference", "authority",
	"lead_user_id", "team_id", "completed", "progress", "created_at",
}

func TestDossierPostgres_Create(t *testing.T) {
	ctx := context.Background()
	deposit := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	in := &model.Dossier{
		Number:      "DAO-2025-001",
		DepositDate: &deposit,
		Subject:     "Fourniture de matériel informatique",
		Authority:   "Ministère de la Santé",
		LeadUserID:  3,
	}

	t.Run("team, members and dossier in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		now := time.Now().UTC()
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO teams \(name\) VALUES \(\$1\) RETURNING id`).
			WithArgs("DAO-2025-001").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectExec("INSERT INTO team_members").
			WithArgs(int64(11), int64(3), model.TeamRoleLead).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO team_members").
			WithArgs(int64(11), int64(4), model.TeamRoleMember).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO team_members").
			WithArgs(int64(11), int64(5), model.TeamRoleMember).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO dossiers").
			WithArgs("DAO-2025-001", sqlmock.AnyArg(), in.Subject, "", "", in.Authority, int64(3), int64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(21, now))
		mock.ExpectCommit()

		// The lead listed among members is not inserted twice.
		got, err := NewDossierPostgres(db).Create(ctx, in, []int64{4, 3, 5})
		require.NoError(t, err)
		assert.Equal(t, int64(21), got.ID)
		assert.Equal(t, int64(11), got.TeamID)
		assert.Equal(t, "DAO-2025-001", got.Number)
		assert.False(t, got.Completed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("member insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO teams").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectExec("INSERT INTO team_members").
			WillReturnError(errors.New("fk violation"))
		mock.ExpectRollback()

		got, err := NewDossierPostgres(db).Create(ctx, in, nil)
		assert.ErrorContains(t, err, "insert team lead: fk violation")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate number", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO teams").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectExec("INSERT INTO team_members").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO dossiers").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "dossiers_number_key"})
		mock.ExpectRollback()

		_, err = NewDossierPostgres(db).Create(ctx, in, nil)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDossierPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDossierPostgres(db)
	ctx := context.Background()

	t.Run("found with deposit date", func(t *testing.T) {
		deposit := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM dossiers d WHERE d.id = ?").
			WithArgs(int64(21)).
			WillReturnRows(sqlmock.NewRows(dossierRowColumns).
				AddRow(21, "DAO-2025-001", deposit, "Subject", "", "REF-9", "Mairie", 3, 11, false, 40, time.Now()))

		d, err := repo.FindByID(ctx, 21)
		require.NoError(t, err)
		require.NotNil(t, d.DepositDate)
		assert.True(t, deposit.Equal(*d.DepositDate))
		assert.Equal(t, 40, d.Progress)
	})

	t.Run("found without deposit date", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM dossiers d WHERE d.id = ?").
			WithArgs(int64(22)).
			WillReturnRows(sqlmock.NewRows(dossierRowColumns).
				AddRow(22, "DAO-2025-002", nil, "Subject", "", "", "", 3, 12, true, 0, time.Now()))

		d, err := repo.FindByID(ctx, 22)
		require.NoError(t, err)
		assert.Nil(t, d.DepositDate)
		assert.True(t, d.Completed)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM dossiers").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		d, err := repo.FindByID(ctx, 404)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, d)
	})
}

func TestDossierPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDossierPostgres(db)
	ctx := context.Background()

	t.Run("unfiltered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dossiers d$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM dossiers d ORDER BY d.created_at DESC, d.id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(dossierRowColumns).
				AddRow(21, "DAO-2025-001", nil, "S", "", "", "", 3, 11, false, 0, time.Now()))

		res, err := repo.List(ctx, repository.DossierFilter{}, repository.PageQuery{Limit: 10, Offset: 0})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("by lead", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dossiers d WHERE d.lead_user_id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`WHERE d.lead_user_id = \$1 ORDER BY (.+) LIMIT \$2 OFFSET \$3`).
			WithArgs(int64(3), 5, 10).
			WillReturnRows(sqlmock.NewRows(dossierRowColumns))

		res, err := repo.List(ctx, repository.DossierFilter{LeadUserID: 3}, repository.PageQuery{Limit: 5, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("by member", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dossiers d WHERE EXISTS \(SELECT 1 FROM team_members tm`).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`tm.user_id = \$1\) ORDER BY`).
			WithArgs(int64(4), 10, 0).
			WillReturnRows(sqlmock.NewRows(dossierRowColumns))

		_, err := repo.List(ctx, repository.DossierFilter{MemberUserID: 4}, repository.PageQuery{Limit: 10})
		require.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDossierPostgres_SetCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDossierPostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE dossiers SET completed = \$2 WHERE id = \$1`).
		WithArgs(int64(21), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SetCompleted(ctx, 21, true))

	mock.ExpectExec("UPDATE dossiers").
		WithArgs(int64(404), true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetCompleted(ctx, 404, true), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDossierPostgres_TeamMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM dossiers d JOIN team_members tm").
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id", "name", "role"}).
			AddRow(11, 3, "Lead", "lead").
			AddRow(11, 4, "Member", "member"))

	got, err := NewDossierPostgres(db).TeamMembers(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, []model.TeamMember{
		{TeamID: 11, UserID: 3, Name: "Lead", Role: "lead"},
		{TeamID: 11, UserID: 4, Name: "Member", Role: "member"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
