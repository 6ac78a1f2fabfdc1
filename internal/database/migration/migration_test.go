package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daoapi/internal/logging"
)

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var buf bytes.Buffer
		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = EnsureMigrated(ctx, db, logging.New(&buf, time.UTC), "db.local")
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_skip")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs every step", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass('public.dossiers') IS NOT NULL").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		for _, step := range steps {
			mock.ExpectExec(step.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, logging.New(&buf, time.UTC), "db.local")
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_success")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure rolls back every step", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass('public.dossiers') IS NOT NULL").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec(steps[0].SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(steps[1].SQL).WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, logging.New(&buf, time.UTC), "db.local")
		assert.ErrorContains(t, err, "migration step create_table_roles failed")
		assert.Contains(t, buf.String(), "db_migration_failed")
		assert.Contains(t, buf.String(), "db_migration_rolled_back")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("late step failure leaves no sentinel table", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		failAt := -1
		for i, s := range steps {
			if s.Name == "create_table_tasks" {
				failAt = i
			}
		}
		require.Greater(t, failAt, 0)

		sentinel := "SELECT to_regclass('public.dossiers') IS NOT NULL"
		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		for _, s := range steps[:failAt] {
			mock.ExpectExec(s.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(steps[failAt].SQL).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		// The dossiers table was rolled back, so the next boot runs every step again.
		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		for _, s := range steps {
			mock.ExpectExec(s.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()

		var buf bytes.Buffer
		logger := logging.New(&buf, time.UTC)
		require.Error(t, EnsureMigrated(ctx, db, logger, "db.local"))
		require.NoError(t, EnsureMigrated(ctx, db, logger, "db.local"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass('public.dossiers') IS NOT NULL").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		for _, step := range steps {
			mock.ExpectExec(step.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, logging.New(&buf, time.UTC), "db.local")
		assert.ErrorContains(t, err, "commit tx")
		assert.NotContains(t, buf.String(), "db_migration_success")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").WillReturnError(errors.New("conn reset"))

		var buf bytes.Buffer
		err = EnsureMigrated(ctx, db, logging.New(&buf, time.UTC), "db.local")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestSteps_DependencyOrder(t *testing.T) {
	idx := map[string]int{}
	for i, s := range steps {
		idx[s.Name] = i
	}
	assert.Less(t, idx["create_table_roles"], idx["seed_roles"])
	assert.Less(t, idx["create_table_users"], idx["create_table_team_members"])
	assert.Less(t, idx["create_table_teams"], idx["create_table_dossiers"])
	assert.Less(t, idx["create_table_dossiers"], idx["create_table_tasks"])
	assert.Less(t, idx["create_table_tasks"], idx["create_table_comments"])
	assert.Contains(t, idx, "create_table_dossier_sequences")
}
