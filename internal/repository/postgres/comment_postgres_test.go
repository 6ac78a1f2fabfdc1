package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daoapi/internal/model"
)

var commentRowColumns = []string{"id", "task_id", "author_id", "body", "mentioned_user_id", "is_public", "created_at"}

func TestCommentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mentioned := int64(9)
	mock.ExpectQuery("INSERT INTO comments").
		WithArgs(int64(5), int64(7), "@Moussa merci de relire", int64(9), false).
		WillReturnRows(sqlmock.NewRows(commentRowColumns).AddRow(1, 5, 7, "@Moussa merci de relire", 9, false, time.Now()))

	got, err := NewCommentPostgres(db).Create(context.Background(), &model.Comment{
		TaskID:          5,
		AuthorID:        7,
		Text:            "@Moussa merci de relire",
		MentionedUserID: &mentioned,
		IsPublic:        false,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	require.NotNil(t, got.MentionedUserID)
	assert.Equal(t, int64(9), *got.MentionedUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentPostgres_ListByTask(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	later := time.Now()
	earlier := later.Add(-time.Hour)
	mock.ExpectQuery("FROM comments WHERE task_id = (.+) ORDER BY created_at DESC, id DESC").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow(2, 5, 7, "second", nil, true, later).
			AddRow(1, 5, 7, "first", 9, false, earlier))

	got, err := NewCommentPostgres(db).ListByTask(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Nil(t, got[0].MentionedUserID)
	assert.NotNil(t, got[1].MentionedUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
