package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
)

func TestActivityCreateStampsIDAndTime(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO system_activity (id, actor, user_id, action, district, details, timestamp) VALUES (")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.SystemActivity{User: "Ada Lovelace", Action: models.ActivityLogin, District: "Henrico"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, actor, user_id, action, district, details, timestamp FROM system_activity WHERE district = $1 AND action = $2 ORDER BY timestamp DESC LIMIT 50 OFFSET 10")).
		WithArgs("Henrico", models.ActivityStatusChange).
		WillReturnRows(sqlmock.NewRows(activityColumnList).
			AddRow("a1", "Staff", nil, models.ActivityStatusChange, "Henrico", "Request approved", now))

	out, err := repo.List(context.Background(), models.ActivityFilter{
		District: "Henrico",
		Action:   models.ActivityStatusChange,
		Limit:    50,
		Offset:   10,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Staff", out[0].User)
	assert.Nil(t, out[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
