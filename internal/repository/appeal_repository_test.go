package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/models"
)

var appealColumnNames = []string{"id", "public_token", "title", "description", "is_anonymous", "contact", "contact_type", "direction_id", "institute",
	"status", "priority", "assigned_to", "deadline", "created_at", "updated_at", "first_response_at", "closed_at"}

func appealRow(rows *sqlmock.Rows, id, status string, directionID interface{}) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "token-"+id, "Broken heating", "Room 204 is cold", false, "student@example.com", "email", directionID, nil,
		status, "normal", nil, nil, now, now, nil, nil)
}

func TestAppealRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appeals")).WillReturnResult(sqlmock.NewResult(1, 1))

	appeal := &models.Appeal{PublicToken: "tok", Title: "Broken heating", Description: "cold"}
	require.NoError(t, repo.Create(context.Background(), appeal))
	assert.NotEmpty(t, appeal.ID)
	assert.Equal(t, models.AppealStatusNew, appeal.Status)
	assert.Equal(t, models.AppealPriorityNormal, appeal.Priority)
	assert.False(t, appeal.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryFindByPublicTokenMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE public_token = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPublicToken(context.Background(), "nope")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryListScopedFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	rows := appealRow(sqlmock.NewRows(appealColumnNames), "appeal-1", "new", "dir-1")
	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE direction_id = ANY\(\$1\) AND status IN \(\$2\)`).
		WithArgs(sqlmock.AnyArg(), "new").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appeals WHERE direction_id = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.AppealFilter{
		DirectionScope: []string{"dir-1"},
		Status:         []models.AppealStatus{models.AppealStatusNew},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "dir-1", *list[0].DirectionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryListEmptyScopeMatchesNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE FALSE`).
		WillReturnRows(sqlmock.NewRows(appealColumnNames))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appeals WHERE FALSE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), models.AppealFilter{DirectionScope: []string{}})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryOverdueUsesEndOfDueDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectQuery(`WHERE deadline IS NOT NULL AND \(deadline \+ INTERVAL '24 hours'\) <= NOW\(\)`).
		WillReturnRows(sqlmock.NewRows(appealColumnNames))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appeals WHERE deadline IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AppealFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryListDueBetweenShiftsByDueDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	from := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`\(deadline \+ INTERVAL '24 hours'\) > \$1 AND \(deadline \+ INTERVAL '24 hours'\) <= \$2`).
		WithArgs(from, to).
		WillReturnRows(appealRow(sqlmock.NewRows(appealColumnNames), "appeal-1", "in_progress", "dir-1"))

	due, err := repo.ListDueBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryMutateCommitsRowAndHistory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE id = \$1 FOR UPDATE`).
		WithArgs("appeal-1").
		WillReturnRows(appealRow(sqlmock.NewRows(appealColumnNames), "appeal-1", "new", "dir-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appeals SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appeal_history")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	updated, entry, err := repo.Mutate(context.Background(), "appeal-1", nil, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		old := string(a.Status)
		a.Status = models.AppealStatusInProgress
		next := string(a.Status)
		return &models.AppealHistoryEntry{Action: models.HistoryStatusChanged, OldValue: &old, NewValue: &next}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppealStatusInProgress, updated.Status)
	require.NotNil(t, entry)
	assert.Equal(t, "appeal-1", entry.AppealID)
	assert.NotEmpty(t, entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryMutateScopedLookup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE id = \$1 AND direction_id = ANY\(\$2\) FOR UPDATE`).
		WithArgs("appeal-1", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.Mutate(context.Background(), "appeal-1", []string{"dir-2"}, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		t.Fatal("mutator must not run for out-of-scope rows")
		return nil, nil
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryMutateNoopRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(appealRow(sqlmock.NewRows(appealColumnNames), "appeal-1", "waiting", nil))
	mock.ExpectRollback()

	appeal, entry, err := repo.Mutate(context.Background(), "appeal-1", nil, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, models.AppealStatusWaiting, appeal.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryMutateHistoryFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(appealRow(sqlmock.NewRows(appealColumnNames), "appeal-1", "new", nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appeals SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appeal_history")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, _, err := repo.Mutate(context.Background(), "appeal-1", nil, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		a.Priority = models.AppealPriorityHigh
		return &models.AppealHistoryEntry{Action: models.HistoryPriorityChanged}, nil
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryMutatorErrorRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM appeals WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(appealRow(sqlmock.NewRows(appealColumnNames), "appeal-1", "new", nil))
	mock.ExpectRollback()

	denied := errors.New("denied")
	_, _, err := repo.Mutate(context.Background(), "appeal-1", nil, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		return nil, denied
	})
	require.ErrorIs(t, err, denied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppealRepositoryListHistory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppealRepository(db)

	rows := sqlmock.NewRows([]string{"id", "appeal_id", "action", "old_value", "new_value", "actor_id", "created_at"}).
		AddRow("h-1", "appeal-1", "status_changed", "new", "in_progress", "user-1", time.Now()).
		AddRow("h-2", "appeal-1", "assigned", nil, "user-2", "user-1", time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM appeal_history WHERE appeal_id = \$1`).
		WithArgs("appeal-1").
		WillReturnRows(rows)

	entries, err := repo.ListHistory(context.Background(), "appeal-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[1].OldValue)
	require.NoError(t, mock.ExpectationsWereMet())
}
