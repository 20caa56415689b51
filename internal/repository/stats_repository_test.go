package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/models"
)

func TestStatsRepositoryOverviewScoped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appeals WHERE 1=1 AND direction_id = ANY\(\$1\)$`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT status AS key`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("new", 3).AddRow("closed", 2))
	mock.ExpectQuery(`SELECT priority AS key`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("normal", 5))
	mock.ExpectQuery(`SELECT COALESCE\(direction_id::text, 'none'\) AS key`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("dir-1", 5))
	mock.ExpectQuery(`deadline \+ INTERVAL '24 hours'\) <= NOW\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`AVG\(EXTRACT`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(12.5))

	overview, err := repo.Overview(context.Background(), models.StatsFilter{DirectionScope: []string{"dir-1"}})
	require.NoError(t, err)
	assert.Equal(t, 5, overview.Total)
	assert.Len(t, overview.ByStatus, 2)
	assert.Equal(t, 1, overview.Overdue)
	assert.InDelta(t, 12.5, overview.AvgFirstResponseHours, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}
