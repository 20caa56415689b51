package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/models"
)

func TestAttachmentRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttachmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appeal_attachments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	item := &models.AppealAttachment{
		AppealID:  "appeal-1",
		FileName:  "photo.png",
		FilePath:  "appeal-1/photo.png",
		MimeType:  "image/png",
		SizeBytes: 2048,
	}
	require.NoError(t, repo.Create(context.Background(), item))
	require.NotEmpty(t, item.ID)

	rows := sqlmock.NewRows([]string{"id", "appeal_id", "file_name", "file_path", "mime_type", "size_bytes", "uploaded_at"}).
		AddRow(item.ID, "appeal-1", "photo.png", "appeal-1/photo.png", "image/png", 2048, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM appeal_attachments WHERE appeal_id = $1")).
		WithArgs("appeal-1").
		WillReturnRows(rows)
	items, err := repo.ListByAppeal(context.Background(), "appeal-1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appeal_attachments")).
		WithArgs("appeal-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	count, err := repo.CountByAppeal(context.Background(), "appeal-1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
