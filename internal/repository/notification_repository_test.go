package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/models"
)

func TestNotificationRepositoryGetSettings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	columns := []string{"user_id",
		"email_enabled", "email_appeal_status", "email_appeal_assigned", "email_appeal_comment", "email_appeal_new", "email_appeal_overdue", "email_appeal_escalated",
		"push_enabled", "push_appeal_status", "push_appeal_assigned", "push_appeal_comment", "push_appeal_new", "push_appeal_overdue", "push_appeal_escalated", "push_subscription",
		"telegram_enabled", "telegram_appeal_status", "telegram_appeal_assigned", "telegram_appeal_comment", "telegram_appeal_new", "telegram_appeal_overdue", "telegram_appeal_escalated", "telegram_chat_id",
		"updated_at"}
	rows := sqlmock.NewRows(columns).AddRow("user-1",
		true, false, true, true, true, false, false,
		true, true, true, false, false, false, false, `{"token":"fcm-1"}`,
		false, false, false, false, false, false, false, nil,
		time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM notification_settings WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	settings, err := repo.GetSettings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, settings.Allows(models.ChannelEmail, models.EventStatusChanged))
	assert.True(t, settings.Allows(models.ChannelPush, models.EventStatusChanged))
	assert.Equal(t, "fcm-1", settings.PushToken())
	assert.Nil(t, settings.TelegramChatID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryGetSettingsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM notification_settings`).WillReturnError(sql.ErrNoRows)
	_, err := repo.GetSettings(context.Background(), "user-2")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationRepositoryUpsertSettings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_settings")).WillReturnResult(sqlmock.NewResult(1, 1))
	settings := models.DefaultNotificationSettings("user-1")
	require.NoError(t, repo.UpsertSettings(context.Background(), settings))
	assert.False(t, settings.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryLogs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notification_logs")).WillReturnResult(sqlmock.NewResult(1, 1))
	userID := "user-1"
	entry := &models.NotificationLogEntry{UserID: &userID, Track: models.TrackInternal, Channel: models.ChannelPush, EventType: models.EventStatusChanged, Success: true}
	require.NoError(t, repo.CreateLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "appeal_id", "track", "channel", "event_type", "recipient", "success", "error", "created_at", "sent_at"}).
		AddRow(entry.ID, "user-1", "appeal-1", "internal", "push", "status_changed", "fcm-1", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM notification_logs WHERE user_id = \$1 AND channel = \$2 ORDER BY created_at DESC LIMIT 50 OFFSET 0`).
		WithArgs("user-1", "push").
		WillReturnRows(rows)

	logs, err := repo.ListLogs(context.Background(), models.NotificationLogFilter{UserID: "user-1", Channel: models.ChannelPush})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	require.NoError(t, mock.ExpectationsWereMet())
}
