package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/council-portal-api/internal/models"
)

const settingsColumns = `user_id,
       email_enabled, email_appeal_status, email_appeal_assigned, email_appeal_comment, email_appeal_new, email_appeal_overdue, email_appeal_escalated,
       push_enabled, push_appeal_status, push_appeal_assigned, push_appeal_comment, push_appeal_new, push_appeal_overdue, push_appeal_escalated, push_subscription,
       telegram_enabled, telegram_appeal_status, telegram_appeal_assigned, telegram_appeal_comment, telegram_appeal_new, telegram_appeal_overdue, telegram_appeal_escalated, telegram_chat_id,
       updated_at`

const notificationLogColumns = `id, user_id, appeal_id, track, channel, event_type, recipient, success, error, created_at, sent_at`

// NotificationRepository persists notification preferences and delivery logs.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// GetSettings returns the stored matrix for a user; sql.ErrNoRows when the
// user never saved one.
func (r *NotificationRepository) GetSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	query := fmt.Sprintf("SELECT %s FROM notification_settings WHERE user_id = $1", settingsColumns)
	var settings models.NotificationSettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertSettings inserts or replaces the matrix of a user.
func (r *NotificationRepository) UpsertSettings(ctx context.Context, settings *models.NotificationSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO notification_settings (user_id,
	email_enabled, email_appeal_status, email_appeal_assigned, email_appeal_comment, email_appeal_new, email_appeal_overdue, email_appeal_escalated,
	push_enabled, push_appeal_status, push_appeal_assigned, push_appeal_comment, push_appeal_new, push_appeal_overdue, push_appeal_escalated, push_subscription,
	telegram_enabled, telegram_appeal_status, telegram_appeal_assigned, telegram_appeal_comment, telegram_appeal_new, telegram_appeal_overdue, telegram_appeal_escalated, telegram_chat_id,
	updated_at)
VALUES (:user_id,
	:email_enabled, :email_appeal_status, :email_appeal_assigned, :email_appeal_comment, :email_appeal_new, :email_appeal_overdue, :email_appeal_escalated,
	:push_enabled, :push_appeal_status, :push_appeal_assigned, :push_appeal_comment, :push_appeal_new, :push_appeal_overdue, :push_appeal_escalated, :push_subscription,
	:telegram_enabled, :telegram_appeal_status, :telegram_appeal_assigned, :telegram_appeal_comment, :telegram_appeal_new, :telegram_appeal_overdue, :telegram_appeal_escalated, :telegram_chat_id,
	:updated_at)
ON CONFLICT (user_id) DO UPDATE SET
	email_enabled = EXCLUDED.email_enabled, email_appeal_status = EXCLUDED.email_appeal_status, email_appeal_assigned = EXCLUDED.email_appeal_assigned,
	email_appeal_comment = EXCLUDED.email_appeal_comment, email_appeal_new = EXCLUDED.email_appeal_new, email_appeal_overdue = EXCLUDED.email_appeal_overdue,
	email_appeal_escalated = EXCLUDED.email_appeal_escalated,
	push_enabled = EXCLUDED.push_enabled, push_appeal_status = EXCLUDED.push_appeal_status, push_appeal_assigned = EXCLUDED.push_appeal_assigned,
	push_appeal_comment = EXCLUDED.push_appeal_comment, push_appeal_new = EXCLUDED.push_appeal_new, push_appeal_overdue = EXCLUDED.push_appeal_overdue,
	push_appeal_escalated = EXCLUDED.push_appeal_escalated, push_subscription = EXCLUDED.push_subscription,
	telegram_enabled = EXCLUDED.telegram_enabled, telegram_appeal_status = EXCLUDED.telegram_appeal_status, telegram_appeal_assigned = EXCLUDED.telegram_appeal_assigned,
	telegram_appeal_comment = EXCLUDED.telegram_appeal_comment, telegram_appeal_new = EXCLUDED.telegram_appeal_new, telegram_appeal_overdue = EXCLUDED.telegram_appeal_overdue,
	telegram_appeal_escalated = EXCLUDED.telegram_appeal_escalated, telegram_chat_id = EXCLUDED.telegram_chat_id,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert notification settings: %w", err)
	}
	return nil
}

// CreateLog appends a delivery attempt.
func (r *NotificationRepository) CreateLog(ctx context.Context, entry *models.NotificationLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notification_logs (id, user_id, appeal_id, track, channel, event_type, recipient, success, error, created_at, sent_at)
VALUES (:id, :user_id, :appeal_id, :track, :channel, :event_type, :recipient, :success, :error, :created_at, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}
	return nil
}

// ListLogs returns delivery attempts, latest first.
func (r *NotificationRepository) ListLogs(ctx context.Context, filter models.NotificationLogFilter) ([]models.NotificationLogEntry, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM notification_logs", notificationLogColumns))
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 3)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.AppealID != "" {
		args = append(args, filter.AppealID)
		conditions = append(conditions, fmt.Sprintf("appeal_id = $%d", len(args)))
	}
	if filter.Channel != "" {
		args = append(args, filter.Channel)
		conditions = append(conditions, fmt.Sprintf("channel = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var entries []models.NotificationLogEntry
	if err := r.db.SelectContext(ctx, &entries, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	return entries, nil
}
