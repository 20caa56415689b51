package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
)

type notificationSettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*models.NotificationSettings, error)
	UpsertSettings(ctx context.Context, settings *models.NotificationSettings) error
	ListLogs(ctx context.Context, filter models.NotificationLogFilter) ([]models.NotificationLogEntry, error)
}

// NotificationSettingsService lets staff manage their own delivery preferences.
type NotificationSettingsService struct {
	repo      notificationSettingsStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationSettingsService constructs the service.
func NewNotificationSettingsService(repo notificationSettingsStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *NotificationSettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationSettingsService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns the caller's settings, or the defaults when none were saved.
func (s *NotificationSettingsService) Get(ctx context.Context, actor *models.Principal) (*models.NotificationSettings, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	settings, err := s.repo.GetSettings(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultNotificationSettings(actor.UserID), nil
		}
		return nil, appErrors.Storage(err, "failed to load notification settings")
	}
	return settings, nil
}

// Update replaces the caller's settings.
func (s *NotificationSettingsService) Update(ctx context.Context, actor *models.Principal, req dto.UpdateNotificationSettingsRequest, meta dto.AuditMeta) (*models.NotificationSettings, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	req.PushSubscription = trimOptional(req.PushSubscription)
	req.TelegramChatID = trimOptional(req.TelegramChatID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification settings")
	}
	settings := &models.NotificationSettings{
		UserID:                 actor.UserID,
		EmailEnabled:           req.EmailEnabled,
		EmailAppealStatus:      req.EmailAppealStatus,
		EmailAppealAssigned:    req.EmailAppealAssigned,
		EmailAppealComment:     req.EmailAppealComment,
		EmailAppealNew:         req.EmailAppealNew,
		EmailAppealOverdue:     req.EmailAppealOverdue,
		EmailAppealEscalate:    req.EmailAppealEscalate,
		PushEnabled:            req.PushEnabled,
		PushAppealStatus:       req.PushAppealStatus,
		PushAppealAssigned:     req.PushAppealAssigned,
		PushAppealComment:      req.PushAppealComment,
		PushAppealNew:          req.PushAppealNew,
		PushAppealOverdue:      req.PushAppealOverdue,
		PushAppealEscalate:     req.PushAppealEscalate,
		PushSubscription:       req.PushSubscription,
		TelegramEnabled:        req.TelegramEnabled,
		TelegramAppealStatus:   req.TelegramAppealStatus,
		TelegramAppealAssigned: req.TelegramAppealAssigned,
		TelegramAppealComment:  req.TelegramAppealComment,
		TelegramAppealNew:      req.TelegramAppealNew,
		TelegramAppealOverdue:  req.TelegramAppealOverdue,
		TelegramAppealEscalate: req.TelegramAppealEscalate,
		TelegramChatID:         req.TelegramChatID,
	}
	if settings.PushEnabled && settings.PushToken() == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "push_subscription with a device token is required to enable push")
	}
	if settings.TelegramEnabled && settings.TelegramChatID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "telegram_chat_id is required to enable telegram")
	}
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, appErrors.Storage(err, "failed to save notification settings")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionSettingsUpdate, "notification_settings", actor.UserID, nil, settings)
	return settings, nil
}

// Logs lists the caller's own delivery attempts.
func (s *NotificationSettingsService) Logs(ctx context.Context, actor *models.Principal, channel string, limit, offset int) ([]models.NotificationLogEntry, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	filter := models.NotificationLogFilter{UserID: actor.UserID, Limit: limit, Offset: offset}
	if channel = strings.TrimSpace(channel); channel != "" {
		filter.Channel = models.NotificationChannel(channel)
		if !validChannel(filter.Channel) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown channel")
		}
	}
	entries, err := s.repo.ListLogs(ctx, filter)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list notification logs")
	}
	return entries, nil
}

func validChannel(channel models.NotificationChannel) bool {
	for _, c := range models.NotificationChannels() {
		if c == channel {
			return true
		}
	}
	return false
}
