package dto

import (
	"time"

	"github.com/noah-isme/council-portal-api/internal/models"
)

// AttachmentURLResponse carries a signed, expiring download link.
type AttachmentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateNotificationSettingsRequest replaces the caller's opt-in matrix.
type UpdateNotificationSettingsRequest struct {
	EmailEnabled        bool `json:"email_enabled"`
	EmailAppealStatus   bool `json:"email_appeal_status"`
	EmailAppealAssigned bool `json:"email_appeal_assigned"`
	EmailAppealComment  bool `json:"email_appeal_comment"`
	EmailAppealNew      bool `json:"email_appeal_new"`
	EmailAppealOverdue  bool `json:"email_appeal_overdue"`
	EmailAppealEscalate bool `json:"email_appeal_escalated"`

	PushEnabled        bool    `json:"push_enabled"`
	PushAppealStatus   bool    `json:"push_appeal_status"`
	PushAppealAssigned bool    `json:"push_appeal_assigned"`
	PushAppealComment  bool    `json:"push_appeal_comment"`
	PushAppealNew      bool    `json:"push_appeal_new"`
	PushAppealOverdue  bool    `json:"push_appeal_overdue"`
	PushAppealEscalate bool    `json:"push_appeal_escalated"`
	PushSubscription   *string `json:"push_subscription" validate:"omitempty,json,max=4096"`

	TelegramEnabled        bool    `json:"telegram_enabled"`
	TelegramAppealStatus   bool    `json:"telegram_appeal_status"`
	TelegramAppealAssigned bool    `json:"telegram_appeal_assigned"`
	TelegramAppealComment  bool    `json:"telegram_appeal_comment"`
	TelegramAppealNew      bool    `json:"telegram_appeal_new"`
	TelegramAppealOverdue  bool    `json:"telegram_appeal_overdue"`
	TelegramAppealEscalate bool    `json:"telegram_appeal_escalated"`
	TelegramChatID         *string `json:"telegram_chat_id" validate:"omitempty,max=64"`
}

// ContentRequest creates or replaces a content item.
type ContentRequest struct {
	Kind      models.ContentKind `json:"kind" validate:"required,oneof=news guide faq"`
	Slug      string             `json:"slug" validate:"required,min=2,max=120"`
	Title     string             `json:"title" validate:"required,min=2,max=200"`
	Body      string             `json:"body" validate:"required"`
	Published bool               `json:"published"`
}

// ContentQuery captures listing parameters.
type ContentQuery struct {
	Kind     models.ContentKind
	Page     int
	PageSize int
}

// CreateDirectionRequest creates a committee.
type CreateDirectionRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Slug        string  `json:"slug" validate:"required,min=2,max=64"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// GrantRoleRequest grants a council role.
type GrantRoleRequest struct {
	UserID      string          `json:"user_id" validate:"required,uuid"`
	Role        models.UserRole `json:"role" validate:"required,oneof=member lead board staff"`
	DirectionID *string         `json:"direction_id" validate:"omitempty,uuid"`
}

// RoleQuery filters grant listings.
type RoleQuery struct {
	UserID      string
	DirectionID string
	Role        models.UserRole
}

// StatsQuery bounds the statistics window.
type StatsQuery struct {
	From *time.Time
	To   *time.Time
}

// AuditMeta describes the request that triggered an audited change.
type AuditMeta struct {
	IPAddress string
	UserAgent string
}
