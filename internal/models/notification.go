package models

import (
	"encoding/json"
	"time"
)

// NotificationChannel identifies a delivery provider.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelPush     NotificationChannel = "push"
	ChannelTelegram NotificationChannel = "telegram"
)

// NotificationChannels lists the channels in dispatch order.
func NotificationChannels() []NotificationChannel {
	return []NotificationChannel{ChannelEmail, ChannelPush, ChannelTelegram}
}

// EventType identifies a lifecycle event.
type EventType string

const (
	EventStatusChanged  EventType = "status_changed"
	EventAppealAssigned EventType = "appeal_assigned"
	EventAppealComment  EventType = "appeal_comment"
	EventNewAppeal      EventType = "new_appeal"
	EventAppealOverdue  EventType = "appeal_overdue"
	EventAppealEscalate EventType = "appeal_escalated"
)

// NotificationTrack separates submitter-facing from staff-facing deliveries.
type NotificationTrack string

const (
	TrackPublic   NotificationTrack = "public"
	TrackInternal NotificationTrack = "internal"
)

// SubmitterContact is the public-track recipient of a status change.
type SubmitterContact struct {
	Contact     string
	ContactType ContactType
	PublicToken string
}

// AppealEvent is emitted by the lifecycle after a committed mutation.
type AppealEvent struct {
	Type         EventType         `json:"type"`
	AppealID     string            `json:"appeal_id"`
	ActorID      *string           `json:"actor_id,omitempty"`
	RecipientIDs []string          `json:"recipient_ids"`
	Payload      map[string]string `json:"payload"`
	Submitter    *SubmitterContact `json:"-"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// NotificationSettings is the per-user channel/event opt-in matrix.
type NotificationSettings struct {
	UserID string `db:"user_id" json:"user_id"`

	EmailEnabled        bool `db:"email_enabled" json:"email_enabled"`
	EmailAppealStatus   bool `db:"email_appeal_status" json:"email_appeal_status"`
	EmailAppealAssigned bool `db:"email_appeal_assigned" json:"email_appeal_assigned"`
	EmailAppealComment  bool `db:"email_appeal_comment" json:"email_appeal_comment"`
	EmailAppealNew      bool `db:"email_appeal_new" json:"email_appeal_new"`
	EmailAppealOverdue  bool `db:"email_appeal_overdue" json:"email_appeal_overdue"`
	EmailAppealEscalate bool `db:"email_appeal_escalated" json:"email_appeal_escalated"`

	PushEnabled        bool    `db:"push_enabled" json:"push_enabled"`
	PushAppealStatus   bool    `db:"push_appeal_status" json:"push_appeal_status"`
	PushAppealAssigned bool    `db:"push_appeal_assigned" json:"push_appeal_assigned"`
	PushAppealComment  bool    `db:"push_appeal_comment" json:"push_appeal_comment"`
	PushAppealNew      bool    `db:"push_appeal_new" json:"push_appeal_new"`
	PushAppealOverdue  bool    `db:"push_appeal_overdue" json:"push_appeal_overdue"`
	PushAppealEscalate bool    `db:"push_appeal_escalated" json:"push_appeal_escalated"`
	PushSubscription   *string `db:"push_subscription" json:"push_subscription,omitempty"`

	TelegramEnabled        bool    `db:"telegram_enabled" json:"telegram_enabled"`
	TelegramAppealStatus   bool    `db:"telegram_appeal_status" json:"telegram_appeal_status"`
	TelegramAppealAssigned bool    `db:"telegram_appeal_assigned" json:"telegram_appeal_assigned"`
	TelegramAppealComment  bool    `db:"telegram_appeal_comment" json:"telegram_appeal_comment"`
	TelegramAppealNew      bool    `db:"telegram_appeal_new" json:"telegram_appeal_new"`
	TelegramAppealOverdue  bool    `db:"telegram_appeal_overdue" json:"telegram_appeal_overdue"`
	TelegramAppealEscalate bool    `db:"telegram_appeal_escalated" json:"telegram_appeal_escalated"`
	TelegramChatID         *string `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultNotificationSettings returns the conservative defaults applied at
// registration: email for the core workflow events, other channels off.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:              userID,
		EmailEnabled:        true,
		EmailAppealStatus:   true,
		EmailAppealAssigned: true,
		EmailAppealComment:  true,
		EmailAppealNew:      true,
	}
}

// PushSubscriptionInfo is the stored push subscription; Token is the device
// registration token.
type PushSubscriptionInfo struct {
	Token string `json:"token"`
}

// PushToken extracts the device token from the stored subscription JSON.
func (s *NotificationSettings) PushToken() string {
	if s == nil || s.PushSubscription == nil || *s.PushSubscription == "" {
		return ""
	}
	var info PushSubscriptionInfo
	if err := json.Unmarshal([]byte(*s.PushSubscription), &info); err != nil {
		return ""
	}
	return info.Token
}

// Allows reports whether both the channel master toggle and the event toggle
// for that channel are on.
func (s *NotificationSettings) Allows(channel NotificationChannel, event EventType) bool {
	if s == nil {
		return false
	}
	switch channel {
	case ChannelEmail:
		return s.EmailEnabled && pickEvent(event, s.EmailAppealStatus, s.EmailAppealAssigned, s.EmailAppealComment, s.EmailAppealNew, s.EmailAppealOverdue, s.EmailAppealEscalate)
	case ChannelPush:
		return s.PushEnabled && pickEvent(event, s.PushAppealStatus, s.PushAppealAssigned, s.PushAppealComment, s.PushAppealNew, s.PushAppealOverdue, s.PushAppealEscalate)
	case ChannelTelegram:
		return s.TelegramEnabled && pickEvent(event, s.TelegramAppealStatus, s.TelegramAppealAssigned, s.TelegramAppealComment, s.TelegramAppealNew, s.TelegramAppealOverdue, s.TelegramAppealEscalate)
	default:
		return false
	}
}

func pickEvent(event EventType, status, assigned, comment, created, overdue, escalated bool) bool {
	switch event {
	case EventStatusChanged:
		return status
	case EventAppealAssigned:
		return assigned
	case EventAppealComment:
		return comment
	case EventNewAppeal:
		return created
	case EventAppealOverdue:
		return overdue
	case EventAppealEscalate:
		return escalated
	default:
		return false
	}
}

// NotificationLogEntry records one delivery attempt.
type NotificationLogEntry struct {
	ID        string              `db:"id" json:"id"`
	UserID    *string             `db:"user_id" json:"user_id,omitempty"`
	AppealID  *string             `db:"appeal_id" json:"appeal_id,omitempty"`
	Track     NotificationTrack   `db:"track" json:"track"`
	Channel   NotificationChannel `db:"channel" json:"channel"`
	EventType EventType           `db:"event_type" json:"event_type"`
	Recipient string              `db:"recipient" json:"-"`
	Success   bool                `db:"success" json:"success"`
	Error     *string             `db:"error" json:"error,omitempty"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	SentAt    *time.Time          `db:"sent_at" json:"sent_at,omitempty"`
}

// NotificationLogFilter narrows log listing.
type NotificationLogFilter struct {
	UserID   string
	AppealID string
	Channel  NotificationChannel
	Limit    int
	Offset   int
}
