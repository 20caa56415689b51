package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/jobs"
	"github.com/noah-isme/council-portal-api/pkg/notify"
)

const logWriteTimeout = 5 * time.Second

type notificationSettingsReader interface {
	GetSettings(ctx context.Context, userID string) (*models.NotificationSettings, error)
}

type notificationLogWriter interface {
	CreateLog(ctx context.Context, entry *models.NotificationLogEntry) error
}

type profileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// NotificationDispatcherConfig tunes delivery deadlines.
type NotificationDispatcherConfig struct {
	ChannelTimeout  time.Duration
	DispatchTimeout time.Duration
}

// NotificationDispatcher fans lifecycle events out to delivery providers. The
// public track informs the submitter of status changes; the internal track
// informs staff per their notification settings. Outcomes are logged and
// never returned to the caller.
type NotificationDispatcher struct {
	settings  notificationSettingsReader
	logs      notificationLogWriter
	profiles  profileFinder
	senders   map[models.NotificationChannel]notify.Sender
	templates *NotificationTemplates
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       NotificationDispatcherConfig
	now       func() time.Time
}

// NotificationDispatcherParams groups constructor dependencies.
type NotificationDispatcherParams struct {
	Settings  notificationSettingsReader
	Logs      notificationLogWriter
	Profiles  profileFinder
	Senders   map[models.NotificationChannel]notify.Sender
	Templates *NotificationTemplates
	Metrics   *MetricsService
	Logger    *zap.Logger
	Config    NotificationDispatcherConfig
}

// NewNotificationDispatcher constructs the dispatcher. Channels without a
// sender fail with notify.ErrNotConfigured.
func NewNotificationDispatcher(params NotificationDispatcherParams) *NotificationDispatcher {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 10 * time.Second
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 30 * time.Second
	}
	senders := make(map[models.NotificationChannel]notify.Sender, len(models.NotificationChannels()))
	for _, channel := range models.NotificationChannels() {
		senders[channel] = notify.Unconfigured{}
	}
	for channel, sender := range params.Senders {
		if sender != nil {
			senders[channel] = sender
		}
	}
	templates := params.Templates
	if templates == nil {
		templates = NewNotificationTemplates("")
	}
	return &NotificationDispatcher{
		settings:  params.Settings,
		logs:      params.Logs,
		profiles:  params.Profiles,
		senders:   senders,
		templates: templates,
		metrics:   params.Metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// HandleJob adapts Dispatch to the job queue. It never asks for a retry since
// every attempt is already recorded in the delivery log.
func (d *NotificationDispatcher) HandleJob(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.AppealEvent)
	if !ok {
		d.logger.Error("unexpected notification job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	d.Dispatch(ctx, event)
	return nil
}

// Dispatch delivers event on both tracks concurrently and waits for every
// attempt to finish or time out.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, event models.AppealEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.DispatchTimeout)
	defer cancel()

	var wg conc.WaitGroup
	if event.Type == models.EventStatusChanged && event.Submitter != nil {
		wg.Go(func() { d.dispatchPublic(ctx, event) })
	}
	for _, userID := range uniqueStrings(event.RecipientIDs) {
		userID := userID
		wg.Go(func() { d.dispatchInternal(ctx, userID, event) })
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		d.logger.Error("notification dispatch panicked",
			zap.String("event", string(event.Type)),
			zap.String("appeal_id", event.AppealID),
			zap.String("panic", recovered.String()),
		)
	}
}

func (d *NotificationDispatcher) dispatchInternal(ctx context.Context, userID string, event models.AppealEvent) {
	settings, err := d.settings.GetSettings(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		settings = models.DefaultNotificationSettings(userID)
	} else if err != nil {
		d.logger.Warn("failed to load notification settings",
			zap.String("user_id", userID),
			zap.String("appeal_id", event.AppealID),
			zap.Error(err),
		)
		return
	}

	var channels []models.NotificationChannel
	for _, channel := range models.NotificationChannels() {
		if settings.Allows(channel, event.Type) {
			channels = append(channels, channel)
		}
	}
	if len(channels) == 0 {
		return
	}

	msg, renderErr := d.templates.Internal(event)

	var wg conc.WaitGroup
	for _, channel := range channels {
		channel := channel
		wg.Go(func() {
			entry := d.newLogEntry(models.TrackInternal, channel, event)
			entry.UserID = &userID
			if renderErr != nil {
				d.finish(ctx, entry, 0, renderErr)
				return
			}
			recipient, err := d.internalRecipient(ctx, channel, userID, settings)
			if err != nil {
				d.finish(ctx, entry, 0, err)
				return
			}
			entry.Recipient = recipient
			elapsed, err := d.send(ctx, channel, recipient, msg)
			d.finish(ctx, entry, elapsed, err)
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		d.logger.Error("channel delivery panicked", zap.String("user_id", userID), zap.String("panic", recovered.String()))
	}
}

func (d *NotificationDispatcher) dispatchPublic(ctx context.Context, event models.AppealEvent) {
	submitter := event.Submitter
	var channel models.NotificationChannel
	switch submitter.ContactType {
	case models.ContactTypeEmail:
		channel = models.ChannelEmail
	case models.ContactTypeTelegram:
		channel = models.ChannelTelegram
	default:
		d.logger.Warn("unsupported submitter contact type",
			zap.String("appeal_id", event.AppealID),
			zap.String("contact_type", string(submitter.ContactType)),
		)
		return
	}

	entry := d.newLogEntry(models.TrackPublic, channel, event)
	entry.Recipient = submitter.Contact
	msg, err := d.templates.Public(event)
	if err != nil {
		d.finish(ctx, entry, 0, err)
		return
	}
	elapsed, err := d.send(ctx, channel, submitter.Contact, msg)
	d.finish(ctx, entry, elapsed, err)
}

func (d *NotificationDispatcher) send(ctx context.Context, channel models.NotificationChannel, recipient string, msg notify.Message) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.ChannelTimeout)
	defer cancel()
	start := d.now()
	err := d.senders[channel].Send(ctx, recipient, msg)
	return d.now().Sub(start), err
}

func (d *NotificationDispatcher) internalRecipient(ctx context.Context, channel models.NotificationChannel, userID string, settings *models.NotificationSettings) (string, error) {
	switch channel {
	case models.ChannelEmail:
		if d.profiles == nil {
			return "", notify.ErrNotConfigured
		}
		profile, err := d.profiles.FindByID(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("resolve email address: %w", err)
		}
		if strings.TrimSpace(profile.Email) == "" {
			return "", errors.New("user has no email address")
		}
		return profile.Email, nil
	case models.ChannelPush:
		token := settings.PushToken()
		if token == "" {
			return "", errors.New("push subscription missing")
		}
		return token, nil
	case models.ChannelTelegram:
		if settings.TelegramChatID == nil || strings.TrimSpace(*settings.TelegramChatID) == "" {
			return "", errors.New("telegram chat id missing")
		}
		return *settings.TelegramChatID, nil
	default:
		return "", fmt.Errorf("unknown channel %s", channel)
	}
}

func (d *NotificationDispatcher) newLogEntry(track models.NotificationTrack, channel models.NotificationChannel, event models.AppealEvent) *models.NotificationLogEntry {
	entry := &models.NotificationLogEntry{
		ID:        uuid.NewString(),
		Track:     track,
		Channel:   channel,
		EventType: event.Type,
		CreatedAt: d.now().UTC(),
	}
	if event.AppealID != "" {
		appealID := event.AppealID
		entry.AppealID = &appealID
	}
	return entry
}

// finish records the attempt. The log write is detached from the dispatch
// deadline so timed-out attempts are still recorded.
func (d *NotificationDispatcher) finish(ctx context.Context, entry *models.NotificationLogEntry, elapsed time.Duration, sendErr error) {
	if sendErr == nil {
		sentAt := d.now().UTC()
		entry.Success = true
		entry.SentAt = &sentAt
	} else {
		msg := sendErr.Error()
		entry.Error = &msg
		d.logger.Warn("notification delivery failed",
			zap.String("track", string(entry.Track)),
			zap.String("channel", string(entry.Channel)),
			zap.String("event", string(entry.EventType)),
			zap.String("appeal_id", derefString(entry.AppealID)),
			zap.Error(sendErr),
		)
	}
	if d.metrics != nil {
		d.metrics.RecordDelivery(entry.Track, entry.Channel, entry.Success, elapsed)
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logWriteTimeout)
	defer cancel()
	if err := d.logs.CreateLog(logCtx, entry); err != nil {
		d.logger.Error("failed to write notification log",
			zap.String("channel", string(entry.Channel)),
			zap.String("appeal_id", derefString(entry.AppealID)),
			zap.Error(err),
		)
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
