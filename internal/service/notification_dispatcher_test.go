package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/jobs"
	"github.com/noah-isme/council-portal-api/pkg/notify"
)

type settingsStub map[string]*models.NotificationSettings

func (s settingsStub) GetSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	if settings, ok := s[userID]; ok {
		return settings, nil
	}
	return nil, sql.ErrNoRows
}

type logRecorder struct {
	mu      sync.Mutex
	entries []models.NotificationLogEntry
}

func (l *logRecorder) CreateLog(ctx context.Context, entry *models.NotificationLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *logRecorder) byChannel(channel models.NotificationChannel) []models.NotificationLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.NotificationLogEntry
	for _, e := range l.entries {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

type profileStub map[string]*models.Profile

func (p profileStub) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if profile, ok := p[id]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

type recordingSender struct {
	mu       sync.Mutex
	err      error
	block    bool
	received []string
	messages []notify.Message
}

func (s *recordingSender) Send(ctx context.Context, recipient string, msg notify.Message) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, recipient)
	s.messages = append(s.messages, msg)
	return s.err
}

func (s *recordingSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func pushSubscription(token string) *string {
	raw := `{"token":"` + token + `"}`
	return &raw
}

func newTestDispatcher(settings settingsStub, logs *logRecorder, senders map[models.NotificationChannel]notify.Sender) *NotificationDispatcher {
	return NewNotificationDispatcher(NotificationDispatcherParams{
		Settings:  settings,
		Logs:      logs,
		Profiles:  profileStub{"user-1": {ID: "user-1", Email: "lead@council.example"}},
		Senders:   senders,
		Templates: NewNotificationTemplates("https://council.example"),
		Metrics:   NewMetricsService(),
		Config:    NotificationDispatcherConfig{ChannelTimeout: 50 * time.Millisecond, DispatchTimeout: time.Second},
	})
}

func statusEvent(recipients ...string) models.AppealEvent {
	return models.AppealEvent{
		Type:         models.EventStatusChanged,
		AppealID:     "appeal-1",
		RecipientIDs: recipients,
		Payload:      map[string]string{"title": "Broken heating", "old_status": "new", "new_status": "in_progress"},
	}
}

func TestDispatchRespectsEventToggle(t *testing.T) {
	settings := settingsStub{"user-1": {
		UserID:            "user-1",
		EmailEnabled:      true,
		EmailAppealStatus: false,
		PushEnabled:       true,
		PushAppealStatus:  true,
		PushSubscription:  pushSubscription("device-token"),
	}}
	logs := &logRecorder{}
	email, push := &recordingSender{}, &recordingSender{}
	d := newTestDispatcher(settings, logs, map[models.NotificationChannel]notify.Sender{
		models.ChannelEmail: email,
		models.ChannelPush:  push,
	})

	d.Dispatch(context.Background(), statusEvent("user-1"))

	assert.Zero(t, email.calls())
	assert.Empty(t, logs.byChannel(models.ChannelEmail))
	pushLogs := logs.byChannel(models.ChannelPush)
	require.Len(t, pushLogs, 1)
	assert.True(t, pushLogs[0].Success)
	assert.Equal(t, models.TrackInternal, pushLogs[0].Track)
	assert.Equal(t, "user-1", *pushLogs[0].UserID)
	assert.Equal(t, []string{"device-token"}, push.received)
	assert.Empty(t, logs.byChannel(models.ChannelTelegram))
}

func TestDispatchChannelsFailIndependently(t *testing.T) {
	settings := settingsStub{"user-1": {
		UserID:                 "user-1",
		EmailEnabled:           true,
		EmailAppealAssigned:    true,
		TelegramEnabled:        true,
		TelegramAppealAssigned: true,
		TelegramChatID:         strPtr("4242"),
	}}
	logs := &logRecorder{}
	email := &recordingSender{err: errors.New("smtp: 421 try later")}
	telegram := &recordingSender{}
	d := newTestDispatcher(settings, logs, map[models.NotificationChannel]notify.Sender{
		models.ChannelEmail:    email,
		models.ChannelTelegram: telegram,
	})

	d.Dispatch(context.Background(), models.AppealEvent{
		Type:         models.EventAppealAssigned,
		AppealID:     "appeal-1",
		RecipientIDs: []string{"user-1"},
		Payload:      map[string]string{"title": "Broken heating", "priority": "high"},
	})

	emailLogs := logs.byChannel(models.ChannelEmail)
	require.Len(t, emailLogs, 1)
	assert.False(t, emailLogs[0].Success)
	assert.Contains(t, *emailLogs[0].Error, "421")
	assert.Nil(t, emailLogs[0].SentAt)

	telegramLogs := logs.byChannel(models.ChannelTelegram)
	require.Len(t, telegramLogs, 1)
	assert.True(t, telegramLogs[0].Success)
	assert.Equal(t, []string{"4242"}, telegram.received)
	assert.Equal(t, []string{"lead@council.example"}, email.received)
}

func TestDispatchSlowChannelTimesOut(t *testing.T) {
	settings := settingsStub{"user-1": {
		UserID:            "user-1",
		EmailEnabled:      true,
		EmailAppealStatus: true,
		PushEnabled:       true,
		PushAppealStatus:  true,
		PushSubscription:  pushSubscription("device-token"),
	}}
	logs := &logRecorder{}
	d := newTestDispatcher(settings, logs, map[models.NotificationChannel]notify.Sender{
		models.ChannelEmail: &recordingSender{block: true},
		models.ChannelPush:  &recordingSender{},
	})

	start := time.Now()
	d.Dispatch(context.Background(), statusEvent("user-1"))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	emailLogs := logs.byChannel(models.ChannelEmail)
	require.Len(t, emailLogs, 1)
	assert.False(t, emailLogs[0].Success)
	assert.Contains(t, *emailLogs[0].Error, context.DeadlineExceeded.Error())
	require.Len(t, logs.byChannel(models.ChannelPush), 1)
	assert.True(t, logs.byChannel(models.ChannelPush)[0].Success)
}

func TestDispatchUsesDefaultsWithoutSettingsRow(t *testing.T) {
	logs := &logRecorder{}
	email := &recordingSender{}
	d := newTestDispatcher(settingsStub{}, logs, map[models.NotificationChannel]notify.Sender{models.ChannelEmail: email})

	d.Dispatch(context.Background(), statusEvent("user-1"))

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.ChannelEmail, logs.entries[0].Channel)
	require.Len(t, email.messages, 1)
	assert.Equal(t, "https://council.example/admin/appeals/appeal-1", email.messages[0].Link)
}

func TestDispatchUnconfiguredChannelIsLogged(t *testing.T) {
	settings := settingsStub{"user-1": {
		UserID:               "user-1",
		TelegramEnabled:      true,
		TelegramAppealStatus: true,
		TelegramChatID:       strPtr("4242"),
	}}
	logs := &logRecorder{}
	d := newTestDispatcher(settings, logs, nil)

	d.Dispatch(context.Background(), statusEvent("user-1"))

	require.Len(t, logs.entries, 1)
	assert.False(t, logs.entries[0].Success)
	assert.Equal(t, notify.ErrNotConfigured.Error(), *logs.entries[0].Error)
}

func TestDispatchPublicTrack(t *testing.T) {
	logs := &logRecorder{}
	email := &recordingSender{}
	d := newTestDispatcher(settingsStub{}, logs, map[models.NotificationChannel]notify.Sender{models.ChannelEmail: email})

	event := statusEvent()
	event.Payload["new_status"] = "waiting"
	event.Submitter = &models.SubmitterContact{
		Contact:     "student@example.com",
		ContactType: models.ContactTypeEmail,
		PublicToken: "tok-123",
	}
	d.Dispatch(context.Background(), event)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, models.TrackPublic, entry.Track)
	assert.Nil(t, entry.UserID)
	assert.True(t, entry.Success)
	require.Len(t, email.messages, 1)
	assert.Equal(t, []string{"student@example.com"}, email.received)
	assert.Equal(t, "https://council.example/status/tok-123", email.messages[0].Link)
	assert.Equal(t, "More information needed for your appeal", email.messages[0].Subject)
	assert.NotContains(t, strings.ToLower(email.messages[0].Text), "assign")
}

func TestDispatchPublicFailureIsSwallowed(t *testing.T) {
	logs := &logRecorder{}
	telegram := &recordingSender{err: errors.New("chat not found")}
	d := newTestDispatcher(settingsStub{}, logs, map[models.NotificationChannel]notify.Sender{models.ChannelTelegram: telegram})

	event := statusEvent()
	event.Submitter = &models.SubmitterContact{Contact: "@student", ContactType: models.ContactTypeTelegram, PublicToken: "tok"}
	d.Dispatch(context.Background(), event)

	require.Len(t, logs.entries, 1)
	assert.False(t, logs.entries[0].Success)
	assert.Equal(t, models.ChannelTelegram, logs.entries[0].Channel)
}

func TestDispatchPublicTrackOnlyForStatusChanges(t *testing.T) {
	logs := &logRecorder{}
	email := &recordingSender{}
	d := newTestDispatcher(settingsStub{}, logs, map[models.NotificationChannel]notify.Sender{models.ChannelEmail: email})

	d.Dispatch(context.Background(), models.AppealEvent{
		Type:      models.EventAppealComment,
		AppealID:  "appeal-1",
		Payload:   map[string]string{"title": "x", "comment": "y"},
		Submitter: &models.SubmitterContact{Contact: "student@example.com", ContactType: models.ContactTypeEmail},
	})
	assert.Empty(t, logs.entries)
	assert.Zero(t, email.calls())
}

func TestHandleJobNeverRetries(t *testing.T) {
	logs := &logRecorder{}
	d := newTestDispatcher(settingsStub{}, logs, nil)

	require.NoError(t, d.HandleJob(context.Background(), jobs.Job{ID: "1", Payload: "garbage"}))
	require.NoError(t, d.HandleJob(context.Background(), jobs.Job{ID: "2", Payload: statusEvent("user-1")}))
	require.Len(t, logs.entries, 1)
	assert.False(t, logs.entries[0].Success)
}

func TestPublicTemplatesCoverEveryStatus(t *testing.T) {
	templates := NewNotificationTemplates("https://council.example/")
	for _, status := range models.AppealStatuses() {
		event := statusEvent()
		event.Payload["new_status"] = string(status)
		event.Submitter = &models.SubmitterContact{PublicToken: "tok"}
		msg, err := templates.Public(event)
		require.NoError(t, err, status)
		assert.NotEmpty(t, msg.Subject)
		assert.Contains(t, msg.Text, "https://council.example/status/tok")
	}
}
