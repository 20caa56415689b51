package service

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/notify"
)

type templateData struct {
	Title       string
	Status      string
	StatusLabel string
	OldStatus   string
	Priority    string
	Comment     string
	Deadline    string
	Link        string
}

type messageTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func mustMessageTemplate(name, subject, text, html string) *messageTemplate {
	return &messageTemplate{
		subject: texttemplate.Must(texttemplate.New(name + "_subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + "_text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + "_html").Parse(html)),
	}
}

func (t *messageTemplate) render(data templateData) (notify.Message, error) {
	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return notify.Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return notify.Message{}, fmt.Errorf("render text: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return notify.Message{}, fmt.Errorf("render html: %w", err)
	}
	return notify.Message{
		Subject: strings.TrimSpace(subject.String()),
		Text:    strings.TrimSpace(text.String()),
		HTML:    html.String(),
		Link:    data.Link,
	}, nil
}

var internalTemplates = map[models.EventType]*messageTemplate{
	models.EventStatusChanged: mustMessageTemplate("status_changed",
		`Appeal status changed: {{.Title}}`,
		`The appeal "{{.Title}}" moved from {{.OldStatus}} to {{.StatusLabel}}. {{.Link}}`,
		`<p>The appeal <strong>{{.Title}}</strong> moved from {{.OldStatus}} to <strong>{{.StatusLabel}}</strong>.</p><p><a href="{{.Link}}">Open appeal</a></p>`),
	models.EventAppealAssigned: mustMessageTemplate("appeal_assigned",
		`New appeal assigned to you: {{.Title}}`,
		`You have been assigned the appeal "{{.Title}}" (priority {{.Priority}}). {{.Link}}`,
		`<p>You have been assigned the appeal <strong>{{.Title}}</strong> (priority {{.Priority}}).</p><p><a href="{{.Link}}">Open appeal</a></p>`),
	models.EventAppealComment: mustMessageTemplate("appeal_comment",
		`New comment on {{.Title}}`,
		`New comment on "{{.Title}}": {{.Comment}} {{.Link}}`,
		`<p>New comment on <strong>{{.Title}}</strong>:</p><blockquote>{{.Comment}}</blockquote><p><a href="{{.Link}}">Open appeal</a></p>`),
	models.EventNewAppeal: mustMessageTemplate("new_appeal",
		`New appeal: {{.Title}}`,
		`A new appeal "{{.Title}}" is waiting for triage. {{.Link}}`,
		`<p>A new appeal <strong>{{.Title}}</strong> is waiting for triage.</p><p><a href="{{.Link}}">Open appeal</a></p>`),
	models.EventAppealOverdue: mustMessageTemplate("appeal_overdue",
		`Appeal overdue: {{.Title}}`,
		`The appeal "{{.Title}}" passed its deadline of {{.Deadline}} and is still {{.StatusLabel}}. {{.Link}}`,
		`<p>The appeal <strong>{{.Title}}</strong> passed its deadline of {{.Deadline}} and is still {{.StatusLabel}}.</p><p><a href="{{.Link}}">Open appeal</a></p>`),
	models.EventAppealEscalate: mustMessageTemplate("appeal_escalated",
		`Appeal escalated: {{.Title}}`,
		`The appeal "{{.Title}}" was escalated. {{.Link}}`,
		`<p>The appeal <strong>{{.Title}}</strong> was escalated.</p><p><a href="{{.Link}}">Open appeal</a></p>`),
}

// Submitter-facing messages are keyed by the new status and never mention
// staff-side details such as assignment.
var publicTemplates = map[models.AppealStatus]*messageTemplate{
	models.AppealStatusNew: mustMessageTemplate("public_accepted",
		`Your appeal has been accepted`,
		`Your appeal "{{.Title}}" has been accepted and is queued for review. Track it here: {{.Link}}`,
		`<p>Your appeal <strong>{{.Title}}</strong> has been accepted and is queued for review.</p><p><a href="{{.Link}}">Check status</a></p>`),
	models.AppealStatusInProgress: mustMessageTemplate("public_in_progress",
		`Your appeal is in progress`,
		`The council is working on your appeal "{{.Title}}". Track it here: {{.Link}}`,
		`<p>The council is working on your appeal <strong>{{.Title}}</strong>.</p><p><a href="{{.Link}}">Check status</a></p>`),
	models.AppealStatusWaiting: mustMessageTemplate("public_needs_info",
		`More information needed for your appeal`,
		`We need more information about your appeal "{{.Title}}". Please check the status page: {{.Link}}`,
		`<p>We need more information about your appeal <strong>{{.Title}}</strong>.</p><p><a href="{{.Link}}">Check status</a></p>`),
	models.AppealStatusClosed: mustMessageTemplate("public_closed",
		`Your appeal has been closed`,
		`Your appeal "{{.Title}}" has been resolved and closed. Details: {{.Link}}`,
		`<p>Your appeal <strong>{{.Title}}</strong> has been resolved and closed.</p><p><a href="{{.Link}}">Check status</a></p>`),
}

// NotificationTemplates renders channel-neutral messages for both tracks.
type NotificationTemplates struct {
	baseURL string
}

// NewNotificationTemplates builds the renderer. baseURL is the public portal
// origin used for status and back-office links.
func NewNotificationTemplates(baseURL string) *NotificationTemplates {
	return &NotificationTemplates{baseURL: strings.TrimRight(baseURL, "/")}
}

// StatusLink is the anonymous status-check page for a public token.
func (t *NotificationTemplates) StatusLink(token string) string {
	return t.baseURL + "/status/" + token
}

// AppealLink is the back-office page of an appeal.
func (t *NotificationTemplates) AppealLink(appealID string) string {
	return t.baseURL + "/admin/appeals/" + appealID
}

// Internal renders the staff-facing message for event.
func (t *NotificationTemplates) Internal(event models.AppealEvent) (notify.Message, error) {
	tmpl, ok := internalTemplates[event.Type]
	if !ok {
		return notify.Message{}, fmt.Errorf("no template for event %s", event.Type)
	}
	data := eventTemplateData(event)
	data.Link = t.AppealLink(event.AppealID)
	msg, err := tmpl.render(data)
	if err != nil {
		return msg, err
	}
	msg.Data = map[string]string{"appeal_id": event.AppealID, "event": string(event.Type)}
	return msg, nil
}

// Public renders the submitter-facing message for a status change.
func (t *NotificationTemplates) Public(event models.AppealEvent) (notify.Message, error) {
	status := models.AppealStatus(event.Payload["new_status"])
	tmpl, ok := publicTemplates[status]
	if !ok {
		return notify.Message{}, fmt.Errorf("no public template for status %q", status)
	}
	if event.Submitter == nil {
		return notify.Message{}, fmt.Errorf("event has no submitter contact")
	}
	data := eventTemplateData(event)
	data.Link = t.StatusLink(event.Submitter.PublicToken)
	return tmpl.render(data)
}

func eventTemplateData(event models.AppealEvent) templateData {
	status := event.Payload["new_status"]
	if status == "" {
		status = event.Payload["status"]
	}
	data := templateData{
		Title:     event.Payload["title"],
		Status:    status,
		OldStatus: event.Payload["old_status"],
		Priority:  event.Payload["priority"],
		Comment:   event.Payload["comment"],
		Deadline:  event.Payload["deadline"],
	}
	if status != "" {
		data.StatusLabel = models.DescribeStatus(models.AppealStatus(status)).Label
	}
	if data.OldStatus != "" {
		data.OldStatus = models.DescribeStatus(models.AppealStatus(data.OldStatus)).Label
	}
	return data
}
