package models

import "time"

// AppealStatus enumerates lifecycle states of an appeal.
type AppealStatus string

const (
	AppealStatusNew        AppealStatus = "new"
	AppealStatusInProgress AppealStatus = "in_progress"
	AppealStatusWaiting    AppealStatus = "waiting"
	AppealStatusClosed     AppealStatus = "closed"
)

// AppealPriority orders appeals for triage.
type AppealPriority string

const (
	AppealPriorityLow    AppealPriority = "low"
	AppealPriorityNormal AppealPriority = "normal"
	AppealPriorityHigh   AppealPriority = "high"
	AppealPriorityUrgent AppealPriority = "urgent"
)

// ContactType identifies how an anonymous submitter wants to be reached.
type ContactType string

const (
	ContactTypeEmail    ContactType = "email"
	ContactTypeTelegram ContactType = "telegram"
)

// Appeal is a student-submitted request routed to a council direction.
type Appeal struct {
	ID              string         `db:"id" json:"id"`
	PublicToken     string         `db:"public_token" json:"-"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	IsAnonymous     bool           `db:"is_anonymous" json:"is_anonymous"`
	Contact         *string        `db:"contact" json:"contact,omitempty"`
	ContactType     *ContactType   `db:"contact_type" json:"contact_type,omitempty"`
	DirectionID     *string        `db:"direction_id" json:"direction_id,omitempty"`
	Institute       *string        `db:"institute" json:"institute,omitempty"`
	Status          AppealStatus   `db:"status" json:"status"`
	Priority        AppealPriority `db:"priority" json:"priority"`
	AssignedTo      *string        `db:"assigned_to" json:"assigned_to,omitempty"`
	Deadline        *time.Time     `db:"deadline" json:"deadline,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
	FirstResponseAt *time.Time     `db:"first_response_at" json:"first_response_at,omitempty"`
	ClosedAt        *time.Time     `db:"closed_at" json:"closed_at,omitempty"`
}

// IsOverdue reports whether an open appeal is past its deadline. Deadlines
// are calendar dates, so the due day itself is not overdue.
func (a *Appeal) IsOverdue(now time.Time) bool {
	if a == nil || a.Deadline == nil || a.Status == AppealStatusClosed {
		return false
	}
	return !now.Before(DeadlineEnd(*a.Deadline))
}

// DeadlineEnd returns the instant a date-only deadline lapses: midnight UTC
// after the due day.
func DeadlineEnd(deadline time.Time) time.Time {
	d := deadline.UTC()
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, time.UTC)
}

// AppealFilter narrows staff listing queries.
//
// DirectionScope restricts results to the listed directions; a nil scope means
// no restriction and an empty non-nil scope matches nothing.
type AppealFilter struct {
	Status         []AppealStatus
	Priority       []AppealPriority
	DirectionID    string
	AssignedTo     string
	OverdueOnly    bool
	Search         string
	DirectionScope []string
	Page           int
	PageSize       int
}

// PublicAppealStatus is the only read surface offered to anonymous submitters.
type PublicAppealStatus struct {
	Status          AppealStatus `json:"status"`
	Title           string       `json:"title"`
	CreatedAt       time.Time    `json:"created_at"`
	FirstResponseAt *time.Time   `json:"first_response_at,omitempty"`
	ClosedAt        *time.Time   `json:"closed_at,omitempty"`
}

// HistoryAction names the kind of mutation recorded in the audit trail.
type HistoryAction string

const (
	HistoryStatusChanged   HistoryAction = "status_changed"
	HistoryAssigned        HistoryAction = "assigned"
	HistoryPriorityChanged HistoryAction = "priority_changed"
	HistoryDeadlineSet     HistoryAction = "deadline_set"
	HistoryCommentAdded    HistoryAction = "comment_added"
)

// AppealHistoryEntry is an immutable audit record for one appeal mutation.
type AppealHistoryEntry struct {
	ID        string        `db:"id" json:"id"`
	AppealID  string        `db:"appeal_id" json:"appeal_id"`
	Action    HistoryAction `db:"action" json:"action"`
	OldValue  *string       `db:"old_value" json:"old_value,omitempty"`
	NewValue  *string       `db:"new_value" json:"new_value,omitempty"`
	ActorID   *string       `db:"actor_id" json:"actor_id,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// AppealAttachment stores metadata for a file uploaded with an appeal.
type AppealAttachment struct {
	ID         string    `db:"id" json:"id"`
	AppealID   string    `db:"appeal_id" json:"appeal_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FilePath   string    `db:"file_path" json:"-"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}
