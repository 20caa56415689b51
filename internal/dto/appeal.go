package dto

import (
	"time"

	"github.com/noah-isme/council-portal-api/internal/models"
)

// CreateAppealRequest is the anonymous submission payload. Contact is an email
// address or a numeric Telegram chat id, matching ContactType.
type CreateAppealRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required,min=10,max=10000"`
	IsAnonymous bool    `json:"is_anonymous"`
	Contact     *string `json:"contact" validate:"omitempty,max=255"`
	ContactType *string `json:"contact_type" validate:"omitempty,oneof=email telegram"`
	DirectionID *string `json:"direction_id" validate:"omitempty,uuid"`
	Institute   *string `json:"institute" validate:"omitempty,max=255"`
}

// CreateAppealResponse is returned once; the public token cannot be recovered later.
type CreateAppealResponse struct {
	PublicToken string              `json:"public_token"`
	Status      models.AppealStatus `json:"status"`
}

// PublicStatusResponse is the anonymous status-check view.
type PublicStatusResponse struct {
	models.PublicAppealStatus
	StatusInfo models.StatusInfo `json:"status_info"`
}

// ChangeStatusRequest moves an appeal to another status.
type ChangeStatusRequest struct {
	Status models.AppealStatus `json:"status" binding:"required"`
}

// AssignRequest sets or clears (null) the assignee.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// PriorityRequest changes triage priority.
type PriorityRequest struct {
	Priority models.AppealPriority `json:"priority" binding:"required"`
}

// DeadlineRequest sets (YYYY-MM-DD) or clears (null) the deadline.
type DeadlineRequest struct {
	Deadline *string `json:"deadline"`
}

// CommentRequest adds a staff comment.
type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// AppealQuery mirrors supported listing filters.
type AppealQuery struct {
	Status      []models.AppealStatus
	Priority    []models.AppealPriority
	DirectionID string
	AssignedTo  string
	OverdueOnly bool
	Search      string
	Page        int
	PageSize    int
}

// AppealDetail bundles an appeal with its display metadata and allowed moves.
type AppealDetail struct {
	models.Appeal
	StatusInfo   models.StatusInfo     `json:"status_info"`
	PriorityInfo models.PriorityInfo   `json:"priority_info"`
	Transitions  []models.AppealStatus `json:"transitions"`
	Overdue      bool                  `json:"overdue"`
}

// NewAppealDetail decorates appeal for back-office responses.
func NewAppealDetail(appeal models.Appeal, now time.Time) AppealDetail {
	return AppealDetail{
		Appeal:       appeal,
		StatusInfo:   models.DescribeStatus(appeal.Status),
		PriorityInfo: models.DescribePriority(appeal.Priority),
		Transitions:  models.ValidTransitions(appeal.Status),
		Overdue:      appeal.IsOverdue(now),
	}
}
