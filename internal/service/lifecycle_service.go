package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/internal/repository"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
)

const (
	maxCommentLength = 5000
	deadlineLayout   = "2006-01-02"
)

type appealMutationStore interface {
	Mutate(ctx context.Context, id string, scope []string, fn repository.AppealMutator) (*models.Appeal, *models.AppealHistoryEntry, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, prefix string) error
}

type grantLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.RoleGrant, error)
}

// errAppealNotFound is returned for missing appeals and for appeals the actor
// may not touch, so callers cannot probe for existence.
func errAppealNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "appeal not found")
}

// LifecycleService applies workflow mutations to appeals. Every accepted
// mutation writes one history entry in the same transaction and, for status,
// assignment and comments, publishes an event once committed.
type LifecycleService struct {
	appeals   appealMutationStore
	grants    grantLister
	publisher EventPublisher
	cache     cacheInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// LifecycleServiceParams groups constructor dependencies.
type LifecycleServiceParams struct {
	Appeals   appealMutationStore
	Grants    grantLister
	Publisher EventPublisher
	Cache     cacheInvalidator
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NewLifecycleService constructs the lifecycle controller.
func NewLifecycleService(params LifecycleServiceParams) *LifecycleService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		appeals:   params.Appeals,
		grants:    params.Grants,
		publisher: params.Publisher,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// ChangeStatus moves the appeal to status, maintaining first_response_at and
// closed_at from the locked row.
func (s *LifecycleService) ChangeStatus(ctx context.Context, actor *models.Principal, appealID string, status models.AppealStatus) (*models.Appeal, error) {
	appeal, entry, err := s.mutate(ctx, actor, appealID, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		if a.Status == status {
			return nil, nil
		}
		if !models.CanTransition(a.Status, status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(status))
		}
		now := s.now().UTC()
		previous := a.Status
		if previous == models.AppealStatusNew && a.FirstResponseAt == nil {
			a.FirstResponseAt = &now
		}
		if status == models.AppealStatusClosed {
			a.ClosedAt = &now
		} else {
			a.ClosedAt = nil
		}
		a.Status = status
		return newHistoryEntry(models.HistoryStatusChanged, strPtrOrNil(string(previous)), strPtrOrNil(string(status)), actor), nil
	})
	if err != nil || entry == nil {
		return appeal, err
	}

	var recipients []string
	if appeal.AssignedTo != nil {
		recipients = []string{*appeal.AssignedTo}
	}
	s.publish(ctx, models.AppealEvent{
		Type:         models.EventStatusChanged,
		AppealID:     appeal.ID,
		ActorID:      &actor.UserID,
		RecipientIDs: recipients,
		Payload: map[string]string{
			"title":      appeal.Title,
			"old_status": derefString(entry.OldValue),
			"new_status": string(appeal.Status),
		},
		Submitter: submitterContact(appeal),
	})
	return appeal, nil
}

// Assign sets or clears the assignee. A new assignee must hold a grant that
// opens the appeal's direction. The assignee is only looked up once the actor
// has been authorized against the appeal.
func (s *LifecycleService) Assign(ctx context.Context, actor *models.Principal, appealID string, assigneeID *string) (*models.Appeal, error) {
	if assigneeID != nil && strings.TrimSpace(*assigneeID) == "" {
		assigneeID = nil
	}

	appeal, entry, err := s.mutate(ctx, actor, appealID, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		if equalStringPtr(a.AssignedTo, assigneeID) {
			return nil, nil
		}
		if assigneeID != nil {
			grants, err := s.grants.ListByUser(ctx, *assigneeID)
			if err != nil {
				return nil, appErrors.Storage(err, "failed to load assignee roles")
			}
			if len(grants) == 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, "assignee holds no council role")
			}
			if !ResolvePermissions(grants, a.DirectionID).View {
				return nil, appErrors.Clone(appErrors.ErrValidation, "assignee has no access to the appeal's direction")
			}
		}
		previous := a.AssignedTo
		a.AssignedTo = copyStringPtr(assigneeID)
		return newHistoryEntry(models.HistoryAssigned, copyStringPtr(previous), copyStringPtr(assigneeID), actor), nil
	})
	if err != nil || entry == nil {
		return appeal, err
	}

	if appeal.AssignedTo != nil {
		s.publish(ctx, models.AppealEvent{
			Type:         models.EventAppealAssigned,
			AppealID:     appeal.ID,
			ActorID:      &actor.UserID,
			RecipientIDs: []string{*appeal.AssignedTo},
			Payload: map[string]string{
				"title":    appeal.Title,
				"priority": string(appeal.Priority),
			},
		})
	}
	return appeal, nil
}

// SetPriority updates the triage priority. No event is published.
func (s *LifecycleService) SetPriority(ctx context.Context, actor *models.Principal, appealID string, priority models.AppealPriority) (*models.Appeal, error) {
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority "+string(priority))
	}
	appeal, _, err := s.mutate(ctx, actor, appealID, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		if a.Priority == priority {
			return nil, nil
		}
		previous := a.Priority
		a.Priority = priority
		return newHistoryEntry(models.HistoryPriorityChanged, strPtrOrNil(string(previous)), strPtrOrNil(string(priority)), actor), nil
	})
	return appeal, err
}

// SetDeadline sets or clears the deadline, truncated to a UTC calendar date.
// No event is published.
func (s *LifecycleService) SetDeadline(ctx context.Context, actor *models.Principal, appealID string, deadline *time.Time) (*models.Appeal, error) {
	var target *time.Time
	if deadline != nil {
		d := deadline.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		target = &day
	}
	appeal, _, err := s.mutate(ctx, actor, appealID, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		if equalDate(a.Deadline, target) {
			return nil, nil
		}
		previous := a.Deadline
		a.Deadline = target
		return newHistoryEntry(models.HistoryDeadlineSet, formatDate(previous), formatDate(target), actor), nil
	})
	return appeal, err
}

// AddComment records a staff comment in the history and notifies the assignee.
func (s *LifecycleService) AddComment(ctx context.Context, actor *models.Principal, appealID, body string) (*models.AppealHistoryEntry, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment is too long")
	}

	appeal, entry, err := s.mutate(ctx, actor, appealID, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		return newHistoryEntry(models.HistoryCommentAdded, nil, &body, actor), nil
	})
	if err != nil {
		return nil, err
	}

	if appeal.AssignedTo != nil {
		s.publish(ctx, models.AppealEvent{
			Type:         models.EventAppealComment,
			AppealID:     appeal.ID,
			ActorID:      &actor.UserID,
			RecipientIDs: []string{*appeal.AssignedTo},
			Payload: map[string]string{
				"title":   appeal.Title,
				"comment": body,
			},
		})
	}
	return entry, nil
}

// mutate runs fn under the row lock after checking the actor's grants, both
// against the repository scope and against the locked row's direction.
func (s *LifecycleService) mutate(ctx context.Context, actor *models.Principal, appealID string, fn repository.AppealMutator) (*models.Appeal, *models.AppealHistoryEntry, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	scope, ok := AppealScope(actor.Grants)
	if !ok {
		return nil, nil, errAppealNotFound()
	}

	appeal, entry, err := s.appeals.Mutate(ctx, appealID, scope, func(a *models.Appeal) (*models.AppealHistoryEntry, error) {
		if !ResolvePermissions(actor.Grants, a.DirectionID).Mutate {
			return nil, errAppealNotFound()
		}
		return fn(a)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, errAppealNotFound()
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, nil, appErr
		}
		s.logger.Error("appeal mutation failed", zap.String("appeal_id", appealID), zap.Error(err))
		return nil, nil, appErrors.Storage(err, "failed to update appeal")
	}
	if entry != nil && s.metrics != nil {
		s.metrics.RecordAppealMutation(entry.Action)
	}
	if entry != nil && s.cache != nil {
		// Stale statistics expire on their own TTL if this fails.
		_ = s.cache.Invalidate(ctx, statsCachePrefix)
	}
	return appeal, entry, nil
}

func (s *LifecycleService) publish(ctx context.Context, event models.AppealEvent) {
	if s.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish appeal event",
			zap.String("event", string(event.Type)),
			zap.String("appeal_id", event.AppealID),
			zap.Error(err),
		)
	}
}

func newHistoryEntry(action models.HistoryAction, oldValue, newValue *string, actor *models.Principal) *models.AppealHistoryEntry {
	entry := &models.AppealHistoryEntry{Action: action, OldValue: oldValue, NewValue: newValue}
	if actor != nil && actor.UserID != "" {
		entry.ActorID = strPtrOrNil(actor.UserID)
	}
	return entry
}

func submitterContact(appeal *models.Appeal) *models.SubmitterContact {
	if appeal == nil || appeal.Contact == nil || appeal.ContactType == nil || strings.TrimSpace(*appeal.Contact) == "" {
		return nil
	}
	return &models.SubmitterContact{
		Contact:     *appeal.Contact,
		ContactType: *appeal.ContactType,
		PublicToken: appeal.PublicToken,
	}
}

func strPtrOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UTC().Format(deadlineLayout) == b.UTC().Format(deadlineLayout)
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(deadlineLayout)
	return &formatted
}
