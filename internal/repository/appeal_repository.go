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

const appealColumns = `id, public_token, title, description, is_anonymous, contact, contact_type, direction_id, institute,
       status, priority, assigned_to, deadline, created_at, updated_at, first_response_at, closed_at`

const historyColumns = `id, appeal_id, action, old_value, new_value, actor_id, created_at`

// Deadlines are stored as midnight UTC of the due day; they lapse a day later.
const (
	deadlineEnd      = "(deadline + INTERVAL '24 hours')"
	overdueCondition = "deadline IS NOT NULL AND " + deadlineEnd + " <= NOW() AND status <> 'closed'"
)

// AppealMutator edits the locked appeal in place and returns the history entry
// describing the change. Returning a nil entry leaves the row untouched.
type AppealMutator func(appeal *models.Appeal) (*models.AppealHistoryEntry, error)

// AppealRepository persists appeals and their history.
type AppealRepository struct {
	db *sqlx.DB
}

// NewAppealRepository constructs the repository.
func NewAppealRepository(db *sqlx.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

// Create inserts a freshly submitted appeal.
func (r *AppealRepository) Create(ctx context.Context, appeal *models.Appeal) error {
	if appeal.ID == "" {
		appeal.ID = uuid.NewString()
	}
	if appeal.Status == "" {
		appeal.Status = models.AppealStatusNew
	}
	if appeal.Priority == "" {
		appeal.Priority = models.AppealPriorityNormal
	}
	now := time.Now().UTC()
	if appeal.CreatedAt.IsZero() {
		appeal.CreatedAt = now
	}
	appeal.UpdatedAt = now
	const query = `INSERT INTO appeals
	(id, public_token, title, description, is_anonymous, contact, contact_type, direction_id, institute,
	 status, priority, assigned_to, deadline, created_at, updated_at, first_response_at, closed_at)
	VALUES (:id, :public_token, :title, :description, :is_anonymous, :contact, :contact_type, :direction_id, :institute,
	 :status, :priority, :assigned_to, :deadline, :created_at, :updated_at, :first_response_at, :closed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appeal); err != nil {
		return fmt.Errorf("create appeal: %w", err)
	}
	return nil
}

// GetByID fetches an appeal by identifier. sql.ErrNoRows is returned unwrapped.
func (r *AppealRepository) GetByID(ctx context.Context, id string) (*models.Appeal, error) {
	query := fmt.Sprintf("SELECT %s FROM appeals WHERE id = $1", appealColumns)
	var appeal models.Appeal
	if err := r.db.GetContext(ctx, &appeal, query, id); err != nil {
		return nil, err
	}
	return &appeal, nil
}

// FindByPublicToken resolves the anonymous status-check token.
func (r *AppealRepository) FindByPublicToken(ctx context.Context, token string) (*models.Appeal, error) {
	query := fmt.Sprintf("SELECT %s FROM appeals WHERE public_token = $1 LIMIT 1", appealColumns)
	var appeal models.Appeal
	if err := r.db.GetContext(ctx, &appeal, query, token); err != nil {
		return nil, err
	}
	return &appeal, nil
}

// List returns appeals matching the filter together with the total count.
func (r *AppealRepository) List(ctx context.Context, filter models.AppealFilter) ([]models.Appeal, int, error) {
	args := make([]interface{}, 0, 8)
	conditions := make([]string, 0, 6)

	if cond := directionScopeCondition(filter.DirectionScope, &args); cond != "" {
		conditions = append(conditions, cond)
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priority) > 0 {
		placeholders := make([]string, len(filter.Priority))
		for i, priority := range filter.Priority {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.DirectionID != "" {
		args = append(args, filter.DirectionID)
		conditions = append(conditions, fmt.Sprintf("direction_id = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if filter.OverdueOnly {
		conditions = append(conditions, overdueCondition)
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM appeals%s ORDER BY created_at DESC LIMIT %d OFFSET %d", appealColumns, where, size, offset)
	var appeals []models.Appeal
	if err := r.db.SelectContext(ctx, &appeals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appeals: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM appeals"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count appeals: %w", err)
	}
	return appeals, total, nil
}

// ListDueBetween returns open appeals whose deadline day ended in (from, to].
func (r *AppealRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]models.Appeal, error) {
	query := fmt.Sprintf(`SELECT %s FROM appeals
	WHERE status <> 'closed' AND deadline IS NOT NULL AND %s > $1 AND %s <= $2
	ORDER BY deadline ASC`, appealColumns, deadlineEnd, deadlineEnd)
	var appeals []models.Appeal
	if err := r.db.SelectContext(ctx, &appeals, query, from, to); err != nil {
		return nil, fmt.Errorf("list due appeals: %w", err)
	}
	return appeals, nil
}

// Mutate locks the appeal row, applies fn and persists the row together with
// the returned history entry in one transaction. The row is only visible when
// its direction is within scope (nil scope means unrestricted).
func (r *AppealRepository) Mutate(ctx context.Context, id string, scope []string, fn AppealMutator) (*models.Appeal, *models.AppealHistoryEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin appeal tx: %w", err)
	}

	args := []interface{}{id}
	query := fmt.Sprintf("SELECT %s FROM appeals WHERE id = $1", appealColumns)
	if cond := directionScopeCondition(scope, &args); cond != "" {
		query += " AND " + cond
	}
	query += " FOR UPDATE"

	var appeal models.Appeal
	if err := tx.GetContext(ctx, &appeal, query, args...); err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}

	entry, err := fn(&appeal)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}
	if entry == nil {
		_ = tx.Rollback()
		return &appeal, nil, nil
	}

	now := time.Now().UTC()
	appeal.UpdatedAt = now
	const update = `UPDATE appeals SET status = :status, priority = :priority, assigned_to = :assigned_to, deadline = :deadline,
	first_response_at = :first_response_at, closed_at = :closed_at, updated_at = :updated_at
	WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, &appeal); err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("update appeal: %w", err)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.AppealID = appeal.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	const insert = `INSERT INTO appeal_history (id, appeal_id, action, old_value, new_value, actor_id, created_at)
	VALUES (:id, :appeal_id, :action, :old_value, :new_value, :actor_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("insert appeal history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit appeal tx: %w", err)
	}
	return &appeal, entry, nil
}

// ListHistory returns the audit trail of an appeal, oldest first.
func (r *AppealRepository) ListHistory(ctx context.Context, appealID string) ([]models.AppealHistoryEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM appeal_history WHERE appeal_id = $1 ORDER BY created_at ASC", historyColumns)
	var entries []models.AppealHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, appealID); err != nil {
		return nil, fmt.Errorf("list appeal history: %w", err)
	}
	return entries, nil
}

// directionScopeCondition appends the scope argument and returns the matching
// predicate. A nil scope yields no predicate; an empty scope matches nothing.
func directionScopeCondition(scope []string, args *[]interface{}) string {
	if scope == nil {
		return ""
	}
	if len(scope) == 0 {
		return "FALSE"
	}
	*args = append(*args, pqStringArray(scope))
	return fmt.Sprintf("direction_id = ANY($%d)", len(*args))
}
