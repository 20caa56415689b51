package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/council-portal-api/internal/models"
)

const roleColumns = `id, user_id, role, direction_id, created_at`

// RoleFilter narrows grant listings.
type RoleFilter struct {
	UserID      string
	DirectionID string
	Role        models.UserRole
}

// RoleRepository persists user role grants.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs the repository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// ListByUser returns every grant held by a user.
func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]models.RoleGrant, error) {
	query := fmt.Sprintf("SELECT %s FROM user_roles WHERE user_id = $1 ORDER BY created_at ASC", roleColumns)
	var grants []models.RoleGrant
	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	return grants, nil
}

// List returns grants matching the filter.
func (r *RoleRepository) List(ctx context.Context, filter RoleFilter) ([]models.RoleGrant, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM user_roles", roleColumns))
	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 3)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.DirectionID != "" {
		args = append(args, filter.DirectionID)
		conditions = append(conditions, fmt.Sprintf("direction_id = $%d", len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC")

	var grants []models.RoleGrant
	if err := r.db.SelectContext(ctx, &grants, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return grants, nil
}

// ListHolders returns distinct users holding one of roles. A nil directionID
// matches grants without a direction; otherwise only that direction.
func (r *RoleRepository) ListHolders(ctx context.Context, roles []models.UserRole, directionID *string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	values := make([]string, len(roles))
	for i, role := range roles {
		values[i] = string(role)
	}
	args := []interface{}{pqStringArray(values)}
	query := "SELECT DISTINCT user_id FROM user_roles WHERE role = ANY($1)"
	if directionID == nil {
		query += " AND direction_id IS NULL"
	} else {
		args = append(args, *directionID)
		query += " AND direction_id = $2"
	}
	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("list role holders: %w", err)
	}
	return userIDs, nil
}

// Create stores a new grant.
func (r *RoleRepository) Create(ctx context.Context, grant *models.RoleGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_roles (id, user_id, role, direction_id, created_at)
VALUES (:id, :user_id, :role, :direction_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grant); err != nil {
		return fmt.Errorf("create user role: %w", err)
	}
	return nil
}

// GetByID fetches a grant.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*models.RoleGrant, error) {
	query := fmt.Sprintf("SELECT %s FROM user_roles WHERE id = $1", roleColumns)
	var grant models.RoleGrant
	if err := r.db.GetContext(ctx, &grant, query, id); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Delete revokes a grant.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_roles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check user role delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
