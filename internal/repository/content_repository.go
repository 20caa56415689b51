package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/council-portal-api/internal/models"
)

const contentColumns = `id, kind, slug, title, body, published, published_at, created_by, created_at, updated_at`

// ContentRepository provides persistence for news, guides and FAQ entries.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// List returns content matching the filter.
func (r *ContentRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.PublishedOnly {
		where = append(where, "published = TRUE", "(published_at IS NULL OR published_at <= NOW())")
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
FROM content WHERE %s
ORDER BY COALESCE(published_at, created_at) DESC
LIMIT %d OFFSET %d`, contentColumns, whereClause, size, offset)
	var items []models.Content
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list content: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM content WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count content: %w", err)
	}
	return items, total, nil
}

// GetByID returns content by identifier.
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	query := fmt.Sprintf("SELECT %s FROM content WHERE id = $1", contentColumns)
	var item models.Content
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetBySlug returns content by slug.
func (r *ContentRepository) GetBySlug(ctx context.Context, slug string) (*models.Content, error) {
	query := fmt.Sprintf("SELECT %s FROM content WHERE slug = $1", contentColumns)
	var item models.Content
	if err := r.db.GetContext(ctx, &item, query, slug); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts new content.
func (r *ContentRepository) Create(ctx context.Context, item *models.Content) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	const query = `INSERT INTO content (id, kind, slug, title, body, published, published_at, created_by, created_at, updated_at)
VALUES (:id, :kind, :slug, :title, :body, :published, :published_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// Update modifies existing content.
func (r *ContentRepository) Update(ctx context.Context, item *models.Content) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE content SET kind = :kind, slug = :slug, title = :title, body = :body, published = :published,
published_at = :published_at, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// Delete removes content.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM content WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check content delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// pqStringArray helper ensures we pass string arrays consistently.
func pqStringArray(values []string) interface{} {
	return pq.Array(values)
}
