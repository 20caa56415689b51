package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/council-portal-api/internal/models"
)

// AttachmentRepository handles appeal attachment metadata persistence.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create stores metadata for an uploaded file.
func (r *AttachmentRepository) Create(ctx context.Context, item *models.AppealAttachment) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.UploadedAt.IsZero() {
		item.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO appeal_attachments
	(id, appeal_id, file_name, file_path, mime_type, size_bytes, uploaded_at)
	VALUES (:id, :appeal_id, :file_name, :file_path, :mime_type, :size_bytes, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create appeal attachment: %w", err)
	}
	return nil
}

// GetByID retrieves one attachment row.
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*models.AppealAttachment, error) {
	const query = `SELECT id, appeal_id, file_name, file_path, mime_type, size_bytes, uploaded_at
	FROM appeal_attachments WHERE id = $1`
	var item models.AppealAttachment
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByAppeal returns attachments uploaded for an appeal.
func (r *AttachmentRepository) ListByAppeal(ctx context.Context, appealID string) ([]models.AppealAttachment, error) {
	const query = `SELECT id, appeal_id, file_name, file_path, mime_type, size_bytes, uploaded_at
	FROM appeal_attachments WHERE appeal_id = $1 ORDER BY uploaded_at ASC`
	var items []models.AppealAttachment
	if err := r.db.SelectContext(ctx, &items, query, appealID); err != nil {
		return nil, fmt.Errorf("list appeal attachments: %w", err)
	}
	return items, nil
}

// CountByAppeal returns how many files an appeal already carries.
func (r *AttachmentRepository) CountByAppeal(ctx context.Context, appealID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM appeal_attachments WHERE appeal_id = $1", appealID); err != nil {
		return 0, fmt.Errorf("count appeal attachments: %w", err)
	}
	return total, nil
}
