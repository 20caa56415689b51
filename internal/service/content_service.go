package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
)

type contentRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	GetByID(ctx context.Context, id string) (*models.Content, error)
	GetBySlug(ctx context.Context, slug string) (*models.Content, error)
	Create(ctx context.Context, item *models.Content) error
	Update(ctx context.Context, item *models.Content) error
	Delete(ctx context.Context, id string) error
}

// ContentService handles news, guides and FAQ entries.
type ContentService struct {
	repo      contentRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewContentService constructs the service.
func NewContentService(repo contentRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{repo: repo, audit: audit, validator: validate, logger: logger, now: time.Now}
}

// ListPublished returns published items for the public portal.
func (s *ContentService) ListPublished(ctx context.Context, query dto.ContentQuery) ([]models.Content, *models.Pagination, error) {
	return s.list(ctx, query, true)
}

// ListAll returns drafts and published items for content managers.
func (s *ContentService) ListAll(ctx context.Context, actor *models.Principal, query dto.ContentQuery) ([]models.Content, *models.Pagination, error) {
	if err := requireContentManager(actor); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, query, false)
}

func (s *ContentService) list(ctx context.Context, query dto.ContentQuery, publishedOnly bool) ([]models.Content, *models.Pagination, error) {
	if query.Kind != "" && !query.Kind.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown content kind")
	}
	filter := models.ContentFilter{Kind: query.Kind, PublishedOnly: publishedOnly, Page: query.Page, PageSize: query.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list content")
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// GetPublished returns a published item by slug. Drafts are reported as missing.
func (s *ContentService) GetPublished(ctx context.Context, slug string) (*models.Content, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Storage(err, "failed to load content")
	}
	if !item.Published || (item.PublishedAt != nil && item.PublishedAt.After(s.now())) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
	}
	return item, nil
}

// Create stores a new item.
func (s *ContentService) Create(ctx context.Context, actor *models.Principal, req dto.ContentRequest, meta dto.AuditMeta) (*models.Content, error) {
	if err := requireContentManager(actor); err != nil {
		return nil, err
	}
	req = normalizeContentRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	item := &models.Content{
		Kind:      req.Kind,
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
		CreatedBy: actor.UserID,
	}
	if req.Published {
		now := s.now().UTC()
		item.PublishedAt = &now
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return nil, appErrors.Storage(err, "failed to create content")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionContentCreate, "content", item.ID, nil, item)
	return item, nil
}

// Update replaces an existing item.
func (s *ContentService) Update(ctx context.Context, actor *models.Principal, id string, req dto.ContentRequest, meta dto.AuditMeta) (*models.Content, error) {
	if err := requireContentManager(actor); err != nil {
		return nil, err
	}
	req = normalizeContentRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Storage(err, "failed to load content")
	}
	before := *existing

	existing.Kind = req.Kind
	existing.Slug = req.Slug
	existing.Title = req.Title
	existing.Body = req.Body
	switch {
	case req.Published && !existing.Published:
		now := s.now().UTC()
		existing.PublishedAt = &now
	case !req.Published:
		existing.PublishedAt = nil
	}
	existing.Published = req.Published
	if err := s.repo.Update(ctx, existing); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return nil, appErrors.Storage(err, "failed to update content")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionContentUpdate, "content", existing.ID, before, existing)
	return existing, nil
}

// Delete removes an item.
func (s *ContentService) Delete(ctx context.Context, actor *models.Principal, id string, meta dto.AuditMeta) error {
	if err := requireContentManager(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return appErrors.Storage(err, "failed to delete content")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionContentDelete, "content", id, nil, nil)
	return nil
}

func normalizeContentRequest(req dto.ContentRequest) dto.ContentRequest {
	req.Kind = models.ContentKind(strings.ToLower(strings.TrimSpace(string(req.Kind))))
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	return req
}

func requireContentManager(actor *models.Principal) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !CanManageContent(actor.Grants) {
		return appErrors.Clone(appErrors.ErrForbidden, "board or staff role required")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
