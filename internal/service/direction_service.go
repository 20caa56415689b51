package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
)

type directionRepository interface {
	List(ctx context.Context) ([]models.Direction, error)
	Create(ctx context.Context, direction *models.Direction) error
}

// DirectionService lists and registers council committees.
type DirectionService struct {
	repo      directionRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectionService constructs the service.
func NewDirectionService(repo directionRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *DirectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectionService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns every direction.
func (s *DirectionService) List(ctx context.Context) ([]models.Direction, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list directions")
	}
	return items, nil
}

// Create registers a direction. Only global roles may do so.
func (s *DirectionService) Create(ctx context.Context, actor *models.Principal, req dto.CreateDirectionRequest, meta dto.AuditMeta) (*models.Direction, error) {
	if err := requireContentManager(actor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	req.Description = trimOptional(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid direction payload")
	}
	direction := &models.Direction{Name: req.Name, Slug: req.Slug, Description: req.Description}
	if err := s.repo.Create(ctx, direction); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "direction already exists")
		}
		return nil, appErrors.Storage(err, "failed to create direction")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionDirectionCreate, "direction", direction.ID, nil, direction)
	return direction, nil
}
