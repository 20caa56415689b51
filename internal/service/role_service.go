package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/internal/repository"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
)

type roleRepository interface {
	List(ctx context.Context, filter repository.RoleFilter) ([]models.RoleGrant, error)
	Create(ctx context.Context, grant *models.RoleGrant) error
	GetByID(ctx context.Context, id string) (*models.RoleGrant, error)
	Delete(ctx context.Context, id string) error
}

// RoleService manages council role grants.
type RoleService struct {
	repo       roleRepository
	directions directionReader
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewRoleService constructs the service.
func NewRoleService(repo roleRepository, directions directionReader, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{repo: repo, directions: directions, audit: audit, validator: validate, logger: logger}
}

// List returns grants matching the query.
func (s *RoleService) List(ctx context.Context, actor *models.Principal, query dto.RoleQuery) ([]models.RoleGrant, error) {
	if err := requireContentManager(actor); err != nil {
		return nil, err
	}
	if query.Role != "" && !query.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	grants, err := s.repo.List(ctx, repository.RoleFilter{
		UserID:      strings.TrimSpace(query.UserID),
		DirectionID: strings.TrimSpace(query.DirectionID),
		Role:        query.Role,
	})
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list roles")
	}
	return grants, nil
}

// Grant stores a new (user, role, direction) tuple. Member and lead grants
// require a direction; board and staff grants never carry one.
func (s *RoleService) Grant(ctx context.Context, actor *models.Principal, req dto.GrantRoleRequest, meta dto.AuditMeta) (*models.RoleGrant, error) {
	if err := requireContentManager(actor); err != nil {
		return nil, err
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.DirectionID = trimOptional(req.DirectionID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	if req.Role.Global() {
		if req.DirectionID != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "board and staff grants are global")
		}
	} else if req.DirectionID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "direction_id is required for member and lead grants")
	}
	if req.DirectionID != nil && s.directions != nil {
		if _, err := s.directions.GetByID(ctx, *req.DirectionID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown direction")
			}
			return nil, appErrors.Storage(err, "failed to load direction")
		}
	}

	grant := &models.RoleGrant{UserID: req.UserID, Role: req.Role, DirectionID: req.DirectionID}
	if err := s.repo.Create(ctx, grant); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "role already granted")
		}
		return nil, appErrors.Storage(err, "failed to grant role")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionRoleGrant, "user_role", grant.ID, nil, grant)
	return grant, nil
}

// Revoke deletes a grant.
func (s *RoleService) Revoke(ctx context.Context, actor *models.Principal, id string, meta dto.AuditMeta) error {
	if err := requireContentManager(actor); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role grant not found")
		}
		return appErrors.Storage(err, "failed to load role grant")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role grant not found")
		}
		return appErrors.Storage(err, "failed to revoke role")
	}
	recordAudit(ctx, s.audit, s.logger, actor, meta, models.AuditActionRoleRevoke, "user_role", id, existing, nil)
	return nil
}
