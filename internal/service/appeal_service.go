package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
)

const publicTokenBytes = 32

type appealStore interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	GetByID(ctx context.Context, id string) (*models.Appeal, error)
	FindByPublicToken(ctx context.Context, token string) (*models.Appeal, error)
	List(ctx context.Context, filter models.AppealFilter) ([]models.Appeal, int, error)
	ListHistory(ctx context.Context, appealID string) ([]models.AppealHistoryEntry, error)
}

type directionReader interface {
	GetByID(ctx context.Context, id string) (*models.Direction, error)
}

type roleHolderLister interface {
	ListHolders(ctx context.Context, roles []models.UserRole, directionID *string) ([]string, error)
}

// AppealService covers submission, the public status check and scoped reads.
type AppealService struct {
	appeals    appealStore
	directions directionReader
	holders    roleHolderLister
	publisher  EventPublisher
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
	token      func() (string, error)
}

// AppealServiceParams groups constructor dependencies.
type AppealServiceParams struct {
	Appeals    appealStore
	Directions directionReader
	Holders    roleHolderLister
	Publisher  EventPublisher
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewAppealService constructs the service.
func NewAppealService(params AppealServiceParams) *AppealService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppealService{
		appeals:    params.Appeals,
		directions: params.Directions,
		holders:    params.Holders,
		publisher:  params.Publisher,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
		token:      generatePublicToken,
	}
}

// Submit stores an anonymous appeal and returns its public token once.
func (s *AppealService) Submit(ctx context.Context, req dto.CreateAppealRequest) (*dto.CreateAppealResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Contact = trimOptional(req.Contact)
	req.ContactType = trimOptional(req.ContactType)
	req.DirectionID = trimOptional(req.DirectionID)
	req.Institute = trimOptional(req.Institute)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appeal payload")
	}
	if req.Contact != nil && req.ContactType == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "contact_type is required with contact")
	}
	if req.ContactType != nil && req.Contact == nil {
		req.ContactType = nil
	}
	if req.Contact != nil && req.ContactType != nil {
		switch models.ContactType(*req.ContactType) {
		case models.ContactTypeEmail:
			if err := s.validator.Var(*req.Contact, "email"); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "contact must be a valid email address")
			}
		case models.ContactTypeTelegram:
			// The Bot API cannot address users by @username.
			if err := s.validator.Var(*req.Contact, "number,max=20"); err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "telegram contact must be a numeric chat id")
			}
		}
	}

	if req.DirectionID != nil && s.directions != nil {
		if _, err := s.directions.GetByID(ctx, *req.DirectionID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown direction")
			}
			return nil, appErrors.Storage(err, "failed to submit appeal")
		}
	}

	token, err := s.token()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit appeal")
	}

	appeal := &models.Appeal{
		PublicToken: token,
		Title:       req.Title,
		Description: req.Description,
		IsAnonymous: req.IsAnonymous,
		Contact:     req.Contact,
		DirectionID: req.DirectionID,
		Institute:   req.Institute,
		Status:      models.AppealStatusNew,
		Priority:    models.AppealPriorityNormal,
		CreatedAt:   s.now().UTC(),
	}
	if req.ContactType != nil {
		contactType := models.ContactType(*req.ContactType)
		appeal.ContactType = &contactType
	}
	if err := s.appeals.Create(ctx, appeal); err != nil {
		s.logger.Error("failed to store appeal", zap.Error(err))
		return nil, appErrors.Storage(err, "failed to submit appeal, try again later")
	}

	s.announce(ctx, appeal)
	return &dto.CreateAppealResponse{PublicToken: token, Status: appeal.Status}, nil
}

// PublicStatus resolves a public token. Unknown and malformed tokens are
// indistinguishable.
func (s *AppealService) PublicStatus(ctx context.Context, token string) (*dto.PublicStatusResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "appeal not found")
	}
	appeal, err := s.appeals.FindByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appeal not found")
		}
		return nil, appErrors.Storage(err, "failed to load appeal status")
	}
	return &dto.PublicStatusResponse{
		PublicAppealStatus: models.PublicAppealStatus{
			Status:          appeal.Status,
			Title:           appeal.Title,
			CreatedAt:       appeal.CreatedAt,
			FirstResponseAt: appeal.FirstResponseAt,
			ClosedAt:        appeal.ClosedAt,
		},
		StatusInfo: models.DescribeStatus(appeal.Status),
	}, nil
}

// ResolvePublicToken returns the appeal behind a public token for flows that
// act on behalf of the submitter.
func (s *AppealService) ResolvePublicToken(ctx context.Context, token string) (*models.Appeal, error) {
	appeal, err := s.appeals.FindByPublicToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appeal not found")
		}
		return nil, appErrors.Storage(err, "failed to load appeal")
	}
	return appeal, nil
}

// List returns the appeals visible to actor.
func (s *AppealService) List(ctx context.Context, actor *models.Principal, query dto.AppealQuery) ([]dto.AppealDetail, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	scope, ok := AppealScope(actor.Grants)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "no council role grants appeal access")
	}
	for _, status := range query.Status {
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(status))
		}
	}
	for _, priority := range query.Priority {
		if !priority.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority "+string(priority))
		}
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	appeals, total, err := s.appeals.List(ctx, models.AppealFilter{
		Status:         query.Status,
		Priority:       query.Priority,
		DirectionID:    strings.TrimSpace(query.DirectionID),
		AssignedTo:     strings.TrimSpace(query.AssignedTo),
		OverdueOnly:    query.OverdueOnly,
		Search:         strings.TrimSpace(query.Search),
		DirectionScope: scope,
		Page:           page,
		PageSize:       size,
	})
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list appeals")
	}

	now := s.now()
	items := make([]dto.AppealDetail, 0, len(appeals))
	for _, appeal := range appeals {
		items = append(items, dto.NewAppealDetail(appeal, now))
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one appeal if actor may view it.
func (s *AppealService) Get(ctx context.Context, actor *models.Principal, id string) (*dto.AppealDetail, error) {
	appeal, err := s.visibleAppeal(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	detail := dto.NewAppealDetail(*appeal, s.now())
	return &detail, nil
}

// History returns the audit trail of an appeal actor may view.
func (s *AppealService) History(ctx context.Context, actor *models.Principal, id string) ([]models.AppealHistoryEntry, error) {
	if _, err := s.visibleAppeal(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.appeals.ListHistory(ctx, id)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load appeal history")
	}
	return entries, nil
}

func (s *AppealService) visibleAppeal(ctx context.Context, actor *models.Principal, id string) (*models.Appeal, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if _, ok := AppealScope(actor.Grants); !ok {
		return nil, errAppealNotFound()
	}
	appeal, err := s.appeals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errAppealNotFound()
		}
		return nil, appErrors.Storage(err, "failed to load appeal")
	}
	if !ResolvePermissions(actor.Grants, appeal.DirectionID).View {
		return nil, errAppealNotFound()
	}
	return appeal, nil
}

// announce notifies the leads of the appeal's direction, or the global roles
// when the appeal is untriaged.
func (s *AppealService) announce(ctx context.Context, appeal *models.Appeal) {
	if s.publisher == nil || s.holders == nil {
		return
	}
	roles := []models.UserRole{models.RoleLead}
	if appeal.DirectionID == nil {
		roles = []models.UserRole{models.RoleBoard, models.RoleStaff}
	}
	recipients, err := s.holders.ListHolders(ctx, roles, appeal.DirectionID)
	if err != nil {
		s.logger.Warn("failed to resolve new appeal recipients", zap.String("appeal_id", appeal.ID), zap.Error(err))
		return
	}
	if len(recipients) == 0 {
		return
	}
	event := models.AppealEvent{
		Type:         models.EventNewAppeal,
		AppealID:     appeal.ID,
		RecipientIDs: recipients,
		Payload:      map[string]string{"title": appeal.Title, "status": string(appeal.Status)},
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish appeal event",
			zap.String("event", string(event.Type)),
			zap.String("appeal_id", appeal.ID),
			zap.Error(err),
		)
	}
}

func generatePublicToken() (string, error) {
	buf := make([]byte, publicTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate public token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
