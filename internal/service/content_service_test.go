package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/internal/repository"
)

type auditRecorder struct {
	logs []models.AuditLog
}

func (a *auditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, *log)
	return nil
}

type contentRepoStub struct {
	items     map[string]*models.Content
	filter    models.ContentFilter
	createErr error
}

func (r *contentRepoStub) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	r.filter = filter
	var out []models.Content
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (r *contentRepoStub) GetByID(ctx context.Context, id string) (*models.Content, error) {
	if item, ok := r.items[id]; ok {
		copy := *item
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *contentRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Content, error) {
	for _, item := range r.items {
		if item.Slug == slug {
			copy := *item
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *contentRepoStub) Create(ctx context.Context, item *models.Content) error {
	if r.createErr != nil {
		return r.createErr
	}
	item.ID = "content-new"
	r.items[item.ID] = item
	return nil
}

func (r *contentRepoStub) Update(ctx context.Context, item *models.Content) error {
	r.items[item.ID] = item
	return nil
}

func (r *contentRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func boardMember() *models.Principal {
	return &models.Principal{UserID: "board-1", Grants: []models.RoleGrant{grant(models.RoleBoard, "")}}
}

func TestContentCreateRequiresGlobalRole(t *testing.T) {
	repo := &contentRepoStub{items: map[string]*models.Content{}}
	audit := &auditRecorder{}
	svc := NewContentService(repo, audit, nil, nil)
	req := dto.ContentRequest{Kind: "News", Slug: " Exam-Week ", Title: "Exam week", Body: "Library opens 24/7", Published: true}

	_, err := svc.Create(context.Background(), leadOf("dir-x"), req, dto.AuditMeta{})
	requireAppErrorCode(t, err, http.StatusForbidden)

	item, err := svc.Create(context.Background(), boardMember(), req, dto.AuditMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.ContentKindNews, item.Kind)
	assert.Equal(t, "exam-week", item.Slug)
	assert.Equal(t, "board-1", item.CreatedBy)
	require.NotNil(t, item.PublishedAt)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionContentCreate, audit.logs[0].Action)
	assert.Equal(t, "10.0.0.1", audit.logs[0].IPAddress)
	assert.Equal(t, "board-1", *audit.logs[0].UserID)
}

func TestContentCreateDuplicateSlug(t *testing.T) {
	repo := &contentRepoStub{items: map[string]*models.Content{}, createErr: &pq.Error{Code: "23505"}}
	svc := NewContentService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), boardMember(), dto.ContentRequest{Kind: "faq", Slug: "hours", Title: "Hours", Body: "9 to 5"}, dto.AuditMeta{})
	requireAppErrorCode(t, err, http.StatusConflict)
}

func TestContentPublicReadHidesDrafts(t *testing.T) {
	future := time.Now().Add(time.Hour)
	repo := &contentRepoStub{items: map[string]*models.Content{
		"c1": {ID: "c1", Slug: "draft", Published: false},
		"c2": {ID: "c2", Slug: "scheduled", Published: true, PublishedAt: &future},
		"c3": {ID: "c3", Slug: "live", Published: true},
	}}
	svc := NewContentService(repo, nil, nil, nil)

	_, err := svc.GetPublished(context.Background(), "draft")
	requireAppErrorCode(t, err, http.StatusNotFound)
	_, err = svc.GetPublished(context.Background(), "scheduled")
	requireAppErrorCode(t, err, http.StatusNotFound)
	item, err := svc.GetPublished(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, "c3", item.ID)

	_, page, err := svc.ListPublished(context.Background(), dto.ContentQuery{PageSize: 1000})
	require.NoError(t, err)
	assert.True(t, repo.filter.PublishedOnly)
	assert.Equal(t, 20, page.PageSize)

	_, _, err = svc.ListPublished(context.Background(), dto.ContentQuery{Kind: "poem"})
	requireAppErrorCode(t, err, http.StatusBadRequest)
}

func TestContentUpdateAndDelete(t *testing.T) {
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &contentRepoStub{items: map[string]*models.Content{
		"c1": {ID: "c1", Kind: models.ContentKindGuide, Slug: "guide", Title: "Guide", Body: "old", Published: true, PublishedAt: &published},
	}}
	audit := &auditRecorder{}
	svc := NewContentService(repo, audit, nil, nil)

	updated, err := svc.Update(context.Background(), boardMember(), "c1", dto.ContentRequest{Kind: "guide", Slug: "guide", Title: "Guide", Body: "new"}, dto.AuditMeta{})
	require.NoError(t, err)
	assert.False(t, updated.Published)
	assert.Nil(t, updated.PublishedAt)

	_, err = svc.Update(context.Background(), boardMember(), "missing", dto.ContentRequest{Kind: "guide", Slug: "guide", Title: "Guide", Body: "new"}, dto.AuditMeta{})
	requireAppErrorCode(t, err, http.StatusNotFound)

	require.NoError(t, svc.Delete(context.Background(), boardMember(), "c1", dto.AuditMeta{}))
	requireAppErrorCode(t, svc.Delete(context.Background(), boardMember(), "c1", dto.AuditMeta{}), http.StatusNotFound)
	require.Len(t, audit.logs, 2)
	assert.NotEmpty(t, audit.logs[0].OldValues)
}

type directionRepoStub struct {
	items []models.Direction
}

func (d *directionRepoStub) List(ctx context.Context) ([]models.Direction, error) {
	return d.items, nil
}

func (d *directionRepoStub) Create(ctx context.Context, direction *models.Direction) error {
	direction.ID = "dir-new"
	d.items = append(d.items, *direction)
	return nil
}

func TestDirectionCreate(t *testing.T) {
	repo := &directionRepoStub{}
	svc := NewDirectionService(repo, &auditRecorder{}, nil, nil)

	_, err := svc.Create(context.Background(), leadOf("dir-x"), dto.CreateDirectionRequest{Name: "Sports", Slug: "sports"}, dto.AuditMeta{})
	requireAppErrorCode(t, err, http.StatusForbidden)

	dir, err := svc.Create(context.Background(), boardMember(), dto.CreateDirectionRequest{Name: " Sports ", Slug: "SPORTS", Description: strPtr("  ")}, dto.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Sports", dir.Name)
	assert.Equal(t, "sports", dir.Slug)
	assert.Nil(t, dir.Description)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type roleRepoStub struct {
	grants map[string]*models.RoleGrant
	filter repository.RoleFilter
}

func (r *roleRepoStub) List(ctx context.Context, filter repository.RoleFilter) ([]models.RoleGrant, error) {
	r.filter = filter
	var out []models.RoleGrant
	for _, g := range r.grants {
		out = append(out, *g)
	}
	return out, nil
}

func (r *roleRepoStub) Create(ctx context.Context, g *models.RoleGrant) error {
	g.ID = "grant-new"
	r.grants[g.ID] = g
	return nil
}

func (r *roleRepoStub) GetByID(ctx context.Context, id string) (*models.RoleGrant, error) {
	if g, ok := r.grants[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (r *roleRepoStub) Delete(ctx context.Context, id string) error {
	delete(r.grants, id)
	return nil
}

func TestRoleGrantValidation(t *testing.T) {
	repo := &roleRepoStub{grants: map[string]*models.RoleGrant{}}
	audit := &auditRecorder{}
	svc := NewRoleService(repo, directionStub{testDirectionID: {ID: testDirectionID}}, audit, nil, nil)
	userID := "9c1d5a0e-2f4b-4c7e-8a1d-6b2e3f4a5b6c"

	cases := map[string]dto.GrantRoleRequest{
		"lead without direction": {UserID: userID, Role: models.RoleLead},
		"board with direction":   {UserID: userID, Role: models.RoleBoard, DirectionID: strPtr(testDirectionID)},
		"unknown role":           {UserID: userID, Role: "owner"},
		"unknown direction":      {UserID: userID, Role: models.RoleMember, DirectionID: strPtr("0b0e4a36-5f0a-4f54-9a43-3c8b1a2f8d11")},
		"user id is not a uuid":  {UserID: "someone", Role: models.RoleStaff},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Grant(context.Background(), boardMember(), req, dto.AuditMeta{})
			requireAppErrorCode(t, err, http.StatusBadRequest)
		})
	}

	g, err := svc.Grant(context.Background(), boardMember(), dto.GrantRoleRequest{UserID: userID, Role: models.RoleLead, DirectionID: strPtr(testDirectionID)}, dto.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, testDirectionID, *g.DirectionID)

	_, err = svc.Grant(context.Background(), leadOf(testDirectionID), dto.GrantRoleRequest{UserID: userID, Role: models.RoleStaff}, dto.AuditMeta{})
	requireAppErrorCode(t, err, http.StatusForbidden)

	require.NoError(t, svc.Revoke(context.Background(), boardMember(), g.ID, dto.AuditMeta{}))
	requireAppErrorCode(t, svc.Revoke(context.Background(), boardMember(), g.ID, dto.AuditMeta{}), http.StatusNotFound)

	require.Len(t, audit.logs, 2)
	assert.Equal(t, models.AuditActionRoleGrant, audit.logs[0].Action)
	assert.Equal(t, models.AuditActionRoleRevoke, audit.logs[1].Action)
}

func TestRoleListFilters(t *testing.T) {
	repo := &roleRepoStub{grants: map[string]*models.RoleGrant{}}
	svc := NewRoleService(repo, nil, nil, nil, nil)

	_, err := svc.List(context.Background(), boardMember(), dto.RoleQuery{UserID: " u1 ", Role: models.RoleLead})
	require.NoError(t, err)
	assert.Equal(t, "u1", repo.filter.UserID)
	assert.Equal(t, models.RoleLead, repo.filter.Role)

	_, err = svc.List(context.Background(), boardMember(), dto.RoleQuery{Role: "owner"})
	requireAppErrorCode(t, err, http.StatusBadRequest)
}
