package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
)

type appealRepoStub struct {
	appeals   map[string]*models.Appeal
	history   map[string][]models.AppealHistoryEntry
	created   []*models.Appeal
	filter    models.AppealFilter
	createErr error
}

func newAppealRepoStub(appeals ...*models.Appeal) *appealRepoStub {
	stub := &appealRepoStub{appeals: make(map[string]*models.Appeal), history: make(map[string][]models.AppealHistoryEntry)}
	for _, a := range appeals {
		stub.appeals[a.ID] = a
	}
	return stub
}

func (s *appealRepoStub) Create(ctx context.Context, appeal *models.Appeal) error {
	if s.createErr != nil {
		return s.createErr
	}
	appeal.ID = "appeal-new"
	s.created = append(s.created, appeal)
	s.appeals[appeal.ID] = appeal
	return nil
}

func (s *appealRepoStub) GetByID(ctx context.Context, id string) (*models.Appeal, error) {
	if a, ok := s.appeals[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *appealRepoStub) FindByPublicToken(ctx context.Context, token string) (*models.Appeal, error) {
	for _, a := range s.appeals {
		if a.PublicToken == token {
			copy := *a
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *appealRepoStub) List(ctx context.Context, filter models.AppealFilter) ([]models.Appeal, int, error) {
	s.filter = filter
	var out []models.Appeal
	for _, a := range s.appeals {
		if inScope(filter.DirectionScope, a.DirectionID) {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (s *appealRepoStub) ListHistory(ctx context.Context, appealID string) ([]models.AppealHistoryEntry, error) {
	return s.history[appealID], nil
}

type directionStub map[string]*models.Direction

func (d directionStub) GetByID(ctx context.Context, id string) (*models.Direction, error) {
	if dir, ok := d[id]; ok {
		return dir, nil
	}
	return nil, sql.ErrNoRows
}

type holderStub struct {
	roles     []models.UserRole
	direction *string
	holders   []string
}

func (h *holderStub) ListHolders(ctx context.Context, roles []models.UserRole, directionID *string) ([]string, error) {
	h.roles = roles
	h.direction = directionID
	return h.holders, nil
}

const testDirectionID = "5b0e4a36-5f0a-4f54-9a43-3c8b1a2f8d11"

func newTestAppealService(repo *appealRepoStub, holders *holderStub, publisher *recordingPublisher) *AppealService {
	svc := NewAppealService(AppealServiceParams{
		Appeals:    repo,
		Directions: directionStub{testDirectionID: {ID: testDirectionID, Name: "Infrastructure"}},
		Holders:    holders,
		Publisher:  publisher,
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmitAppeal(t *testing.T) {
	repo := newAppealRepoStub()
	holders := &holderStub{holders: []string{"lead-1", "lead-2"}}
	publisher := &recordingPublisher{}
	svc := newTestAppealService(repo, holders, publisher)

	resp, err := svc.Submit(context.Background(), dto.CreateAppealRequest{
		Title:       "  Broken heating ",
		Description: "Room 204 has been cold all week",
		Contact:     strPtr("student@example.com"),
		ContactType: strPtr("email"),
		DirectionID: strPtr(testDirectionID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppealStatusNew, resp.Status)
	assert.Len(t, resp.PublicToken, 43)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, "Broken heating", created.Title)
	assert.Equal(t, models.AppealPriorityNormal, created.Priority)
	assert.Equal(t, resp.PublicToken, created.PublicToken)
	assert.Equal(t, models.ContactTypeEmail, *created.ContactType)

	assert.Equal(t, []models.UserRole{models.RoleLead}, holders.roles)
	assert.Equal(t, testDirectionID, *holders.direction)
	events := publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventNewAppeal, events[0].Type)
	assert.Equal(t, []string{"lead-1", "lead-2"}, events[0].RecipientIDs)
	assert.Nil(t, events[0].Submitter)
}

func TestSubmitUntriagedAppealNotifiesGlobalRoles(t *testing.T) {
	holders := &holderStub{holders: []string{"board-1"}}
	svc := newTestAppealService(newAppealRepoStub(), holders, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), dto.CreateAppealRequest{
		Title:       "Library hours",
		Description: "Please extend library hours during exams",
		IsAnonymous: true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.UserRole{models.RoleBoard, models.RoleStaff}, holders.roles)
	assert.Nil(t, holders.direction)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestAppealService(newAppealRepoStub(), &holderStub{}, &recordingPublisher{})
	cases := map[string]dto.CreateAppealRequest{
		"missing title":     {Description: "Room 204 has been cold all week"},
		"bad contact type":  {Title: "Heating", Description: "Room 204 has been cold", Contact: strPtr("x"), ContactType: strPtr("sms")},
		"contact w/o type":  {Title: "Heating", Description: "Room 204 has been cold", Contact: strPtr("student@example.com")},
		"invalid email":     {Title: "Heating", Description: "Room 204 has been cold", Contact: strPtr("nope"), ContactType: strPtr("email")},
		"telegram handle":   {Title: "Heating", Description: "Room 204 has been cold", Contact: strPtr("@student"), ContactType: strPtr("telegram")},
		"unknown direction": {Title: "Heating", Description: "Room 204 has been cold", DirectionID: strPtr("0b0e4a36-5f0a-4f54-9a43-3c8b1a2f8d11")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), req)
			requireAppErrorCode(t, err, http.StatusBadRequest)
		})
	}
}

func TestSubmitAcceptsTelegramChatID(t *testing.T) {
	repo := newAppealRepoStub()
	svc := newTestAppealService(repo, &holderStub{}, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), dto.CreateAppealRequest{
		Title:       "Heating",
		Description: "Room 204 has been cold",
		Contact:     strPtr("123456789"),
		ContactType: strPtr("telegram"),
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.ContactTypeTelegram, *repo.created[0].ContactType)
	assert.Equal(t, "123456789", *repo.created[0].Contact)
}

func TestSubmitStorageFailureIsGeneric(t *testing.T) {
	repo := newAppealRepoStub()
	repo.createErr = errors.New("pq: relation appeals does not exist")
	svc := newTestAppealService(repo, &holderStub{}, &recordingPublisher{})

	_, err := svc.Submit(context.Background(), dto.CreateAppealRequest{Title: "Heating", Description: "Room 204 has been cold"})
	requireAppErrorCode(t, err, http.StatusServiceUnavailable)
}

func TestPublicStatus(t *testing.T) {
	appeal := newTestAppeal("appeal-1", nil)
	appeal.Status = models.AppealStatusClosed
	closedAt := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	appeal.ClosedAt = &closedAt
	svc := newTestAppealService(newAppealRepoStub(appeal), &holderStub{}, &recordingPublisher{})

	resp, err := svc.PublicStatus(context.Background(), "token-appeal-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppealStatusClosed, resp.Status)
	assert.Equal(t, "Broken heating", resp.Title)
	assert.Equal(t, closedAt, *resp.ClosedAt)
	assert.Equal(t, "Closed", resp.StatusInfo.Label)
}

func TestPublicStatusUnknownToken(t *testing.T) {
	svc := newTestAppealService(newAppealRepoStub(newTestAppeal("appeal-1", nil)), &holderStub{}, &recordingPublisher{})

	_, errUnknown := svc.PublicStatus(context.Background(), "never-issued")
	requireAppErrorCode(t, errUnknown, http.StatusNotFound)
	_, errMalformed := svc.PublicStatus(context.Background(), "%%%")
	requireAppErrorCode(t, errMalformed, http.StatusNotFound)
	assert.Equal(t, errUnknown.Error(), errMalformed.Error())
}

func TestListAppealsScopedByGrants(t *testing.T) {
	repo := newAppealRepoStub(
		newTestAppeal("appeal-x", strPtr("dir-x")),
		newTestAppeal("appeal-y", strPtr("dir-y")),
		newTestAppeal("appeal-none", nil),
	)
	svc := newTestAppealService(repo, &holderStub{}, &recordingPublisher{})

	items, page, err := svc.List(context.Background(), leadOf("dir-x"), dto.AppealQuery{PageSize: 500})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "appeal-x", items[0].ID)
	assert.Equal(t, []string{"dir-x"}, repo.filter.DirectionScope)
	assert.Equal(t, 20, page.PageSize)

	staff := &models.Principal{UserID: "staff-1", Grants: []models.RoleGrant{grant(models.RoleStaff, "")}}
	items, _, err = svc.List(context.Background(), staff, dto.AppealQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Nil(t, repo.filter.DirectionScope)

	_, _, err = svc.List(context.Background(), &models.Principal{UserID: "nobody"}, dto.AppealQuery{})
	requireAppErrorCode(t, err, http.StatusForbidden)

	_, _, err = svc.List(context.Background(), staff, dto.AppealQuery{Status: []models.AppealStatus{"archived"}})
	requireAppErrorCode(t, err, http.StatusBadRequest)
}

func TestGetAppealHidesOutOfScope(t *testing.T) {
	repo := newAppealRepoStub(newTestAppeal("appeal-y", strPtr("dir-y")), newTestAppeal("appeal-none", nil))
	repo.history["appeal-y"] = []models.AppealHistoryEntry{{ID: "h-1", AppealID: "appeal-y", Action: models.HistoryStatusChanged}}
	svc := newTestAppealService(repo, &holderStub{}, &recordingPublisher{})

	_, errDenied := svc.Get(context.Background(), leadOf("dir-x"), "appeal-y")
	requireAppErrorCode(t, errDenied, http.StatusNotFound)
	_, errMissing := svc.Get(context.Background(), leadOf("dir-x"), "missing")
	requireAppErrorCode(t, errMissing, http.StatusNotFound)
	assert.Equal(t, errDenied.Error(), errMissing.Error())

	_, err := svc.Get(context.Background(), leadOf("dir-x"), "appeal-none")
	requireAppErrorCode(t, err, http.StatusNotFound)

	detail, err := svc.Get(context.Background(), leadOf("dir-y"), "appeal-y")
	require.NoError(t, err)
	assert.Equal(t, "New", detail.StatusInfo.Label)
	assert.Len(t, detail.Transitions, 3)

	_, err = svc.History(context.Background(), leadOf("dir-x"), "appeal-y")
	requireAppErrorCode(t, err, http.StatusNotFound)
	entries, err := svc.History(context.Background(), leadOf("dir-y"), "appeal-y")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGeneratePublicTokenIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := generatePublicToken()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}
