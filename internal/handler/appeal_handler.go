package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type appealReader interface {
	List(ctx context.Context, actor *models.Principal, query dto.AppealQuery) ([]dto.AppealDetail, *models.Pagination, error)
	Get(ctx context.Context, actor *models.Principal, id string) (*dto.AppealDetail, error)
	History(ctx context.Context, actor *models.Principal, id string) ([]models.AppealHistoryEntry, error)
}

type appealLifecycle interface {
	ChangeStatus(ctx context.Context, actor *models.Principal, appealID string, status models.AppealStatus) (*models.Appeal, error)
	Assign(ctx context.Context, actor *models.Principal, appealID string, assigneeID *string) (*models.Appeal, error)
	SetPriority(ctx context.Context, actor *models.Principal, appealID string, priority models.AppealPriority) (*models.Appeal, error)
	SetDeadline(ctx context.Context, actor *models.Principal, appealID string, deadline *time.Time) (*models.Appeal, error)
	AddComment(ctx context.Context, actor *models.Principal, appealID, body string) (*models.AppealHistoryEntry, error)
}

type attachmentReader interface {
	List(ctx context.Context, actor *models.Principal, appealID string) ([]models.AppealAttachment, error)
	DownloadURL(ctx context.Context, actor *models.Principal, appealID, attachmentID string) (*dto.AttachmentURLResponse, error)
}

// AppealHandler exposes back-office appeal endpoints.
type AppealHandler struct {
	appeals     appealReader
	lifecycle   appealLifecycle
	attachments attachmentReader
	now         func() time.Time
}

// NewAppealHandler constructs AppealHandler.
func NewAppealHandler(appeals appealReader, lifecycle appealLifecycle, attachments attachmentReader) *AppealHandler {
	return &AppealHandler{appeals: appeals, lifecycle: lifecycle, attachments: attachments, now: time.Now}
}

// List godoc
// @Summary List appeals visible to the caller
// @Tags Appeals
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param priority query string false "Comma separated priorities"
// @Param directionId query string false "Direction filter"
// @Param assignedTo query string false "Assignee filter"
// @Param overdue query bool false "Only overdue appeals"
// @Param search query string false "Search title and description"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appeals [get]
func (h *AppealHandler) List(c *gin.Context) {
	var query dto.AppealQuery
	for _, status := range splitQuery(c, "status") {
		query.Status = append(query.Status, models.AppealStatus(status))
	}
	for _, priority := range splitQuery(c, "priority") {
		query.Priority = append(query.Priority, models.AppealPriority(priority))
	}
	query.DirectionID = c.Query("directionId")
	query.AssignedTo = c.Query("assignedTo")
	query.OverdueOnly = c.Query("overdue") == "true"
	query.Search = strings.TrimSpace(c.Query("search"))
	query.Page = queryInt(c, "page", 1)
	query.PageSize = queryInt(c, "limit", 20)

	items, pagination, err := h.appeals.List(c.Request.Context(), principalFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get appeal detail
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /appeals/{id} [get]
func (h *AppealHandler) Get(c *gin.Context) {
	detail, err := h.appeals.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// History godoc
// @Summary Appeal history
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal ID"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/history [get]
func (h *AppealHandler) History(c *gin.Context) {
	entries, err := h.appeals.History(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ChangeStatus godoc
// @Summary Change appeal status
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal ID"
// @Param payload body dto.ChangeStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /appeals/{id}/status [patch]
func (h *AppealHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	appeal, err := h.lifecycle.ChangeStatus(c.Request.Context(), principalFromContext(c), c.Param("id"), req.Status)
	h.respondAppeal(c, appeal, err)
}

// Assign godoc
// @Summary Assign or unassign an appeal
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal ID"
// @Param payload body dto.AssignRequest true "Assignee, null to clear"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/assignee [patch]
func (h *AppealHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid assignee payload"))
		return
	}
	appeal, err := h.lifecycle.Assign(c.Request.Context(), principalFromContext(c), c.Param("id"), req.AssigneeID)
	h.respondAppeal(c, appeal, err)
}

// SetPriority godoc
// @Summary Change appeal priority
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal ID"
// @Param payload body dto.PriorityRequest true "Priority"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/priority [patch]
func (h *AppealHandler) SetPriority(c *gin.Context) {
	var req dto.PriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid priority payload"))
		return
	}
	appeal, err := h.lifecycle.SetPriority(c.Request.Context(), principalFromContext(c), c.Param("id"), req.Priority)
	h.respondAppeal(c, appeal, err)
}

// SetDeadline godoc
// @Summary Set or clear the appeal deadline
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal ID"
// @Param payload body dto.DeadlineRequest true "Deadline as YYYY-MM-DD, null to clear"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/deadline [patch]
func (h *AppealHandler) SetDeadline(c *gin.Context) {
	var req dto.DeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid deadline payload"))
		return
	}
	var deadline *time.Time
	if req.Deadline != nil {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*req.Deadline))
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "deadline must be formatted as YYYY-MM-DD"))
			return
		}
		deadline = &parsed
	}
	appeal, err := h.lifecycle.SetDeadline(c.Request.Context(), principalFromContext(c), c.Param("id"), deadline)
	h.respondAppeal(c, appeal, err)
}

// AddComment godoc
// @Summary Comment on an appeal
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal ID"
// @Param payload body dto.CommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Router /appeals/{id}/comments [post]
func (h *AppealHandler) AddComment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid comment payload"))
		return
	}
	entry, err := h.lifecycle.AddComment(c.Request.Context(), principalFromContext(c), c.Param("id"), req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// ListAttachments godoc
// @Summary List appeal attachments
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal ID"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/attachments [get]
func (h *AppealHandler) ListAttachments(c *gin.Context) {
	items, err := h.attachments.List(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// AttachmentURL godoc
// @Summary Issue a signed download link
// @Tags Appeals
// @Produce json
// @Param id path string true "Appeal ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/attachments/{attachmentId}/url [get]
func (h *AppealHandler) AttachmentURL(c *gin.Context) {
	link, err := h.attachments.DownloadURL(c.Request.Context(), principalFromContext(c), c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

func (h *AppealHandler) respondAppeal(c *gin.Context, appeal *models.Appeal, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewAppealDetail(*appeal, h.now()), nil)
}
