package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type contentService interface {
	ListPublished(ctx context.Context, query dto.ContentQuery) ([]models.Content, *models.Pagination, error)
	ListAll(ctx context.Context, actor *models.Principal, query dto.ContentQuery) ([]models.Content, *models.Pagination, error)
	GetPublished(ctx context.Context, slug string) (*models.Content, error)
	Create(ctx context.Context, actor *models.Principal, req dto.ContentRequest, meta dto.AuditMeta) (*models.Content, error)
	Update(ctx context.Context, actor *models.Principal, id string, req dto.ContentRequest, meta dto.AuditMeta) (*models.Content, error)
	Delete(ctx context.Context, actor *models.Principal, id string, meta dto.AuditMeta) error
}

// ContentHandler serves news, guides and FAQ entries.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(service contentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func contentQuery(c *gin.Context) dto.ContentQuery {
	return dto.ContentQuery{
		Kind:     models.ContentKind(c.Query("kind")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
}

// ListPublished godoc
// @Summary List published content
// @Tags Content
// @Produce json
// @Param kind query string false "news, guide or faq"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /content [get]
func (h *ContentHandler) ListPublished(c *gin.Context) {
	items, pagination, err := h.service.ListPublished(c.Request.Context(), contentQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetPublished godoc
// @Summary Get published content by slug
// @Tags Content
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} response.Envelope
// @Router /content/{slug} [get]
func (h *ContentHandler) GetPublished(c *gin.Context) {
	item, err := h.service.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ListAll godoc
// @Summary List all content including drafts
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /manage/content [get]
func (h *ContentHandler) ListAll(c *gin.Context) {
	items, pagination, err := h.service.ListAll(c.Request.Context(), principalFromContext(c), contentQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create content
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body dto.ContentRequest true "Content"
// @Success 201 {object} response.Envelope
// @Router /content [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid content payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), principalFromContext(c), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Replace content
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Content ID"
// @Param payload body dto.ContentRequest true "Content"
// @Success 200 {object} response.Envelope
// @Router /content/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid content payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete content
// @Tags Content
// @Param id path string true "Content ID"
// @Success 204
// @Router /content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id"), auditMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
