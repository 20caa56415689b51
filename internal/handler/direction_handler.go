package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type directionService interface {
	List(ctx context.Context) ([]models.Direction, error)
	Create(ctx context.Context, actor *models.Principal, req dto.CreateDirectionRequest, meta dto.AuditMeta) (*models.Direction, error)
}

// DirectionHandler exposes council directions.
type DirectionHandler struct {
	service directionService
}

// NewDirectionHandler constructs DirectionHandler.
func NewDirectionHandler(service directionService) *DirectionHandler {
	return &DirectionHandler{service: service}
}

// List godoc
// @Summary List directions
// @Tags Directions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /directions [get]
func (h *DirectionHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create a direction
// @Tags Directions
// @Accept json
// @Produce json
// @Param payload body dto.CreateDirectionRequest true "Direction"
// @Success 201 {object} response.Envelope
// @Router /directions [post]
func (h *DirectionHandler) Create(c *gin.Context) {
	var req dto.CreateDirectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid direction payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), principalFromContext(c), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}
