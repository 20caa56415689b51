package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type roleService interface {
	List(ctx context.Context, actor *models.Principal, query dto.RoleQuery) ([]models.RoleGrant, error)
	Grant(ctx context.Context, actor *models.Principal, req dto.GrantRoleRequest, meta dto.AuditMeta) (*models.RoleGrant, error)
	Revoke(ctx context.Context, actor *models.Principal, id string, meta dto.AuditMeta) error
}

// RoleHandler manages council role grants.
type RoleHandler struct {
	service roleService
}

// NewRoleHandler constructs RoleHandler.
func NewRoleHandler(service roleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List godoc
// @Summary List role grants
// @Tags Roles
// @Produce json
// @Param userId query string false "User filter"
// @Param directionId query string false "Direction filter"
// @Param role query string false "Role filter"
// @Success 200 {object} response.Envelope
// @Router /roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	grants, err := h.service.List(c.Request.Context(), principalFromContext(c), dto.RoleQuery{
		UserID:      c.Query("userId"),
		DirectionID: c.Query("directionId"),
		Role:        models.UserRole(c.Query("role")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, nil)
}

// Grant godoc
// @Summary Grant a role
// @Tags Roles
// @Accept json
// @Produce json
// @Param payload body dto.GrantRoleRequest true "Grant"
// @Success 201 {object} response.Envelope
// @Router /roles [post]
func (h *RoleHandler) Grant(c *gin.Context) {
	var req dto.GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid role payload"))
		return
	}
	grant, err := h.service.Grant(c.Request.Context(), principalFromContext(c), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grant)
}

// Revoke godoc
// @Summary Revoke a role grant
// @Tags Roles
// @Param id path string true "Grant ID"
// @Success 204
// @Router /roles/{id} [delete]
func (h *RoleHandler) Revoke(c *gin.Context) {
	if err := h.service.Revoke(c.Request.Context(), principalFromContext(c), c.Param("id"), auditMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
