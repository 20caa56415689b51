package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type notificationSettingsService interface {
	Get(ctx context.Context, actor *models.Principal) (*models.NotificationSettings, error)
	Update(ctx context.Context, actor *models.Principal, req dto.UpdateNotificationSettingsRequest, meta dto.AuditMeta) (*models.NotificationSettings, error)
	Logs(ctx context.Context, actor *models.Principal, channel string, limit, offset int) ([]models.NotificationLogEntry, error)
}

// NotificationSettingsHandler exposes the caller's notification preferences.
type NotificationSettingsHandler struct {
	service notificationSettingsService
}

// NewNotificationSettingsHandler constructs NotificationSettingsHandler.
func NewNotificationSettingsHandler(service notificationSettingsService) *NotificationSettingsHandler {
	return &NotificationSettingsHandler{service: service}
}

// Get godoc
// @Summary Get own notification settings
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/notification-settings [get]
func (h *NotificationSettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Replace own notification settings
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.UpdateNotificationSettingsRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Router /me/notification-settings [put]
func (h *NotificationSettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid settings payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), principalFromContext(c), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Logs godoc
// @Summary List own delivery log
// @Tags Notifications
// @Produce json
// @Param channel query string false "email, push or telegram"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /me/notification-logs [get]
func (h *NotificationSettingsHandler) Logs(c *gin.Context) {
	entries, err := h.service.Logs(c.Request.Context(), principalFromContext(c), c.Query("channel"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
