package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/service"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type attachmentDownloader interface {
	Download(ctx context.Context, token string) (*service.AttachmentDownload, error)
}

// AttachmentHandler streams attachments behind signed links.
type AttachmentHandler struct {
	service attachmentDownloader
}

// NewAttachmentHandler constructs AttachmentHandler.
func NewAttachmentHandler(service attachmentDownloader) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Download godoc
// @Summary Download an attachment via signed token
// @Tags Attachments
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /attachments/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	response.File(c, result.FileName, result.MimeType, result.SizeBytes, result.File)
}
