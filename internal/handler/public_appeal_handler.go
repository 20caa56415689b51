package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/internal/service"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type publicAppealService interface {
	Submit(ctx context.Context, req dto.CreateAppealRequest) (*dto.CreateAppealResponse, error)
	PublicStatus(ctx context.Context, token string) (*dto.PublicStatusResponse, error)
}

type attachmentUploader interface {
	Upload(ctx context.Context, publicToken string, upload service.AttachmentUpload) (*models.AppealAttachment, error)
}

// PublicAppealHandler serves anonymous submitters.
type PublicAppealHandler struct {
	appeals     publicAppealService
	attachments attachmentUploader
}

// NewPublicAppealHandler constructs PublicAppealHandler.
func NewPublicAppealHandler(appeals publicAppealService, attachments attachmentUploader) *PublicAppealHandler {
	return &PublicAppealHandler{appeals: appeals, attachments: attachments}
}

// Submit godoc
// @Summary Submit an appeal
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.CreateAppealRequest true "Appeal payload"
// @Success 201 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /public/appeals [post]
func (h *PublicAppealHandler) Submit(c *gin.Context) {
	var req dto.CreateAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid appeal payload"))
		return
	}
	result, err := h.appeals.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Status godoc
// @Summary Check appeal status by public token
// @Tags Public
// @Produce json
// @Param token path string true "Public token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/appeals/status/{token} [get]
func (h *PublicAppealHandler) Status(c *gin.Context) {
	status, err := h.appeals.PublicStatus(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// UploadAttachment godoc
// @Summary Attach a file to an appeal
// @Tags Public
// @Accept mpfd
// @Produce json
// @Param token path string true "Public token"
// @Param file formData file true "Attachment"
// @Success 201 {object} response.Envelope
// @Router /public/appeals/status/{token}/attachments [post]
func (h *PublicAppealHandler) UploadAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	attachment, err := h.attachments.Upload(c.Request.Context(), c.Param("token"), service.AttachmentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}
