package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/middleware"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/pkg/response"
)

type statsService interface {
	Overview(ctx context.Context, actor *models.Principal, query dto.StatsQuery) (*models.StatsOverview, bool, error)
	Report(ctx context.Context, actor *models.Principal, query dto.StatsQuery) ([]byte, error)
}

// StatsHandler exposes appeal statistics.
type StatsHandler struct {
	service statsService
	now     func() time.Time
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service, now: time.Now}
}

func statsQuery(c *gin.Context) (dto.StatsQuery, error) {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		return dto.StatsQuery{}, err
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return dto.StatsQuery{}, err
	}
	return dto.StatsQuery{From: from, To: to}, nil
}

// Overview godoc
// @Summary Appeal statistics overview
// @Tags Stats
// @Produce json
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	query, err := statsQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	overview, hit, err := h.service.Overview(c.Request.Context(), principalFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// Report godoc
// @Summary Appeal statistics as PDF
// @Tags Stats
// @Produce application/pdf
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Success 200 {file} binary
// @Router /stats/report.pdf [get]
func (h *StatsHandler) Report(c *gin.Context) {
	query, err := statsQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.service.Report(c.Request.Context(), principalFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("appeal-stats-%s.pdf", h.now().UTC().Format(dateLayout))
	response.File(c, filename, "application/pdf", int64(len(out)), bytes.NewReader(out))
}
