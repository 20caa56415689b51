package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
)

type statsServiceMock struct {
	query dto.StatsQuery
	hit   bool
}

func (m *statsServiceMock) Overview(ctx context.Context, actor *models.Principal, query dto.StatsQuery) (*models.StatsOverview, bool, error) {
	m.query = query
	return &models.StatsOverview{Total: 3}, m.hit, nil
}

func (m *statsServiceMock) Report(ctx context.Context, actor *models.Principal, query dto.StatsQuery) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

func TestStatsHandlerOverview(t *testing.T) {
	svc := &statsServiceMock{hit: true}
	handler := NewStatsHandler(svc)

	c, w := newTestContext(http.MethodGet, "/stats/overview?from=2024-03-01&to=2024-03-31", nil)
	handler.Overview(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.query.From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *svc.query.From)

	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])

	c, w = newTestContext(http.MethodGet, "/stats/overview?from=March", nil)
	handler.Overview(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHandlerReport(t *testing.T) {
	handler := NewStatsHandler(&statsServiceMock{})
	handler.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

	c, w := newTestContext(http.MethodGet, "/stats/report.pdf", nil)
	handler.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "appeal-stats-2024-03-05.pdf")
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
	})
	c, w := newTestContext(http.MethodGet, "/ready", nil)
	healthy.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	degraded := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	c, w = newTestContext(http.MethodGet, "/ready", nil)
	degraded.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
