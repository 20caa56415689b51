package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/dto"
	"github.com/noah-isme/council-portal-api/internal/models"
	appErrors "github.com/noah-isme/council-portal-api/pkg/errors"
	"github.com/noah-isme/council-portal-api/pkg/export"
)

const statsCachePrefix = "stats:overview:"

type statsRepository interface {
	Overview(ctx context.Context, filter models.StatsFilter) (*models.StatsOverview, error)
}

type directionLister interface {
	List(ctx context.Context) ([]models.Direction, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// StatsServiceConfig controls statistics caching.
type StatsServiceConfig struct {
	CacheTTL time.Duration
}

// StatsService computes appeal workload statistics scoped by grants.
type StatsService struct {
	repo       statsRepository
	directions directionLister
	cache      *CacheService
	renderer   reportRenderer
	logger     *zap.Logger
	cfg        StatsServiceConfig
	now        func() time.Time
}

// StatsServiceParams groups constructor dependencies.
type StatsServiceParams struct {
	Repo       statsRepository
	Directions directionLister
	Cache      *CacheService
	Renderer   reportRenderer
	Logger     *zap.Logger
	Config     StatsServiceConfig
}

// NewStatsService constructs the service.
func NewStatsService(params StatsServiceParams) *StatsService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := params.Renderer
	if renderer == nil {
		renderer = export.NewPDFExporter()
	}
	return &StatsService{
		repo:       params.Repo,
		directions: params.Directions,
		cache:      params.Cache,
		renderer:   renderer,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Overview returns statistics over the directions actor leads, or over every
// appeal for global roles. The boolean reports a cache hit.
func (s *StatsService) Overview(ctx context.Context, actor *models.Principal, query dto.StatsQuery) (*models.StatsOverview, bool, error) {
	if actor == nil {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	scope, ok := StatsScope(actor.Grants)
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "statistics require a lead, board or staff role")
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	key := statsCacheKey(scope, query)
	if s.cache != nil {
		var cached models.StatsOverview
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	overview, err := s.repo.Overview(ctx, models.StatsFilter{DirectionScope: scope, From: query.From, To: query.To})
	if err != nil {
		return nil, false, appErrors.Storage(err, "failed to compute statistics")
	}
	overview.GeneratedAt = s.now().UTC()
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, overview, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return overview, false, nil
}

// Report renders the overview as a PDF document.
func (s *StatsService) Report(ctx context.Context, actor *models.Principal, query dto.StatsQuery) ([]byte, error) {
	overview, _, err := s.Overview(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	names := map[string]string{"none": "Untriaged"}
	if s.directions != nil {
		directions, err := s.directions.List(ctx)
		if err != nil {
			s.logger.Warn("failed to load direction names for report", zap.Error(err))
		}
		for _, d := range directions {
			names[d.ID] = d.Name
		}
	}

	statusRows := make([][]string, 0, len(overview.ByStatus))
	for _, b := range overview.ByStatus {
		statusRows = append(statusRows, []string{models.DescribeStatus(models.AppealStatus(b.Key)).Label, strconv.Itoa(b.Count)})
	}
	priorityRows := make([][]string, 0, len(overview.ByPriority))
	for _, b := range overview.ByPriority {
		priorityRows = append(priorityRows, []string{models.DescribePriority(models.AppealPriority(b.Key)).Label, strconv.Itoa(b.Count)})
	}
	directionRows := make([][]string, 0, len(overview.ByDirection))
	for _, b := range overview.ByDirection {
		name, ok := names[b.Key]
		if !ok {
			name = b.Key
		}
		directionRows = append(directionRows, []string{name, strconv.Itoa(b.Count)})
	}

	out, err := s.renderer.Render(export.Report{
		Title:    "Appeal statistics",
		Subtitle: reportSubtitle(overview.GeneratedAt, query),
		Sections: []export.Section{
			{
				Heading: "Summary",
				Headers: []string{"Metric", "Value"},
				Rows: [][]string{
					{"Total appeals", strconv.Itoa(overview.Total)},
					{"Overdue", strconv.Itoa(overview.Overdue)},
					{"Avg. first response (hours)", strconv.FormatFloat(overview.AvgFirstResponseHours, 'f', 1, 64)},
				},
			},
			{Heading: "By status", Headers: []string{"Status", "Appeals"}, Rows: statusRows},
			{Heading: "By priority", Headers: []string{"Priority", "Appeals"}, Rows: priorityRows},
			{Heading: "By direction", Headers: []string{"Direction", "Appeals"}, Rows: directionRows},
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return out, nil
}

func statsCacheKey(scope []string, query dto.StatsQuery) string {
	scopeKey := "all"
	if scope != nil {
		sorted := append([]string(nil), scope...)
		sort.Strings(sorted)
		scopeKey = strings.Join(sorted, ",")
	}
	return fmt.Sprintf("%s%s:%s:%s", statsCachePrefix, scopeKey, formatBound(query.From), formatBound(query.To))
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(deadlineLayout)
}

func reportSubtitle(generated time.Time, query dto.StatsQuery) string {
	subtitle := "Generated " + generated.Format("2006-01-02 15:04 MST")
	if query.From != nil || query.To != nil {
		subtitle += fmt.Sprintf(" | period %s to %s", formatBound(query.From), formatBound(query.To))
	}
	return subtitle
}
