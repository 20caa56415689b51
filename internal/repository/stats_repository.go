package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/council-portal-api/internal/models"
)

// StatsRepository aggregates appeal workload metrics.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview computes counts and response times within the filter scope.
func (r *StatsRepository) Overview(ctx context.Context, filter models.StatsFilter) (*models.StatsOverview, error) {
	where, args := statsWhere(filter)
	overview := &models.StatsOverview{}

	if err := r.db.GetContext(ctx, &overview.Total, "SELECT COUNT(*) FROM appeals WHERE "+where, args...); err != nil {
		return nil, fmt.Errorf("count appeals: %w", err)
	}

	var err error
	if overview.ByStatus, err = r.buckets(ctx, "status", where, args); err != nil {
		return nil, err
	}
	if overview.ByPriority, err = r.buckets(ctx, "priority", where, args); err != nil {
		return nil, err
	}
	if overview.ByDirection, err = r.buckets(ctx, "COALESCE(direction_id::text, 'none')", where, args); err != nil {
		return nil, err
	}

	overdueQuery := "SELECT COUNT(*) FROM appeals WHERE " + where + " AND " + overdueCondition
	if err := r.db.GetContext(ctx, &overview.Overdue, overdueQuery, args...); err != nil {
		return nil, fmt.Errorf("count overdue appeals: %w", err)
	}

	responseQuery := `SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (first_response_at - created_at)) / 3600), 0)
        FROM appeals WHERE ` + where + " AND first_response_at IS NOT NULL"
	if err := r.db.GetContext(ctx, &overview.AvgFirstResponseHours, responseQuery, args...); err != nil {
		return nil, fmt.Errorf("average first response: %w", err)
	}
	return overview, nil
}

func (r *StatsRepository) buckets(ctx context.Context, expr, where string, args []interface{}) ([]models.CountBucket, error) {
	query := fmt.Sprintf("SELECT %s AS key, COUNT(*) AS count FROM appeals WHERE %s GROUP BY 1 ORDER BY 2 DESC", expr, where)
	var buckets []models.CountBucket
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("group appeals: %w", err)
	}
	return buckets, nil
}

func statsWhere(filter models.StatsFilter) (string, []interface{}) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if cond := directionScopeCondition(filter.DirectionScope, &args); cond != "" {
		conditions = append(conditions, cond)
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return strings.Join(conditions, " AND "), args
}
