package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/council-portal-api/internal/models"
)

type dueAppealLister interface {
	ListDueBetween(ctx context.Context, from, to time.Time) ([]models.Appeal, error)
}

// OverdueServiceConfig controls the sweep cadence.
type OverdueServiceConfig struct {
	Interval time.Duration
	// Lookback bounds the first sweep after startup.
	Lookback time.Duration
}

// OverdueService periodically notifies assignees of appeals whose deadline
// has just passed.
type OverdueService struct {
	appeals   dueAppealLister
	publisher EventPublisher
	logger    *zap.Logger
	cfg       OverdueServiceConfig
	now       func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

// NewOverdueService constructs the sweeper.
func NewOverdueService(appeals dueAppealLister, publisher EventPublisher, logger *zap.Logger, cfg OverdueServiceConfig) *OverdueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	return &OverdueService{appeals: appeals, publisher: publisher, logger: logger, cfg: cfg, now: time.Now}
}

// Start runs Sweep on every tick until ctx is cancelled.
func (s *OverdueService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	go func() {
		defer ticker.Stop()
		s.Sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Sweep emits one appeal_overdue event per assigned open appeal whose deadline
// passed since the previous sweep. It returns the number of events published.
func (s *OverdueService) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	from := s.lastSweep
	if from.IsZero() {
		from = now.Add(-s.cfg.Lookback)
	}
	appeals, err := s.appeals.ListDueBetween(ctx, from, now)
	if err != nil {
		s.logger.Sugar().Warnw("overdue sweep failed", "error", err)
		return 0
	}
	s.lastSweep = now

	published := 0
	for _, appeal := range appeals {
		if appeal.AssignedTo == nil || s.publisher == nil {
			continue
		}
		event := models.AppealEvent{
			Type:         models.EventAppealOverdue,
			AppealID:     appeal.ID,
			RecipientIDs: []string{*appeal.AssignedTo},
			Payload: map[string]string{
				"title":    appeal.Title,
				"status":   string(appeal.Status),
				"deadline": derefString(formatDate(appeal.Deadline)),
			},
			OccurredAt: now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Sugar().Warnw("failed to publish overdue event", "appeal_id", appeal.ID, "error", err)
			continue
		}
		published++
	}
	if published > 0 {
		s.logger.Info("overdue appeals announced", zap.Int("count", published))
	}
	return published
}
