package models

import "time"

// StatsFilter scopes statistics to a set of directions; a nil scope covers
// every appeal including those without a direction.
type StatsFilter struct {
	DirectionScope []string
	From           *time.Time
	To             *time.Time
}

// CountBucket is a single labelled count.
type CountBucket struct {
	Key   string `db:"key" json:"key"`
	Count int    `db:"count" json:"count"`
}

// StatsOverview aggregates appeal workload metrics.
type StatsOverview struct {
	Total                 int           `json:"total"`
	ByStatus              []CountBucket `json:"by_status"`
	ByPriority            []CountBucket `json:"by_priority"`
	ByDirection           []CountBucket `json:"by_direction"`
	Overdue               int           `json:"overdue"`
	AvgFirstResponseHours float64       `json:"avg_first_response_hours"`
	GeneratedAt           time.Time     `json:"generated_at"`
}

// SystemMetrics is a point-in-time snapshot of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	AppealMutations          uint64    `json:"appeal_mutations"`
	NotificationsDelivered   uint64    `json:"notifications_delivered"`
	NotificationsFailed      uint64    `json:"notifications_failed"`
	RateLimited              uint64    `json:"rate_limited"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
