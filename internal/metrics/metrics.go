package metrics

import (
	"sync"
	"time"
)

// Metrics is the process-wide counter set served by the monitor endpoint.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsFetched           int64
	FetchErrors            int64
	PostsPublished         int64
	DuplicatesSkipped      int64
	DeliveryFailures       int64
	SuccessfulTranslations int64
	FailedTranslations     int64
	GoalAlerts             int64

	// Timings
	LastCycleDuration    time.Duration
	AverageCycleDuration time.Duration
	totalCycleDuration   time.Duration
	CycleCount           int64

	// Status
	StartedAt     time.Time
	LastCycleAt   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true, StartedAt: time.Now()}
}

func (m *Metrics) add(counter *int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += int64(n)
}

func (m *Metrics) AddItemsFetched(n int) { m.add(&m.ItemsFetched, n) }
func (m *Metrics) IncrementPublished() { m.add(&m.PostsPublished, 1) }
func (m *Metrics) IncrementDuplicates() { m.add(&m.DuplicatesSkipped, 1) }
func (m *Metrics) IncrementGoalAlerts() { m.add(&m.GoalAlerts, 1) }
func (m *Metrics) IncrementSuccessfulTranslations() { m.add(&m.SuccessfulTranslations, 1) }
func (m *Metrics) IncrementFailedTranslations() { m.add(&m.FailedTranslations, 1) }

// IncrementFetchErrors also records err as the last error seen.
func (m *Metrics) IncrementFetchErrors(err error) {
	m.add(&m.FetchErrors, 1)
	m.SetError(err)
}

// IncrementDeliveryFailures also records err as the last error seen.
func (m *Metrics) IncrementDeliveryFailures(err error) {
	m.add(&m.DeliveryFailures, 1)
	m.SetError(err)
}

// RecordCycle marks the end of one poll cycle.
func (m *Metrics) RecordCycle(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCycleAt = time.Now()
	m.LastCycleDuration = duration
	m.totalCycleDuration += duration
	m.CycleCount++
	m.AverageCycleDuration = m.totalCycleDuration / time.Duration(m.CycleCount)
	m.IsHealthy = true
}

func (m *Metrics) SetError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err.Error()
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// Healthy reports whether the last recorded event was a successful cycle.
func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"items_fetched":           m.ItemsFetched,
		"fetch_errors":            m.FetchErrors,
		"posts_published":         m.PostsPublished,
		"duplicates_skipped":      m.DuplicatesSkipped,
		"delivery_failures":       m.DeliveryFailures,
		"successful_translations": m.SuccessfulTranslations,
		"failed_translations":     m.FailedTranslations,
		"goal_alerts":             m.GoalAlerts,
		"cycles":                  m.CycleCount,
		"last_cycle_ms":           m.LastCycleDuration.Milliseconds(),
		"average_cycle_ms":        m.AverageCycleDuration.Milliseconds(),
		"uptime_seconds":          int64(time.Since(m.StartedAt).Seconds()),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
	if !m.LastCycleAt.IsZero() {
		stats["last_cycle_at"] = m.LastCycleAt.Format(time.RFC3339)
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
