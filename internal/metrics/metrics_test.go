package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.AddItemsFetched(3)
	m.IncrementPublished()
	m.IncrementPublished()
	m.IncrementDuplicates()

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats["items_fetched"])
	assert.Equal(t, int64(2), stats["posts_published"])
	assert.Equal(t, int64(1), stats["duplicates_skipped"])
	assert.True(t, m.Healthy())
}

func TestMetrics_ErrorThenCycleRestoresHealth(t *testing.T) {
	m := New()
	m.IncrementDeliveryFailures(errors.New("telegram down"))
	assert.False(t, m.Healthy())
	assert.Equal(t, "telegram down", m.GetStats()["last_error"])

	m.RecordCycle(2 * time.Second)
	m.RecordCycle(4 * time.Second)
	assert.True(t, m.Healthy())
	assert.Equal(t, int64(3000), m.GetStats()["average_cycle_ms"])
}
