package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestQueueTransitionIgnoresZero(t *testing.T) {
	m := Default()
	before := testutil.ToFloat64(m.queueTransitions.WithLabelValues("cleaned"))

	m.QueueTransition("cleaned", 0)
	m.QueueTransition("cleaned", 3)

	assert.Equal(t, before+3, testutil.ToFloat64(m.queueTransitions.WithLabelValues("cleaned")))
}

func TestObserveGenerationCountsOutcome(t *testing.T) {
	m := Default()
	before := testutil.ToFloat64(m.generations.WithLabelValues("license"))

	m.ObserveGeneration("license", 150*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(m.generations.WithLabelValues("license")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGeneration("success", time.Second)
		m.EnqueueResult("queued")
		m.QueueTransition("queued", 1)
		m.ArticleSaved(true)
		m.ObserveHTTP("GET", "/health", "200", time.Millisecond)
		m.RateLimited()
	})
}
