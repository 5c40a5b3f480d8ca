package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFollowupMetrics_HTTP(t *testing.T) {
	c := newTestCollector(t)
	m := NewFollowupMetrics(c)

	m.RecordHTTPRequest("GET", "/api/v1/patient/commitments", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/patient/commitments", 200, 30*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/followups/records", 409, time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Equal(t, 2.0, metricValue(t, out, `test_unit_http_requests_total{method="GET",path="/api/v1/patient/commitments",status_code="200"}`))
	assert.Equal(t, 1.0, metricValue(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/followups/records",status_code="409"}`))
	assert.Equal(t, 2.0, metricValue(t, out, `test_unit_http_request_duration_seconds_count{method="GET",path="/api/v1/patient/commitments"}`))
}

func TestFollowupMetrics_CacheAndClassifications(t *testing.T) {
	c := newTestCollector(t)
	m := NewFollowupMetrics(c)

	m.RecordCacheAccess("compliance", true)
	m.RecordCacheAccess("compliance", false)
	m.RecordCacheAccess("compliance", false)
	m.RecordClassifications([]string{"pending", "completed", "pending", "hidden"})

	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, metricValue(t, out, `test_unit_cache_hits_total{cache="compliance"}`))
	assert.Equal(t, 2.0, metricValue(t, out, `test_unit_cache_misses_total{cache="compliance"}`))
	assert.Equal(t, 2.0, metricValue(t, out, `test_unit_checkpoint_classifications_total{state="pending"}`))
	assert.Equal(t, 1.0, metricValue(t, out, `test_unit_checkpoint_classifications_total{state="hidden"}`))
}

func TestFollowupMetrics_Events(t *testing.T) {
	c := newTestCollector(t)
	m := NewFollowupMetrics(c)

	m.RecordEvent("followup.binding.created", nil)
	m.RecordEvent("followup.binding.created", errors.New("broker down"))

	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, metricValue(t, out, `test_unit_events_published_total{result="ok",topic="followup.binding.created"}`))
	assert.Equal(t, 1.0, metricValue(t, out, `test_unit_events_published_total{result="error",topic="followup.binding.created"}`))
}

func TestNewNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordCacheAccess("compliance", true)
		m.RecordClassifications([]string{"expired"})
		m.RecordEvent("t", nil)
		m.SubmissionsTotal.WithLabelValues("daily").Inc()
		m.ConflictsTotal.WithLabelValues("submit").Inc()
		m.CurrentSwitchesTotal.WithLabelValues("set").Inc()
		m.HTTPActiveRequests.WithLabelValues().Inc()
		NewTimer(m.ScheduleBuildDuration.WithLabelValues()).ObserveDuration()
		m.ScheduleItems.WithLabelValues().Observe(3)
	})
}
