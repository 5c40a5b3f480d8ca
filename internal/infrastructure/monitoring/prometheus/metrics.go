package prometheus

import (
	"strconv"
	"time"
)

// FollowupMetrics holds every metric the service exports.
type FollowupMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Classifications counts checkpoints per resulting state, hidden included.
	Classifications       CounterVec
	ScheduleBuildDuration HistogramVec
	ScheduleItems         HistogramVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	SubmissionsTotal     CounterVec
	ConflictsTotal       CounterVec
	CurrentSwitchesTotal CounterVec
	EventsPublished      CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultScheduleDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25}
	DefaultScheduleSizeBuckets     = []float64{0, 1, 2, 4, 8, 16, 32, 64}
)

func NewFollowupMetrics(collector MetricsCollector) *FollowupMetrics {
	m := &FollowupMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")

	m.Classifications = collector.RegisterCounter("checkpoint_classifications_total", "Checkpoints classified, by state", "state")
	m.ScheduleBuildDuration = collector.RegisterHistogram("schedule_build_duration_seconds", "Compliance list build duration", DefaultScheduleDurationBuckets)
	m.ScheduleItems = collector.RegisterHistogram("schedule_items", "Items in a returned compliance list", DefaultScheduleSizeBuckets)

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.SubmissionsTotal = collector.RegisterCounter("submissions_total", "Accepted submissions", "checkpoint")
	m.ConflictsTotal = collector.RegisterCounter("conflicts_total", "Requests rejected with a conflict", "operation")
	m.CurrentSwitchesTotal = collector.RegisterCounter("current_switches_total", "Current plan changes", "action")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Domain events handed to the publisher", "topic", "result")

	return m
}

// NewNoopMetrics returns metrics that record nothing. Used when metrics are
// disabled and in tests.
func NewNoopMetrics() *FollowupMetrics {
	return &FollowupMetrics{
		HTTPRequestsTotal:     noopCounterVec{},
		HTTPRequestDuration:   noopHistogramVec{},
		HTTPActiveRequests:    noopGaugeVec{},
		Classifications:       noopCounterVec{},
		ScheduleBuildDuration: noopHistogramVec{},
		ScheduleItems:         noopHistogramVec{},
		CacheHitsTotal:        noopCounterVec{},
		CacheMissesTotal:      noopCounterVec{},
		SubmissionsTotal:      noopCounterVec{},
		ConflictsTotal:        noopCounterVec{},
		CurrentSwitchesTotal:  noopCounterVec{},
		EventsPublished:       noopCounterVec{},
	}
}

func (m *FollowupMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *FollowupMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordClassifications counts one classification per state value.
func (m *FollowupMetrics) RecordClassifications(states []string) {
	for _, s := range states {
		m.Classifications.WithLabelValues(s).Inc()
	}
}

func (m *FollowupMetrics) RecordEvent(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(topic, result).Inc()
}
