package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the ChemCheck application metrics.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	ChecksTotal      CounterVec
	CheckDuration    HistogramVec
	BalanceTotal     CounterVec
	ParseErrorTerms  CounterVec
	BatchSize        HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	EventsTotal      CounterVec
	DBQueryDuration  HistogramVec
	ErrorsTotal      CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultCheckDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5}
	DefaultBatchSizeBuckets     = []float64{1, 5, 10, 25, 50, 100, 250, 500}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every application metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal: collector.RegisterCounter("http_requests_total",
			"Total number of HTTP requests.", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests: collector.RegisterGauge("http_active_requests",
			"In-flight HTTP requests.", "method"),

		ChecksTotal: collector.RegisterCounter("checks_total",
			"Answer checks by verdict reason.", "reason", "accepted"),
		CheckDuration: collector.RegisterHistogram("check_duration_seconds",
			"Time spent parsing and checking one answer.", DefaultCheckDurationBuckets, "kind"),
		BalanceTotal: collector.RegisterCounter("balance_total",
			"Balance requests by outcome.", "kind", "outcome"),
		ParseErrorTerms: collector.RegisterCounter("parse_error_terms_total",
			"Terms replaced by an error marker during parsing.", "side"),
		BatchSize: collector.RegisterHistogram("batch_size",
			"Number of items per batch check.", DefaultBatchSizeBuckets),
		CacheHitsTotal: collector.RegisterCounter("cache_hits_total",
			"Verdict cache hits.", "cache"),
		CacheMissesTotal: collector.RegisterCounter("cache_misses_total",
			"Verdict cache misses.", "cache"),
		EventsTotal: collector.RegisterCounter("events_total",
			"Broker events by topic and result.", "topic", "result"),
		DBQueryDuration: collector.RegisterHistogram("db_query_duration_seconds",
			"Database query latency.", DefaultDBDurationBuckets, "operation"),
		ErrorsTotal: collector.RegisterCounter("errors_total",
			"Errors by application error code.", "code"),
	}
}

// RecordHTTPRequest records one completed request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordCheck records one verdict.
func (m *AppMetrics) RecordCheck(kind, reason string, accepted bool, elapsed time.Duration) {
	m.ChecksTotal.WithLabelValues(reason, strconv.FormatBool(accepted)).Inc()
	m.CheckDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *AppMetrics) RecordBalance(kind, outcome string) {
	m.BalanceTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *AppMetrics) RecordParseErrors(side string, n int) {
	if n > 0 {
		m.ParseErrorTerms.WithLabelValues(side).Add(float64(n))
	}
}

// RecordCache counts a lookup against the named cache.
func (m *AppMetrics) RecordCache(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *AppMetrics) RecordEvent(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsTotal.WithLabelValues(topic, result).Inc()
}

// RecordDBQuery matches repositories.QueryObserver.
func (m *AppMetrics) RecordDBQuery(operation string, elapsed time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *AppMetrics) RecordError(code string) {
	m.ErrorsTotal.WithLabelValues(code).Inc()
}

// NewNoopAppMetrics returns metrics that record nothing, for processes
// that do not expose a metrics endpoint.
func NewNoopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   noopCounterVec{},
		HTTPRequestDuration: noopHistogramVec{},
		HTTPActiveRequests:  noopGaugeVec{},
		ChecksTotal:         noopCounterVec{},
		CheckDuration:       noopHistogramVec{},
		BalanceTotal:        noopCounterVec{},
		ParseErrorTerms:     noopCounterVec{},
		BatchSize:           noopHistogramVec{},
		CacheHitsTotal:      noopCounterVec{},
		CacheMissesTotal:    noopCounterVec{},
		EventsTotal:         noopCounterVec{},
		DBQueryDuration:     noopHistogramVec{},
		ErrorsTotal:         noopCounterVec{},
	}
}
