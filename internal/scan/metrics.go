package scan

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scanner. All methods are
// nil-safe so components can run without instrumentation in tests.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesCrawledTotal prometheus.Counter
	FetchRetriesTotal prometheus.Counter
	FetchErrorsTotal  *prometheus.CounterVec
	LinkChecksTotal   prometheus.Counter
	PagesAnalyzed     prometheus.Counter
	ScanDuration      prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesCrawled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscan_pages_crawled_total",
		Help: "Total pages fetched during crawl phases.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscan_fetch_retries_total",
		Help: "Total fetch retry attempts scheduled.",
	})
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seoscan_fetch_errors_total",
			Help: "Total fetch failures by error type.",
		},
		[]string{"error_type"},
	)
	linkChecks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscan_link_checks_total",
		Help: "Total link existence checks issued (cache misses only).",
	})
	pagesAnalyzed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seoscan_pages_analyzed_total",
		Help: "Total pages run through content analysis.",
	})
	scanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seoscan_scan_duration_seconds",
		Help:    "Wall-clock duration of completed scans.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	registry.MustRegister(pagesCrawled, retries, fetchErrors, linkChecks, pagesAnalyzed, scanDuration)

	return &Metrics{
		Registry:          registry,
		PagesCrawledTotal: pagesCrawled,
		FetchRetriesTotal: retries,
		FetchErrorsTotal:  fetchErrors,
		LinkChecksTotal:   linkChecks,
		PagesAnalyzed:     pagesAnalyzed,
		ScanDuration:      scanDuration,
	}
}

// IncPagesCrawled increments the crawled-pages counter.
func (m *Metrics) IncPagesCrawled() {
	if m == nil {
		return
	}
	m.PagesCrawledTotal.Inc()
}

// IncRetries increments the retry counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.FetchRetriesTotal.Inc()
}

// IncFetchError increments the fetch-error counter for an error type.
func (m *Metrics) IncFetchError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncLinkChecks increments the link-check counter.
func (m *Metrics) IncLinkChecks() {
	if m == nil {
		return
	}
	m.LinkChecksTotal.Inc()
}

// IncPagesAnalyzed increments the analyzed-pages counter.
func (m *Metrics) IncPagesAnalyzed() {
	if m == nil {
		return
	}
	m.PagesAnalyzed.Inc()
}

// ObserveScanDuration records a completed scan's duration.
func (m *Metrics) ObserveScanDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.Observe(d.Seconds())
}
