package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aquaroute"

// Label values shared by callers.
const (
	SweepSourceList   = "list"
	SweepSourceTicker = "ticker"
	CacheHit          = "hit"
	CacheMiss         = "miss"
	CacheError        = "error"
)

// Metrics holds the Prometheus collectors for the report service.
type Metrics struct {
	ReportsCreated  prometheus.Counter
	CommentsCreated prometheus.Counter
	Votes           *prometheus.CounterVec // labels: direction={up,down}
	ReportsExpired  *prometheus.CounterVec // labels: source={list,ticker}
	ListCache       *prometheus.CounterVec // labels: result={hit,miss,error}

	// Image ingestion outcomes; storage={s3,inline,dropped}.
	ImageIngestions     *prometheus.CounterVec
	ImageUploadDuration prometheus.Histogram

	StoreDuration *prometheus.HistogramVec // labels: operation
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_created_total",
			Help:      "Total waterlogging reports created.",
		}),
		CommentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total comments created.",
		}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Accuracy votes recorded by direction.",
		}, []string{"direction"}),
		ReportsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_expired_total",
			Help:      "Expired reports deleted by the lazy list sweep or the background ticker.",
		}, []string{"source"}),
		ListCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_cache_total",
			Help:      "Report list cache lookups by result.",
		}, []string{"result"}),
		ImageIngestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_ingestions_total",
			Help:      "Image ingestion outcomes by where the image ended up.",
		}, []string{"storage"}),
		ImageUploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_upload_duration_seconds",
			Help:      "Duration of transform plus object storage upload.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Document store call duration by operation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ReportsCreated,
		m.CommentsCreated,
		m.Votes,
		m.ReportsExpired,
		m.ListCache,
		m.ImageIngestions,
		m.ImageUploadDuration,
		m.StoreDuration,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
