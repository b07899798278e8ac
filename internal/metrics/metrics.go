package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics for one run.
type Registry struct {
	*prometheus.Registry

	// Upstream HTTP metrics
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec

	// Run metrics
	fetchTotal         *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	indicatorAvailable *prometheus.GaugeVec
	signalScore        prometheus.Gauge
	recommendation     *prometheus.GaugeVec
	runDuration        prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_upstream_requests_total",
				Help: "Total number of upstream HTTP requests",
			},
			[]string{"host", "status"},
		),

		upstreamRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulse_upstream_request_duration_seconds",
				Help:    "Upstream HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
	}

	reg.MustRegister(r.upstreamRequestsTotal)
	reg.MustRegister(r.upstreamRequestDuration)

	r.fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_fetch_total",
			Help: "Data source fetches by outcome",
		},
		[]string{"source", "status"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_lookups_total",
			Help: "Cache lookups by key and result",
		},
		[]string{"key", "result"},
	)
	r.indicatorAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pulse_indicator_available",
			Help: "1 if the indicator was computed in the last run, 0 if absent",
		},
		[]string{"indicator"},
	)
	r.signalScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_signal_score",
			Help: "Aggregated signal score of the last run",
		},
	)
	r.recommendation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pulse_recommendation",
			Help: "1 for the recommendation of the last run",
		},
		[]string{"action"},
	)
	r.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_run_duration_seconds",
			Help:    "Report run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	reg.MustRegister(r.fetchTotal)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.indicatorAvailable)
	reg.MustRegister(r.signalScore)
	reg.MustRegister(r.recommendation)
	reg.MustRegister(r.runDuration)

	return r
}

// RecordUpstream records metrics for one upstream HTTP request.
func (r *Registry) RecordUpstream(host string, status int, duration float64) {
	r.upstreamRequestsTotal.WithLabelValues(host, statusToString(status)).Inc()
	r.upstreamRequestDuration.WithLabelValues(host).Observe(duration)
}

// RecordFetch records a data source fetch outcome.
func (r *Registry) RecordFetch(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetchTotal.WithLabelValues(source, status).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(key, result).Inc()
}

// SetIndicatorAvailable flags whether an indicator was computed.
func (r *Registry) SetIndicatorAvailable(name string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	r.indicatorAvailable.WithLabelValues(name).Set(v)
}

// RecordScore records the aggregated score and recommendation.
func (r *Registry) RecordScore(score float64, action string) {
	r.signalScore.Set(score)
	r.recommendation.Reset()
	r.recommendation.WithLabelValues(action).Set(1)
}

// RecordRun records a completed run.
func (r *Registry) RecordRun(duration float64) {
	r.runDuration.Observe(duration)
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status == 0:
		return "error"
	default:
		return "1xx"
	}
}
