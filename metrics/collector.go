package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name (e.g. "myapi" -> myapi_requests_total)
	Namespace string

	// DurationBuckets overrides the request duration histogram buckets
	DurationBuckets []float64

	// StageBuckets overrides the per-stage duration histogram buckets
	StageBuckets []float64
}

// Collector is the Prometheus-backed Sink. It owns three instruments:
//
//   - requests_total{base,method,path,code} (Counter)
//   - request_duration_seconds{base,method,path} (Histogram)
//   - request_stage_duration_seconds{base,stage} (Histogram)
//
// A Collector is created unregistered; call Register to expose it. It is safe
// for concurrent use.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	stageDuration   *prometheus.HistogramVec
}

// NewCollector builds the three instruments without registering them.
func NewCollector(opts Options) *Collector {
	durationBuckets := opts.DurationBuckets
	if len(durationBuckets) == 0 {
		durationBuckets = prometheus.DefBuckets
	}
	stageBuckets := opts.StageBuckets
	if len(stageBuckets) == 0 {
		stageBuckets = prometheus.ExponentialBuckets(0.0005, 2, 14) // 0.5ms to ~4s
	}

	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "requests_total",
				Help:      "Total number of logical API requests by outcome code (-1 = no response)",
			},
			[]string{"base", "method", "path", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Wall-clock duration of logical API requests including redirects",
				Buckets:   durationBuckets,
			},
			[]string{"base", "method", "path"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "request_stage_duration_seconds",
				Help:      "Duration of transport stages (dns, connect, tls, first_byte, download)",
				Buckets:   stageBuckets,
			},
			[]string{"base", "stage"},
		),
	}
}

// Register adds all three instruments to reg. The collector performs no
// deduplication: registering twice with the same registry returns the
// registry's prometheus.AlreadyRegisteredError.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range c.collectors() {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.requestsTotal, c.requestDuration, c.stageDuration}
}

// RegisterMetrics creates a Collector and registers it with reg in one step.
// It is meant to be called once at process start by the embedding application.
func RegisterMetrics(reg prometheus.Registerer, opts Options) (*Collector, error) {
	c := NewCollector(opts)
	if err := c.Register(reg); err != nil {
		return nil, err
	}
	return c, nil
}

// ObserveRequest increments the request counter and observes the total duration.
func (c *Collector) ObserveRequest(obs RequestObservation) {
	if c == nil {
		return
	}

	safely(func() {
		code := strconv.Itoa(obs.Code)
		c.requestsTotal.WithLabelValues(obs.Base, obs.Method, obs.Path, code).Inc()
		c.requestDuration.WithLabelValues(obs.Base, obs.Method, obs.Path).Observe(obs.Duration.Seconds())
	})
}

// ObserveStage observes a single stage duration. Non-positive durations mean
// the stage was not measured and are ignored.
func (c *Collector) ObserveStage(base, stage string, d time.Duration) {
	if c == nil || d <= 0 {
		return
	}

	safely(func() {
		c.stageDuration.WithLabelValues(base, stage).Observe(d.Seconds())
	})
}
