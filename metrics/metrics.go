package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ketzal"

// Metrics collects the server's connection and request statistics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	activeConns   prometheus.Gauge
	deferredConns prometheus.Counter
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	writeErrors   prometheus.Counter
}

// New creates the collectors and registers them.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		activeConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of connections being handled.",
		}),
		deferredConns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deferred_connections_total",
			Help:      "Connections that had to wait for a free slot.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests served, by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from the request being decoded until its response is written.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_errors_total",
			Help:      "Responses failed to be written.",
		}),
	}

	collectors := []prometheus.Collector{
		m.activeConns, m.deferredConns, m.requests, m.duration, m.writeErrors,
	}

	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.activeConns.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.activeConns.Dec()
	}
}

func (m *Metrics) ConnDeferred() {
	if m != nil {
		m.deferredConns.Inc()
	}
}

// ObserveRequest records a served request.
func (m *Metrics) ObserveRequest(method string, code uint16, took time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, strconv.Itoa(int(code))).Inc()
	m.duration.WithLabelValues(method).Observe(took.Seconds())
}

func (m *Metrics) WriteFailed() {
	if m != nil {
		m.writeErrors.Inc()
	}
}
