package skrape

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors enabled by [WithMetrics].
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	requests, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skrape",
		Name:      "requests_total",
		Help:      "Requests sent to the Skrape API, by operation and result code.",
	}, []string{"operation", "code"}))
	if err != nil {
		return nil, err
	}

	duration, err := registerCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skrape",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests sent to the Skrape API.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}

	return &metrics{requests: requests, duration: duration}, nil
}

// registerCollector registers col, reusing an identical collector that a
// previous client already registered on reg.
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return col, err
	}
	return col, nil
}

func (m *metrics) observe(op string, elapsed time.Duration, err error) {
	code := "OK"
	if err != nil {
		code = "ERROR"
		var apiErr *Error
		if errors.As(err, &apiErr) {
			code = apiErr.Code
		}
	}
	m.requests.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
