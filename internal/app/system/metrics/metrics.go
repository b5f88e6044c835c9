// internal/app/system/metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Backend records calls made to the scheduling backend.
// A nil *Backend is valid and records nothing.
type Backend struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
}

// NewBackend registers the backend collectors on reg. If reg is nil the
// default registerer is used. Collectors that are already registered are
// reused, so calling NewBackend twice against one registry is safe.
func NewBackend(reg prometheus.Registerer) (*Backend, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sofi_backend_requests_total",
		Help: "Calls to the scheduling backend by operation and outcome",
	}, []string{"op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sofi_backend_request_duration_seconds",
		Help:    "Latency of calls to the scheduling backend",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 180},
	}, []string{"op"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sofi_schedule_loads_total",
		Help: "Schedule list loads by source (backend, shared, cache)",
	}, []string{"source"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if cache, err = register(reg, cache); err != nil {
		return nil, err
	}

	return &Backend{requests: requests, duration: duration, cache: cache}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRequest counts one backend call and records its latency.
func (b *Backend) ObserveRequest(op, outcome string, d time.Duration) {
	if b == nil {
		return
	}
	b.requests.WithLabelValues(op, outcome).Inc()
	b.duration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveLoad counts where a schedule list load was served from.
func (b *Backend) ObserveLoad(source string) {
	if b == nil {
		return
	}
	b.cache.WithLabelValues(source).Inc()
}

// Handler exposes the metrics gathered by g. A nil gatherer means the
// default registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
