// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to prometheus.
type Metrics struct {
	requests prometheus.Counter
	errors   prometheus.Counter
	panics   prometheus.Counter
}

// New constructs the metrics and registers them, along with a goroutine
// gauge, with the specified registry.
func New(reg prometheus.Registerer) *Metrics {
	m := Metrics{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "web",
			Name:      "requests_total",
			Help:      "Requests handled by the api.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "web",
			Name:      "errors_total",
			Help:      "Requests that ended in an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "web",
			Name:      "panics_total",
			Help:      "Requests that ended in a panic.",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "web",
		Name:      "goroutines",
		Help:      "Number of goroutines in the process.",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	reg.MustRegister(m.requests, m.errors, m.panics, goroutines)

	return &m
}

// =============================================================================

// ctxKey represents the type of value for the context key.
type ctxKey int

// key is how metric values are stored/retrieved.
const key ctxKey = 1

// Set sets the metrics data into the context.
func Set(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, key, m)
}

// AddRequests increments the request metric by 1.
func AddRequests(ctx context.Context) {
	if v, ok := ctx.Value(key).(*Metrics); ok {
		v.requests.Inc()
	}
}

// AddErrors increments the errors metric by 1.
func AddErrors(ctx context.Context) {
	if v, ok := ctx.Value(key).(*Metrics); ok {
		v.errors.Inc()
	}
}

// AddPanics increments the panics metric by 1.
func AddPanics(ctx context.Context) {
	if v, ok := ctx.Value(key).(*Metrics); ok {
		v.panics.Inc()
	}
}
