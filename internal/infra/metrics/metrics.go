// Package metrics exposes Prometheus instruments for API calls, event
// streams and awaited runs. The instruments live in a private registry;
// nothing touches prometheus.DefaultRegisterer unless a host calls Register.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every splox instrument. Handler serves it.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "splox_requests_total",
		Help: "Total API requests by method and response status class",
	}, []string{"method", "status_class"})

	requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splox_request_duration_seconds",
		Help:    "API request latency until response headers",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method"})

	streamsOpened = factory.NewCounter(prometheus.CounterOpts{
		Name: "splox_streams_opened_total",
		Help: "Total event streams opened",
	})

	streamsClosed = factory.NewCounter(prometheus.CounterOpts{
		Name: "splox_streams_closed_total",
		Help: "Total event streams closed",
	})

	streamEvents = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "splox_stream_events_total",
		Help: "Total decoded stream events by kind",
	}, []string{"kind"})

	runAndWaitTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "splox_run_and_wait_total",
		Help: "Total awaited workflow runs by outcome",
	}, []string{"outcome"})

	runAndWaitDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "splox_run_and_wait_duration_seconds",
		Help:    "Wall time of awaited workflow runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	circuitBreakerState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "splox_circuit_breaker_state",
		Help: "Circuit breaker state (1 for the active state, 0 otherwise)",
	}, []string{"state"})
)

var circuitStates = []string{"closed", "half-open", "open"}

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		requestsTotal,
		requestDuration,
		streamsOpened,
		streamsClosed,
		streamEvents,
		runAndWaitTotal,
		runAndWaitDuration,
		circuitBreakerState,
	}
}

// Register adds the splox instruments to a host registry, for example
// prometheus.DefaultRegisterer. Instruments already registered there are
// skipped, so calling it twice is harmless.
func Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StatusClass buckets an HTTP status code as "2xx", "4xx" and so on.
// Zero means no response was received.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// ObserveRequest records one API request.
func ObserveRequest(method string, status int, d time.Duration) {
	requestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
	requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// IncStreamOpened counts a newly opened event stream.
func IncStreamOpened() { streamsOpened.Inc() }

// IncStreamClosed counts a closed event stream.
func IncStreamClosed() { streamsClosed.Inc() }

// IncStreamEvent counts one decoded event of the given kind.
func IncStreamEvent(kind string) {
	streamEvents.WithLabelValues(kind).Inc()
}

// ObserveRunAndWait records an awaited run and its outcome.
func ObserveRunAndWait(outcome string, d time.Duration) {
	runAndWaitTotal.WithLabelValues(outcome).Inc()
	runAndWaitDuration.Observe(d.Seconds())
}

// SetCircuitBreakerState records the active circuit breaker state.
func SetCircuitBreakerState(state string) {
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		circuitBreakerState.WithLabelValues(s).Set(value)
	}
}
